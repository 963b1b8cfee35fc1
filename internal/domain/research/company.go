package research

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// Field caps requested from the provider.
const (
	MaxProductNames = 5
	MaxCompetitors  = 5
	MaxFindings     = 3
)

// Stage names used in errors and metrics.
const (
	StageCompany = "company"
	StagePerson  = "person"
)

const searchLogIteration = 1

// CompanyResearch is the normalized company-level answer.
type CompanyResearch struct {
	CompanyValueProp string
	ProductNames     []string
	PricingModel     string
	KeyCompetitors   []string
	TopLinks         []string
}

type companyResponse struct {
	CompanyValueProp json.RawMessage `json:"companyValueProp"`
	ProductNames     json.RawMessage `json:"productNames"`
	PricingModel     json.RawMessage `json:"pricingModel"`
	KeyCompetitors   json.RawMessage `json:"keyCompetitors"`
	TopLinks         json.RawMessage `json:"topLinks"`
}

// ParseCompany extracts and normalizes the company answer. Missing fields become empty values.
func ParseCompany(text string) (CompanyResearch, error) {
	raw, err := ExtractObject(StageCompany, text)
	if err != nil {
		return CompanyResearch{}, err
	}
	var resp companyResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return CompanyResearch{}, &ParseError{Kind: ParseKindObject, Stage: StageCompany, Raw: text}
	}
	return CompanyResearch{
		CompanyValueProp: scalarText(resp.CompanyValueProp),
		ProductNames:     capList(stringList(resp.ProductNames), MaxProductNames),
		PricingModel:     NormalizePricingModel(resp.PricingModel),
		KeyCompetitors:   capList(stringList(resp.KeyCompetitors), MaxCompetitors),
		TopLinks:         stringList(resp.TopLinks),
	}, nil
}

// ParseFindings extracts up to MaxFindings person-level findings from the first JSON array.
// Elements are decoded leniently: non-object elements are skipped, text fields accept any
// scalar and confidence accepts a number or numeric string (anything else is 0).
func ParseFindings(text string) ([]model.Finding, error) {
	raw, err := ExtractArray(StagePerson, text, nil)
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &ParseError{Kind: ParseKindArray, Stage: StagePerson, Raw: text}
	}
	findings := make([]model.Finding, 0, min(len(items), MaxFindings))
	for _, item := range items {
		if len(findings) == MaxFindings {
			break
		}
		var fields findingResponse
		if json.Unmarshal(item, &fields) != nil {
			continue
		}
		findings = append(findings, model.Finding{
			Title:      scalarText(fields.Title),
			Snippet:    scalarText(fields.Snippet),
			URL:        scalarText(fields.URL),
			Confidence: confidence(fields.Confidence),
		})
	}
	return findings, nil
}

type findingResponse struct {
	Title      json.RawMessage `json:"title"`
	Snippet    json.RawMessage `json:"snippet"`
	URL        json.RawMessage `json:"url"`
	Confidence json.RawMessage `json:"confidence"`
}

func confidence(raw json.RawMessage) float64 {
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		if f, err := n.Float64(); err == nil {
			return f
		}
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// BuildResult assembles the persisted row from the parsed company answer. The company domain is
// the first top link as returned, or the registrable domain of storedDomain when there are no links.
func BuildResult(personID, companyID int64, jobID string, c CompanyResearch, storedDomain string) model.ResearchResult {
	domain := ""
	if len(c.TopLinks) > 0 {
		domain = strings.TrimSpace(c.TopLinks[0])
	}
	if domain == "" {
		domain = CompanyDomain(storedDomain)
	}
	res := model.ResearchResult{
		PersonID:         personID,
		CompanyID:        companyID,
		CompanyValueProp: c.CompanyValueProp,
		ProductNames:     nonNil(c.ProductNames),
		PricingModel:     c.PricingModel,
		KeyCompetitors:   nonNil(c.KeyCompetitors),
		CompanyDomain:    domain,
		TopLinks:         nonNil(c.TopLinks),
	}
	if jobID != "" {
		id := jobID
		res.JobID = &id
	}
	return res
}

// BuildSearchLog records the person-level findings as the audit snapshot.
func BuildSearchLog(providerName string, findings []model.Finding) (model.SearchLogEntry, error) {
	snippets := findings
	if snippets == nil {
		snippets = []model.Finding{}
	}
	top, err := json.Marshal(map[string]any{"results": snippets})
	if err != nil {
		return model.SearchLogEntry{}, err
	}
	name := strings.TrimSpace(providerName)
	if name == "" {
		name = "Provider"
	}
	return model.SearchLogEntry{
		Iteration:  searchLogIteration,
		Query:      name + " Research",
		TopResults: top,
	}, nil
}

func stringList(raw json.RawMessage) []string {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(scalarText(item)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func capList(in []string, limit int) []string {
	if len(in) > limit {
		return in[:limit]
	}
	return in
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
