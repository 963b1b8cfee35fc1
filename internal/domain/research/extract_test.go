package research

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "bare object", text: `{"a":1}`, want: `{"a":1}`},
		{name: "surrounding prose", text: "Sure! Here you go:\n{\"a\":1}\nHope that helps {x}", want: `{"a":1}`},
		{name: "markdown fence", text: "```json\n{\"a\":{\"b\":[1,2]}}\n```", want: `{"a":{"b":[1,2]}}`},
		{name: "skips broken candidate", text: `{not json} then {"ok":true}`, want: `{"ok":true}`},
		{name: "braces inside strings", text: `{"s":"a } b"}`, want: `{"s":"a } b"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractObject(StageCompany, tt.text)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestExtractObject_ParseError(t *testing.T) {
	text := "I could not find anything about that company."
	_, err := ExtractObject(StageCompany, text)
	require.Error(t, err)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ParseKindObject, perr.Kind)
	assert.Equal(t, StageCompany, perr.Stage)
	assert.Equal(t, text, perr.Raw)
	assert.True(t, errors.Is(err, ErrNoJSON))
}

func TestParseError_TruncatesPreview(t *testing.T) {
	raw := strings.Repeat("x", 500)
	err := &ParseError{Kind: ParseKindArray, Stage: StagePerson, Raw: raw}
	assert.Less(t, len(err.Error()), 300)
	assert.Len(t, err.Raw, 500)
}

func TestExtractArray_Accept(t *testing.T) {
	text := `noise [1, 2] more [{"title":"t"}]`
	got, err := ExtractArray(StagePerson, text, func(raw json.RawMessage) bool {
		return strings.Contains(string(raw), "title")
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"t"}]`, string(got))
}

func TestParseFindings(t *testing.T) {
	text := "Here are the findings:\n" + `[
	  {"title":"Role","snippet":"CEO since 2010","url":"https://a.example","confidence":0.9},
	  {"title":"Education","snippet":"MIT","url":"https://b.example","confidence":0.7},
	  {"title":"Board","snippet":"Sits on boards","url":"https://c.example","confidence":0.5},
	  {"title":"Extra","snippet":"dropped","url":"","confidence":0.1}
	]`
	findings, err := ParseFindings(text)
	require.NoError(t, err)
	require.Len(t, findings, MaxFindings)
	assert.Equal(t, "Role", findings[0].Title)
	assert.InDelta(t, 0.9, findings[0].Confidence, 1e-9)
}

func TestParseFindings_NoArray(t *testing.T) {
	_, err := ParseFindings(`{"title":"not an array"}`)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ParseKindArray, perr.Kind)
}

func TestParseFindings_LenientElements(t *testing.T) {
	text := `Here: [
	  {"title":"Role","snippet":"CTO","url":"https://x.com","confidence":"high"},
	  "stray note",
	  {"title":"Talk","snippet":"Keynote","url":null,"confidence":"0.6"},
	  {"title":42,"snippet":null}
	]`
	findings, err := ParseFindings(text)
	require.NoError(t, err)

	want := []model.Finding{
		{Title: "Role", Snippet: "CTO", URL: "https://x.com"},
		{Title: "Talk", Snippet: "Keynote", Confidence: 0.6},
		{Title: "42"},
	}
	if diff := cmp.Diff(want, findings); diff != "" {
		t.Fatalf("findings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFindings_EmptyArray(t *testing.T) {
	findings, err := ParseFindings("nothing found: []")
	require.NoError(t, err)
	assert.NotNil(t, findings)
	assert.Empty(t, findings)
}

func TestParseCompany(t *testing.T) {
	text := "```json\n" + `{
	  "companyValueProp": "Payments infrastructure for the internet",
	  "productNames": ["Payments","Billing","Connect","Atlas","Radar","Terminal"],
	  "pricingModel": ["2.9% + 30c", "custom enterprise"],
	  "keyCompetitors": ["Adyen", 42, "", "PayPal"],
	  "topLinks": ["https://www.stripe.com/", "https://stripe.com/pricing"]
	}` + "\n```"
	got, err := ParseCompany(text)
	require.NoError(t, err)

	want := CompanyResearch{
		CompanyValueProp: "Payments infrastructure for the internet",
		ProductNames:     []string{"Payments", "Billing", "Connect", "Atlas", "Radar"},
		PricingModel:     "2.9% + 30c, custom enterprise",
		KeyCompetitors:   []string{"Adyen", "42", "PayPal"},
		TopLinks:         []string{"https://www.stripe.com/", "https://stripe.com/pricing"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseCompany mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCompany_MissingFieldsBecomeEmpty(t *testing.T) {
	got, err := ParseCompany(`{"companyValueProp": null}`)
	require.NoError(t, err)
	want := CompanyResearch{
		ProductNames:   []string{},
		KeyCompetitors: []string{},
		TopLinks:       []string{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ParseCompany mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildResult(t *testing.T) {
	res := BuildResult(7, 3, "job-1", CompanyResearch{
		CompanyValueProp: "v",
		PricingModel:     "p",
		TopLinks:         []string{"https://docs.stripe.co.uk/x", "https://stripe.com"},
	}, "stripe.com")
	assert.Equal(t, int64(7), res.PersonID)
	assert.Equal(t, int64(3), res.CompanyID)
	require.NotNil(t, res.JobID)
	assert.Equal(t, "job-1", *res.JobID)
	assert.Equal(t, "https://docs.stripe.co.uk/x", res.CompanyDomain)
	assert.NotNil(t, res.ProductNames)
	assert.NotNil(t, res.KeyCompetitors)
}

func TestBuildResult_DomainFallsBackToCompany(t *testing.T) {
	for _, links := range [][]string{nil, {"  "}} {
		res := BuildResult(7, 3, "", CompanyResearch{TopLinks: links}, "https://www.Acme.co.uk/")
		assert.Equal(t, "acme.co.uk", res.CompanyDomain, "links %q", links)
		assert.Nil(t, res.JobID)
	}

	res := BuildResult(7, 3, "", CompanyResearch{}, "")
	assert.Empty(t, res.CompanyDomain)
}

func TestBuildSearchLog(t *testing.T) {
	entry, err := BuildSearchLog("Gemini", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Iteration)
	assert.Equal(t, "Gemini Research", entry.Query)
	assert.JSONEq(t, `{"results":[]}`, string(entry.TopResults))
}
