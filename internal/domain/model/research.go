package model

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Person is a prospect whose background gets researched.
type Person struct {
	ID             int64     `json:"id"             db:"id"`
	CompanyID      *int64    `json:"companyId"      db:"company_id"`
	FullName       string    `json:"fullName"       db:"full_name"`
	Email          string    `json:"email"          db:"email"`
	Title          string    `json:"title"          db:"title"`
	ResearchStatus string    `json:"researchStatus" db:"research_status"`
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
}

// Company is the organisation a person belongs to.
type Company struct {
	ID         int64     `json:"id"         db:"id"`
	CampaignID *int64    `json:"campaignId" db:"campaign_id"`
	Name       string    `json:"name"       db:"name"`
	Domain     string    `json:"domain"     db:"domain"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}

// ResearchResult is the persisted output of a completed enrichment job.
type ResearchResult struct {
	ID               int64     `json:"id"               db:"id"`
	JobID            *string   `json:"jobId,omitempty"  db:"job_id"`
	CompanyID        int64     `json:"companyId"        db:"company_id"`
	PersonID         int64     `json:"personId"         db:"person_id"`
	CompanyValueProp string    `json:"companyValueProp" db:"company_value_prop"`
	ProductNames     []string  `json:"productNames"     db:"product_names"`
	PricingModel     string    `json:"pricingModel"     db:"pricing_model"`
	KeyCompetitors   []string  `json:"keyCompetitors"   db:"key_competitors"`
	CompanyDomain    string    `json:"companyDomain"    db:"company_domain"`
	TopLinks         []string  `json:"topLinks"         db:"top_links"`
	CreatedAt        time.Time `json:"createdAt"        db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt"        db:"updated_at"`
}

// SearchLogEntry is the append-only audit record of one provider round-trip.
type SearchLogEntry struct {
	ID               int64           `json:"id"                         db:"id"`
	ContextSnippetID *int64          `json:"contextSnippetId,omitempty" db:"context_snippet_id"`
	Iteration        int             `json:"iteration"                  db:"iteration"`
	Query            string          `json:"query"                      db:"query"`
	TopResults       json.RawMessage `json:"topResults"                 db:"top_results"`
	CreatedAt        time.Time       `json:"createdAt"                  db:"created_at"`
}

// Finding is one person-level research item returned by the provider.
type Finding struct {
	Title      string  `json:"title"`
	Snippet    string  `json:"snippet"`
	URL        string  `json:"url"`
	Confidence float64 `json:"confidence"`
}

// ResearchJobResult is the payload stored on a completed job.
type ResearchJobResult struct {
	Success bool      `json:"success"`
	Results []Finding `json:"results"`
	Count   int       `json:"count"`
}

// EnrichmentOutcome is what the deduplication gate hands back to callers.
// Exactly one of Existing or JobID is set.
type EnrichmentOutcome struct {
	Existing *ResearchResult
	JobID    string
	// InFlight is true when JobID names a job that was already queued or running.
	InFlight bool
}

// PersistResearchParams groups the rows written at the end of a successful run.
type PersistResearchParams struct {
	Result    ResearchResult
	SearchLog SearchLogEntry
}

// ResearchStatusCompleted is the status that also purges stored research.
const ResearchStatusCompleted = "completed"

// BulkResearchStatusRequest updates research_status for many people at once.
type BulkResearchStatusRequest struct {
	PersonIDs []int64 `json:"personIds"`
	Status    string  `json:"status"`
}

// maxResearchStatusLen matches the column width.
const maxResearchStatusLen = 32

// Normalize trims the status in place.
func (r *BulkResearchStatusRequest) Normalize() {
	r.Status = strings.TrimSpace(r.Status)
}

// Validate validates the bulk request fields.
func (r *BulkResearchStatusRequest) Validate() error {
	if len(r.PersonIDs) == 0 {
		return errors.New("personIds must be a non-empty array")
	}
	for _, id := range r.PersonIDs {
		if id <= 0 {
			return errors.New("personIds must contain positive ids")
		}
	}
	if r.Status == "" {
		return errors.New("status is required")
	}
	if len(r.Status) > maxResearchStatusLen {
		return errors.New("status must be at most 32 characters")
	}
	return nil
}

// BulkResearchStatusResult reports how many rows were touched.
type BulkResearchStatusResult struct {
	Updated int64 `json:"updated"`
	Deleted int64 `json:"deleted"`
}
