// Package testutil provides testing utilities and helpers for the enrichment job system.
package testutil

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// JobRequestBuilder provides a fluent interface for building CreateJobRequest objects for testing.
type JobRequestBuilder struct {
	req *model.CreateJobRequest
}

// NewJobRequest creates a research job request for person 1 at company 1.
func NewJobRequest() *JobRequestBuilder {
	return &JobRequestBuilder{
		req: &model.CreateJobRequest{
			Type:        model.JobTypeResearch,
			Payload:     json.RawMessage(`{"personId":1,"companyId":1}`),
			MaxAttempts: model.DefaultMaxAttempts,
		},
	}
}

// WithType sets the job type.
func (b *JobRequestBuilder) WithType(jobType model.JobType) *JobRequestBuilder {
	b.req.Type = jobType
	return b
}

// WithPair sets the research payload.
func (b *JobRequestBuilder) WithPair(personID, companyID int64) *JobRequestBuilder {
	b.req.Payload = json.RawMessage(fmt.Sprintf(`{"personId":%d,"companyId":%d}`, personID, companyID))
	return b
}

// WithPayloadString sets the job payload from a string.
func (b *JobRequestBuilder) WithPayloadString(payload string) *JobRequestBuilder {
	b.req.Payload = json.RawMessage(payload)
	return b
}

// WithScheduledAt sets the scheduled time.
func (b *JobRequestBuilder) WithScheduledAt(scheduledAt time.Time) *JobRequestBuilder {
	b.req.ScheduledAt = &scheduledAt
	return b
}

// WithMaxAttempts sets the attempt cap.
func (b *JobRequestBuilder) WithMaxAttempts(n int) *JobRequestBuilder {
	b.req.MaxAttempts = n
	return b
}

// Build returns the constructed CreateJobRequest.
func (b *JobRequestBuilder) Build() *model.CreateJobRequest {
	return b.req
}

// ResearchFixture holds ids created by SeedResearchFixture.
type ResearchFixture struct {
	CompanyID int64
	PersonID  int64
}

// Pair returns the fixture as a job payload.
func (f ResearchFixture) Pair() model.ResearchPayload {
	return model.ResearchPayload{PersonID: f.PersonID, CompanyID: f.CompanyID}
}

// SeedResearchFixture inserts one company and one person working there.
func SeedResearchFixture(t TestingTB, db *sql.DB, suffix string) ResearchFixture {
	t.Helper()
	companyID := SeedCompany(t, db, "Acme "+suffix)
	personID := SeedPerson(t, db, &companyID, "Ada "+suffix, "ada-"+suffix+"@acme.test")
	return ResearchFixture{CompanyID: companyID, PersonID: personID}
}

// SeedCompany inserts a company and returns its id.
func SeedCompany(t TestingTB, db *sql.DB, name string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id int64
	if err := db.QueryRowContext(ctx, `INSERT INTO companies (name, domain) VALUES ($1, '') RETURNING id`, name).Scan(&id); err != nil {
		t.Fatalf("Failed to seed company %q: %v", name, err)
	}
	return id
}

// SeedPerson inserts a person, optionally attached to a company, and returns its id.
func SeedPerson(t TestingTB, db *sql.DB, companyID *int64, fullName, email string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO people (company_id, full_name, email, title)
		VALUES ($1, $2, $3, 'Engineer')
		RETURNING id`, companyID, fullName, email).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to seed person %q: %v", fullName, err)
	}
	return id
}

// ResearchJobRequest creates a research job request for the pair.
func ResearchJobRequest(personID, companyID int64) *model.CreateJobRequest {
	return NewJobRequest().WithPair(personID, companyID).Build()
}

// ScheduledJobRequest creates a job request scheduled for the future.
func ScheduledJobRequest(personID, companyID int64, scheduledAt time.Time) *model.CreateJobRequest {
	return NewJobRequest().WithPair(personID, companyID).WithScheduledAt(scheduledAt).Build()
}
