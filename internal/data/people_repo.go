package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	apperrors "github.com/yuvrajjangir/AlphaAI-Backend/internal/errors"
)

// PeopleRepo reads people and companies.
type PeopleRepo struct {
	DB *sql.DB
}

// NewPeopleRepo creates a new PeopleRepo.
func NewPeopleRepo(db *sql.DB) *PeopleRepo {
	return &PeopleRepo{DB: db}
}

// GetPerson returns the person with id, or a not-found AppError.
func (r *PeopleRepo) GetPerson(ctx context.Context, id int64) (*model.Person, error) {
	var (
		p         model.Person
		companyID sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, company_id, full_name, email, title, research_status, created_at
		FROM people WHERE id = $1`, id).
		Scan(&p.ID, &companyID, &p.FullName, &p.Email, &p.Title, &p.ResearchStatus, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("Person not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get person %d: %w", id, err)
	}
	if companyID.Valid {
		v := companyID.Int64
		p.CompanyID = &v
	}
	return &p, nil
}

// GetCompany returns the company with id, or a not-found AppError.
func (r *PeopleRepo) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	var (
		c          model.Company
		campaignID sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, campaign_id, name, domain, created_at
		FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &campaignID, &c.Name, &c.Domain, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("Company not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get company %d: %w", id, err)
	}
	if campaignID.Valid {
		v := campaignID.Int64
		c.CampaignID = &v
	}
	return &c, nil
}

var _ core.PeopleRepository = (*PeopleRepo)(nil)
