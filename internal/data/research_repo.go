package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/data/pgxutil"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// ResearchRepo stores research results (context_snippets) and their search logs.
type ResearchRepo struct {
	DB     *sql.DB
	logger *slog.Logger
}

// NewResearchRepo creates a new ResearchRepo.
func NewResearchRepo(db *sql.DB, logger *slog.Logger) *ResearchRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResearchRepo{DB: db, logger: logger.With("component", "research_repo")}
}

const researchColumns = `
  id,
  job_id::text,
  company_id,
  person_id,
  company_value_prop,
  product_names,
  pricing_model,
  key_competitors,
  company_domain,
  top_links,
  created_at,
  updated_at
`

func scanResearch(row pgx.Row) (*model.ResearchResult, error) {
	var (
		res   model.ResearchResult
		jobID sql.NullString
	)
	err := row.Scan(
		&res.ID,
		&jobID,
		&res.CompanyID,
		&res.PersonID,
		&res.CompanyValueProp,
		&res.ProductNames,
		&res.PricingModel,
		&res.KeyCompetitors,
		&res.CompanyDomain,
		&res.TopLinks,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.JobID = cloneNullableString(jobID)
	return &res, nil
}

// Latest returns the newest result for the pair created at or after notBefore, or nil.
func (r *ResearchRepo) Latest(ctx context.Context, personID, companyID int64, notBefore time.Time) (*model.ResearchResult, error) {
	var res *model.ResearchResult
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var scanErr error
		res, scanErr = scanResearch(conn.QueryRow(ctx, `
			SELECT `+researchColumns+`
			FROM context_snippets
			WHERE person_id = $1
			  AND company_id = $2
			  AND ($3::timestamptz IS NULL OR created_at >= $3)
			ORDER BY created_at DESC, id DESC
			LIMIT 1`,
			personID, companyID, nullableTime(notBefore)))
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest research for person %d company %d: %w", personID, companyID, err)
	}
	return res, nil
}

// Persist writes the result and its search log in one transaction. A result for the
// same job id is overwritten, so a retried job never leaves two rows.
func (r *ResearchRepo) Persist(ctx context.Context, params model.PersistResearchParams) (*model.ResearchResult, error) {
	in := params.Result
	var saved *model.ResearchResult
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			var scanErr error
			saved, scanErr = scanResearch(tx.QueryRow(ctx, `
				INSERT INTO context_snippets (
					job_id, company_id, person_id, company_value_prop, product_names,
					pricing_model, key_competitors, company_domain, top_links
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (job_id) DO UPDATE SET
					company_value_prop = EXCLUDED.company_value_prop,
					product_names = EXCLUDED.product_names,
					pricing_model = EXCLUDED.pricing_model,
					key_competitors = EXCLUDED.key_competitors,
					company_domain = EXCLUDED.company_domain,
					top_links = EXCLUDED.top_links,
					updated_at = now()
				RETURNING `+researchColumns,
				in.JobID, in.CompanyID, in.PersonID, in.CompanyValueProp, nonNilStrings(in.ProductNames),
				in.PricingModel, nonNilStrings(in.KeyCompetitors), in.CompanyDomain, nonNilStrings(in.TopLinks)))
			if scanErr != nil {
				return fmt.Errorf("upsert research result: %w", scanErr)
			}

			log := params.SearchLog
			topResults := []byte(log.TopResults)
			if len(topResults) == 0 {
				topResults = []byte(`{}`)
			}
			if _, err := tx.Exec(ctx, `
				INSERT INTO search_logs (context_snippet_id, iteration, query, top_results)
				VALUES ($1, $2, $3, $4)`,
				saved.ID, log.Iteration, log.Query, topResults); err != nil {
				return fmt.Errorf("insert search log: %w", err)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	r.logger.DebugContext(ctx, "research persisted", "snippet_id", saved.ID, "person_id", saved.PersonID, "company_id", saved.CompanyID)
	return saved, nil
}

// ListByCompany returns every result stored for companyID, newest first.
func (r *ResearchRepo) ListByCompany(ctx context.Context, companyID int64) ([]model.ResearchResult, error) {
	out := []model.ResearchResult{}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			SELECT `+researchColumns+`
			FROM context_snippets
			WHERE company_id = $1
			ORDER BY created_at DESC, id DESC`, companyID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			res, err := scanResearch(rows)
			if err != nil {
				return err
			}
			out = append(out, *res)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list research for company %d: %w", companyID, err)
	}
	return out, nil
}

// UpdatePeopleStatus sets research_status for every listed person. For the completed
// status the people's stored results are deleted in the same transaction.
func (r *ResearchRepo) UpdatePeopleStatus(
	ctx context.Context,
	req model.BulkResearchStatusRequest,
) (model.BulkResearchStatusResult, error) {
	var out model.BulkResearchStatusResult
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			tag, err := tx.Exec(ctx, `UPDATE people SET research_status = $2 WHERE id = ANY($1)`, req.PersonIDs, req.Status)
			if err != nil {
				return fmt.Errorf("update research status: %w", err)
			}
			out.Updated = tag.RowsAffected()

			if req.Status != model.ResearchStatusCompleted {
				return nil
			}
			tag, err = tx.Exec(ctx, `DELETE FROM context_snippets WHERE person_id = ANY($1)`, req.PersonIDs)
			if err != nil {
				return fmt.Errorf("delete research results: %w", err)
			}
			out.Deleted = tag.RowsAffected()
			return nil
		},
	})
	if err != nil {
		return model.BulkResearchStatusResult{}, err
	}
	return out, nil
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

var _ core.ResearchRepository = (*ResearchRepo)(nil)
