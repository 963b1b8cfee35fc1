// Package devseed loads development campaigns, companies and people into Postgres.
package devseed

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var defaultSeed []byte

// Seed is the YAML document shape.
type Seed struct {
	Campaigns []Campaign `yaml:"campaigns"`
}

// Campaign groups the companies prospected together.
type Campaign struct {
	Name      string    `yaml:"name"`
	Companies []Company `yaml:"companies"`
}

// Company is a seeded company and its people.
type Company struct {
	Name   string   `yaml:"name"`
	Domain string   `yaml:"domain"`
	People []Person `yaml:"people"`
}

// Person is a seeded prospect. Email is the natural key.
type Person struct {
	FullName string `yaml:"fullName"`
	Email    string `yaml:"email"`
	Title    string `yaml:"title"`
}

// Stats counts the rows written by one run.
type Stats struct {
	Campaigns int
	Companies int
	People    int
}

// Load parses the seed at path; an empty path returns the embedded default.
func Load(path string) (*Seed, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		raw = b
	}
	return Parse(raw)
}

// Parse decodes and validates a seed document.
func Parse(raw []byte) (*Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate rejects entries the schema would refuse.
func (s *Seed) Validate() error {
	seen := make(map[string]struct{})
	var errs []error
	for ci, c := range s.Campaigns {
		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("campaign %d: name is required", ci))
		}
		for coi, co := range c.Companies {
			if strings.TrimSpace(co.Name) == "" {
				errs = append(errs, fmt.Errorf("campaign %q company %d: name is required", c.Name, coi))
			}
			for _, p := range co.People {
				email := strings.ToLower(strings.TrimSpace(p.Email))
				if email == "" || strings.TrimSpace(p.FullName) == "" {
					errs = append(errs, fmt.Errorf("company %q: person needs fullName and email", co.Name))
					continue
				}
				if _, dup := seen[email]; dup {
					errs = append(errs, fmt.Errorf("duplicate email %q", email))
				}
				seen[email] = struct{}{}
			}
		}
	}
	return errors.Join(errs...)
}

// Run writes seed into db in one transaction. Re-running is idempotent:
// campaigns and companies match by name, people by email.
func Run(ctx context.Context, db *sql.DB, seed *Seed, logger *slog.Logger) (Stats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if seed == nil {
		return Stats{}, errors.New("seed is required")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var stats Stats
	for _, c := range seed.Campaigns {
		campaignID, err := upsertCampaign(ctx, tx, c.Name)
		if err != nil {
			return Stats{}, err
		}
		stats.Campaigns++
		for _, co := range c.Companies {
			companyID, err := upsertCompany(ctx, tx, campaignID, co)
			if err != nil {
				return Stats{}, err
			}
			stats.Companies++
			for _, p := range co.People {
				if err := upsertPerson(ctx, tx, companyID, p); err != nil {
					return Stats{}, err
				}
				stats.People++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit seed tx: %w", err)
	}
	logger.InfoContext(ctx, "development data seeded",
		"campaigns", stats.Campaigns, "companies", stats.Companies, "people", stats.People)
	return stats, nil
}

func upsertCampaign(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM campaigns WHERE name = $1 ORDER BY id LIMIT 1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.QueryRowContext(ctx, `INSERT INTO campaigns (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("upsert campaign %q: %w", name, err)
	}
	return id, nil
}

func upsertCompany(ctx context.Context, tx *sql.Tx, campaignID int64, co Company) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM companies WHERE name = $1 ORDER BY id LIMIT 1`, co.Name).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, `
			INSERT INTO companies (campaign_id, name, domain) VALUES ($1, $2, $3) RETURNING id`,
			campaignID, co.Name, co.Domain).Scan(&id)
	case err == nil:
		_, err = tx.ExecContext(ctx, `UPDATE companies SET campaign_id = $2, domain = $3 WHERE id = $1`,
			id, campaignID, co.Domain)
	}
	if err != nil {
		return 0, fmt.Errorf("upsert company %q: %w", co.Name, err)
	}
	return id, nil
}

func upsertPerson(ctx context.Context, tx *sql.Tx, companyID int64, p Person) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO people (company_id, full_name, email, title)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE
		SET company_id = EXCLUDED.company_id, full_name = EXCLUDED.full_name, title = EXCLUDED.title`,
		companyID, p.FullName, strings.ToLower(strings.TrimSpace(p.Email)), p.Title)
	if err != nil {
		return fmt.Errorf("upsert person %q: %w", p.Email, err)
	}
	return nil
}
