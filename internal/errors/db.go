package errors

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// InflightJobConstraint is the partial unique index guarding one in-flight research job per pair.
const InflightJobConstraint = "jobs_research_inflight_idx"

var (
	// reKeyField extracts field name from unique violation detail: "Key (field)=(value) already exists.".
	reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)
	// reTable finds the table named in FK violation details.
	reTable = regexp.MustCompile(`table "?([^"]+)"?`)
)

var tableLabels = map[string]string{
	"campaigns":        "Campaign",
	"companies":        "Company",
	"people":           "Person",
	"context_snippets": "Research result",
	"search_logs":      "Search log",
	"jobs":             "Job",
}

// MapDBError maps database errors to AppError instances:
// no rows → NotFound, unique violations → Conflict, FK violations → ForeignKey,
// check and NOT NULL violations → Validation, context errors → Timeout/Canceled.
// Unrecognized errors are returned unchanged.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Wrap(err, ErrCodeTimeout, "Request timed out. Please try again.")
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeCanceled, "Request was canceled.")
	case errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return Wrap(err, ErrCodeNotFound, "Resource not found")
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return mapUniqueViolation(pgErr)
	case pgerrcode.ForeignKeyViolation:
		return &AppError{Code: ErrCodeForeignKey, Message: foreignKeyMessage(pgErr), Cause: pgErr}
	case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
		msg := "Invalid data. Please check your input."
		if pgErr.Code == pgerrcode.NotNullViolation {
			msg = "Required field is missing. Please check your input."
		}
		return &AppError{Code: ErrCodeValidation, Message: msg, Field: pgErr.ColumnName, Cause: pgErr}
	default:
		return &AppError{
			Code:    ErrCodeInternal,
			Message: "A database error occurred. Please try again.",
			Cause:   pgErr,
		}
	}
}

// IsInflightConflict reports whether err is the duplicate in-flight job violation.
func IsInflightConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == InflightJobConstraint
	}
	return false
}

func mapUniqueViolation(pgErr *pgconn.PgError) error {
	if pgErr.ConstraintName == InflightJobConstraint {
		return &AppError{
			Code:    ErrCodeConflict,
			Message: "A research job for this person and company is already in progress.",
			Cause:   pgErr,
		}
	}
	field := pgErr.ColumnName
	if field == "" {
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			field = m[1]
		}
	}
	return &AppError{
		Code:    ErrCodeConflict,
		Message: "This value already exists. Please choose a different one.",
		Field:   field,
		Cause:   pgErr,
	}
}

func foreignKeyMessage(pgErr *pgconn.PgError) string {
	table := pgErr.TableName
	if m := reTable.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
		table = m[1]
	}
	label := tableLabel(table)
	switch {
	case strings.Contains(pgErr.Detail, "is still referenced"):
		return "Cannot delete because this item is in use by " + label + "."
	case strings.Contains(pgErr.Detail, "is not present"):
		return "Cannot complete operation because the referenced " + label + " does not exist."
	default:
		return "Cannot complete operation because this item is in use."
	}
}

func tableLabel(table string) string {
	table = strings.ToLower(strings.TrimSpace(table))
	if label, ok := tableLabels[table]; ok {
		return label
	}
	if table == "" {
		return "another record"
	}
	return strings.ReplaceAll(table, "_", " ")
}
