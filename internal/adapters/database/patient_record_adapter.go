package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/domain/providers"
	"github.com/zatekoja/medibot/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/medibot/pkg/errors"
)

const (
	patientKeyColumn  = "patient_id"
	patientDataColumn = "data"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PatientRecordAdapter reads patient documents stored as one jsonb row per patient.
type PatientRecordAdapter struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

// NewPatientRecordAdapter creates a new patient record adapter
func NewPatientRecordAdapter(client *postgres.Client) *PatientRecordAdapter {
	return &PatientRecordAdapter{
		db:      sqlx.NewDb(client.DB(), "postgres"),
		dialect: goqu.Dialect("postgres"),
	}
}

// GetByKey returns the document for key, or providers.ErrRecordNotFound.
func (a *PatientRecordAdapter) GetByKey(ctx context.Context, table, key string) (entities.PatientRecord, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid table name %q", table))
	}

	query, args, err := a.dialect.From(table).
		Prepared(true).
		Select(goqu.C(patientDataColumn)).
		Where(goqu.C(patientKeyColumn).Eq(key)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var raw []byte
	err = a.db.GetContext(ctx, &raw, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, providers.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient record: %w", err)
	}

	record := entities.PatientRecord{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &record); err != nil {
			return nil, fmt.Errorf("failed to decode patient record: %w", err)
		}
	}
	return record, nil
}

// EnsureTable creates table if it does not exist.
func (a *PatientRecordAdapter) EnsureTable(ctx context.Context, table string) error {
	if !tableNamePattern.MatchString(table) {
		return apperrors.NewValidationError(fmt.Sprintf("invalid table name %q", table))
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (
		%s TEXT PRIMARY KEY,
		%s JSONB NOT NULL DEFAULT '{}'::jsonb,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`, table, patientKeyColumn, patientDataColumn)

	if _, err := a.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}
	return nil
}

// Upsert stores record under key, replacing any existing document.
func (a *PatientRecordAdapter) Upsert(ctx context.Context, table, key string, record entities.PatientRecord) error {
	if !tableNamePattern.MatchString(table) {
		return apperrors.NewValidationError(fmt.Sprintf("invalid table name %q", table))
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode patient record: %w", err)
	}

	query, args, err := a.dialect.Insert(table).
		Prepared(true).
		Rows(goqu.Record{
			patientKeyColumn:  key,
			patientDataColumn: string(data),
		}).
		OnConflict(goqu.DoUpdate(patientKeyColumn, goqu.Record{
			patientDataColumn: goqu.L("EXCLUDED." + patientDataColumn),
			"updated_at":      goqu.L("NOW()"),
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	if _, err := a.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert patient record: %w", err)
	}
	return nil
}
