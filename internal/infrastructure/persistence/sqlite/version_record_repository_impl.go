package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// VersionRecordRepositoryImpl implements repository.VersionRecordRepository with SQLite
type VersionRecordRepositoryImpl struct {
	db *sql.DB
}

// NewVersionRecordRepository creates a new SQLite-based version record repository
func NewVersionRecordRepository(db *sql.DB) *VersionRecordRepositoryImpl {
	return &VersionRecordRepositoryImpl{db: db}
}

const versionRecordColumns = `external_id, version, description, significance, opened_by, closed_at, created_at, updated_at`

// Create inserts a new version record
func (r *VersionRecordRepositoryImpl) Create(ctx context.Context, record *object.VersionRecord) error {
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	query := `INSERT INTO version_records (` + versionRecordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := executor(ctx, r.db).ExecContext(ctx, query,
		record.ExternalID, record.Version, record.Description, string(record.Significance),
		record.OpenedBy, nullTime(record.ClosedAt), record.CreatedAt, record.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s v%d", repository.ErrVersionRecordExists, record.ExternalID, record.Version)
	}
	if err != nil {
		return fmt.Errorf("insert version record failed: %w", err)
	}
	return nil
}

// Find retrieves the record for one version
func (r *VersionRecordRepositoryImpl) Find(ctx context.Context, externalID string, version int) (*object.VersionRecord, error) {
	query := `SELECT ` + versionRecordColumns + ` FROM version_records WHERE external_id = ? AND version = ?`
	return r.scanOne(executor(ctx, r.db).QueryRowContext(ctx, query, externalID, version), externalID)
}

// Current retrieves the highest-numbered record
func (r *VersionRecordRepositoryImpl) Current(ctx context.Context, externalID string) (*object.VersionRecord, error) {
	query := `SELECT ` + versionRecordColumns + ` FROM version_records WHERE external_id = ? ORDER BY version DESC LIMIT 1`
	return r.scanOne(executor(ctx, r.db).QueryRowContext(ctx, query, externalID), externalID)
}

// List returns all records in ascending version order
func (r *VersionRecordRepositoryImpl) List(ctx context.Context, externalID string) ([]*object.VersionRecord, error) {
	query := `SELECT ` + versionRecordColumns + ` FROM version_records WHERE external_id = ? ORDER BY version ASC`
	rows, err := executor(ctx, r.db).QueryContext(ctx, query, externalID)
	if err != nil {
		return nil, fmt.Errorf("query version records failed: %w", err)
	}
	defer rows.Close()

	var records []*object.VersionRecord
	for rows.Next() {
		record, err := scanVersionRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate version records failed: %w", err)
	}
	return records, nil
}

// Update saves description, significance and close time
func (r *VersionRecordRepositoryImpl) Update(ctx context.Context, record *object.VersionRecord) error {
	record.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE version_records
		SET description = ?, significance = ?, closed_at = ?, updated_at = ?
		WHERE external_id = ? AND version = ?
	`
	result, err := executor(ctx, r.db).ExecContext(ctx, query,
		record.Description, string(record.Significance), nullTime(record.ClosedAt), record.UpdatedAt,
		record.ExternalID, record.Version,
	)
	if err != nil {
		return fmt.Errorf("update version record failed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected failed: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s v%d", repository.ErrVersionRecordNotFound, record.ExternalID, record.Version)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *VersionRecordRepositoryImpl) scanOne(row *sql.Row, externalID string) (*object.VersionRecord, error) {
	record, err := scanVersionRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrVersionRecordNotFound, externalID)
	}
	return record, err
}

func scanVersionRecord(row rowScanner) (*object.VersionRecord, error) {
	var (
		record       object.VersionRecord
		significance string
		closedAt     sql.NullTime
	)
	err := row.Scan(
		&record.ExternalID, &record.Version, &record.Description, &significance,
		&record.OpenedBy, &closedAt, &record.CreatedAt, &record.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan version record failed: %w", err)
	}
	record.Significance = object.Significance(significance)
	if closedAt.Valid {
		t := closedAt.Time
		record.ClosedAt = &t
	}
	return &record, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
