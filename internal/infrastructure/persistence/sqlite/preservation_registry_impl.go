package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// PreservationRegistryImpl is a local preservation registry backed by SQLite.
// It is used when no remote preservation service is configured.
type PreservationRegistryImpl struct {
	db *sql.DB
}

// NewPreservationRegistry creates a new SQLite-based preservation registry
func NewPreservationRegistry(db *sql.DB) *PreservationRegistryImpl {
	return &PreservationRegistryImpl{db: db}
}

// CurrentVersion returns the highest preserved version
func (r *PreservationRegistryImpl) CurrentVersion(ctx context.Context, externalID string) (int, error) {
	var version int
	err := executor(ctx, r.db).QueryRowContext(ctx,
		"SELECT version FROM preserved_versions WHERE external_id = ?", externalID,
	).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: %s", repository.ErrPreservationNotFound, externalID)
	}
	if err != nil {
		return 0, fmt.Errorf("query preserved version failed: %w", err)
	}
	return version, nil
}

// SetVersion records version as preserved
func (r *PreservationRegistryImpl) SetVersion(ctx context.Context, externalID string, version int) error {
	if version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", version)
	}
	query := `
		INSERT INTO preserved_versions (external_id, version, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(external_id) DO UPDATE SET version = excluded.version, updated_at = excluded.updated_at
	`
	if _, err := executor(ctx, r.db).ExecContext(ctx, query, externalID, version, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert preserved version failed: %w", err)
	}
	return nil
}
