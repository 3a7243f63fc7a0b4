package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sul-dlss/dor-services-app-sub001/internal/application/port/output"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// MetadataStoreImpl implements repository.MetadataStore with SQLite
type MetadataStoreImpl struct {
	db *sql.DB
	tm output.TransactionManager
}

// NewMetadataStore creates a new SQLite-based metadata store
func NewMetadataStore(db *sql.DB, tm output.TransactionManager) *MetadataStoreImpl {
	return &MetadataStoreImpl{db: db, tm: tm}
}

// Create inserts the first snapshot of an object
func (s *MetadataStoreImpl) Create(ctx context.Context, snapshot *object.Snapshot) (lock.Token, error) {
	if err := snapshot.Validate(); err != nil {
		return lock.Token{}, err
	}

	now := time.Now().UTC()
	snapshot.LockVersion = 0
	snapshot.CreatedAt = now
	snapshot.UpdatedAt = now

	query := `
		INSERT INTO objects (external_id, label, object_type, version, lock_version, metadata_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := executor(ctx, s.db).ExecContext(ctx, query,
		snapshot.ExternalID, snapshot.Label, snapshot.ObjectType,
		snapshot.Version, snapshot.LockVersion, snapshot.MetadataJSON,
		snapshot.CreatedAt, snapshot.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return lock.Token{}, fmt.Errorf("%w: %s", repository.ErrObjectExists, snapshot.ExternalID)
	}
	if err != nil {
		return lock.Token{}, fmt.Errorf("insert object failed: %w", err)
	}
	return snapshot.LockToken(), nil
}

// Load retrieves the current snapshot and its token
func (s *MetadataStoreImpl) Load(ctx context.Context, externalID string) (*object.Snapshot, lock.Token, error) {
	snapshot, err := s.find(ctx, externalID)
	if err != nil {
		return nil, lock.Token{}, err
	}
	return snapshot, snapshot.LockToken(), nil
}

// Store writes snapshot if the stored state still derives the expected token.
// On success snapshot.LockVersion is advanced and the new token returned.
func (s *MetadataStoreImpl) Store(ctx context.Context, snapshot *object.Snapshot, expected lock.Token) (lock.Token, error) {
	if err := snapshot.Validate(); err != nil {
		return lock.Token{}, err
	}

	var token lock.Token
	err := s.tm.InTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.find(txCtx, snapshot.ExternalID)
		if err != nil {
			return err
		}
		if !current.LockToken().Equals(expected) {
			return &lock.StaleLockError{ObjectID: snapshot.ExternalID, Expected: current.LockToken(), Supplied: expected}
		}

		query := `
			UPDATE objects
			SET label = ?, object_type = ?, version = ?, lock_version = ?, metadata_json = ?, updated_at = ?
			WHERE external_id = ? AND version = ? AND lock_version = ?
		`
		now := time.Now().UTC()
		result, err := executor(txCtx, s.db).ExecContext(txCtx, query,
			snapshot.Label, snapshot.ObjectType, snapshot.Version, current.LockVersion+1, snapshot.MetadataJSON, now,
			snapshot.ExternalID, current.Version, current.LockVersion,
		)
		if err != nil {
			return fmt.Errorf("update object failed: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected failed: %w", err)
		}
		if rows == 0 {
			return &lock.StaleLockError{ObjectID: snapshot.ExternalID, Expected: current.LockToken(), Supplied: expected}
		}

		snapshot.LockVersion = current.LockVersion + 1
		snapshot.CreatedAt = current.CreatedAt
		snapshot.UpdatedAt = now
		token = snapshot.LockToken()
		return nil
	})
	if err != nil {
		return lock.Token{}, err
	}
	return token, nil
}

// StoreWithoutLock writes snapshot unconditionally, still advancing the change counter
func (s *MetadataStoreImpl) StoreWithoutLock(ctx context.Context, snapshot *object.Snapshot) (lock.Token, error) {
	if err := snapshot.Validate(); err != nil {
		return lock.Token{}, err
	}

	var token lock.Token
	err := s.tm.InTransaction(ctx, func(txCtx context.Context) error {
		query := `
			UPDATE objects
			SET label = ?, object_type = ?, version = ?, lock_version = lock_version + 1, metadata_json = ?, updated_at = ?
			WHERE external_id = ?
		`
		result, err := executor(txCtx, s.db).ExecContext(txCtx, query,
			snapshot.Label, snapshot.ObjectType, snapshot.Version, snapshot.MetadataJSON, time.Now().UTC(),
			snapshot.ExternalID,
		)
		if err != nil {
			return fmt.Errorf("update object failed: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected failed: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: %s", repository.ErrObjectNotFound, snapshot.ExternalID)
		}

		stored, err := s.find(txCtx, snapshot.ExternalID)
		if err != nil {
			return err
		}
		*snapshot = *stored
		token = stored.LockToken()
		return nil
	})
	if err != nil {
		return lock.Token{}, err
	}
	return token, nil
}

func (s *MetadataStoreImpl) find(ctx context.Context, externalID string) (*object.Snapshot, error) {
	query := `
		SELECT external_id, label, object_type, version, lock_version, metadata_json, created_at, updated_at
		FROM objects
		WHERE external_id = ?
	`
	var snapshot object.Snapshot
	err := executor(ctx, s.db).QueryRowContext(ctx, query, externalID).Scan(
		&snapshot.ExternalID, &snapshot.Label, &snapshot.ObjectType,
		&snapshot.Version, &snapshot.LockVersion, &snapshot.MetadataJSON,
		&snapshot.CreatedAt, &snapshot.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repository.ErrObjectNotFound, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("query object failed: %w", err)
	}
	return &snapshot, nil
}
