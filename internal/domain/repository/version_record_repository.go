package repository

import (
	"context"
	"errors"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
)

// ErrVersionRecordNotFound is returned when a version record does not exist
var ErrVersionRecordNotFound = errors.New("version record not found")

// ErrVersionRecordExists is returned when creating a duplicate (object, version) record
var ErrVersionRecordExists = errors.New("version record already exists")

// VersionRecordRepository manages per-version descriptive records
type VersionRecordRepository interface {
	// Create inserts a new record; duplicates return ErrVersionRecordExists
	Create(ctx context.Context, record *object.VersionRecord) error

	// Find retrieves the record for a specific version
	Find(ctx context.Context, externalID string, version int) (*object.VersionRecord, error)

	// Current retrieves the highest-numbered record
	Current(ctx context.Context, externalID string) (*object.VersionRecord, error)

	// List returns all records in ascending version order
	List(ctx context.Context, externalID string) ([]*object.VersionRecord, error)

	// Update saves description, significance and close time
	Update(ctx context.Context, record *object.VersionRecord) error
}
