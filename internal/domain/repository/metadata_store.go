package repository

import (
	"context"
	"errors"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
)

// ErrObjectNotFound is returned when no snapshot exists for an identifier
var ErrObjectNotFound = errors.New("object not found")

// ErrObjectExists is returned when registering an identifier twice
var ErrObjectExists = errors.New("object already exists")

// MetadataStore persists object snapshots with optimistic concurrency
type MetadataStore interface {
	// Create stores the first snapshot of a new object
	Create(ctx context.Context, snapshot *object.Snapshot) (lock.Token, error)

	// Load returns the current snapshot and the token derived from it
	Load(ctx context.Context, externalID string) (*object.Snapshot, lock.Token, error)

	// Store writes the snapshot only if the stored state still matches expected.
	// A mismatch returns *lock.StaleLockError. The new token is returned on success.
	Store(ctx context.Context, snapshot *object.Snapshot, expected lock.Token) (lock.Token, error)

	// StoreWithoutLock writes the snapshot unconditionally
	StoreWithoutLock(ctx context.Context, snapshot *object.Snapshot) (lock.Token, error)
}
