package repository

import (
	"context"
	"errors"
)

// ErrPreservationNotFound is returned when preservation has never seen the object
var ErrPreservationNotFound = errors.New("object not found in preservation")

// PreservationRegistry reports the highest version durably preserved
type PreservationRegistry interface {
	CurrentVersion(ctx context.Context, externalID string) (int, error)
}

// PreservationRecorder is implemented by registries that can be updated locally
type PreservationRecorder interface {
	SetVersion(ctx context.Context, externalID string, version int) error
}
