package version

import (
	"context"
	"errors"
	"fmt"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	versionmodel "github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/version"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// CanOpen reports whether Open would pass its preconditions.
// Failed preconditions, including an unavailable preservation registry,
// return false with a nil error.
func (s *Service) CanOpen(ctx context.Context, externalID string) (bool, error) {
	snap, _, err := s.store.Load(ctx, externalID)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", externalID, err)
	}
	return predicate(s.checkOpenable(ctx, snap, false))
}

// CanClose reports whether Close would pass its preconditions for version
func (s *Service) CanClose(ctx context.Context, externalID string, version int) (bool, error) {
	snap, _, err := s.store.Load(ctx, externalID)
	if err != nil {
		return false, fmt.Errorf("load %s: %w", externalID, err)
	}
	return predicate(0, s.checkCloseable(ctx, snap, version))
}

func predicate(_ int, err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if versionmodel.IsPrecondition(err) {
		return false, nil
	}
	return false, err
}

// Status summarises the lifecycle state of an object
func (s *Service) Status(ctx context.Context, externalID string) (*versionmodel.Status, error) {
	snap, _, err := s.store.Load(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", externalID, err)
	}

	derived, err := s.state.Derive(ctx, externalID)
	if err != nil {
		return nil, err
	}

	status := &versionmodel.Status{
		ObjectID:              externalID,
		Version:               snap.Version,
		State:                 versionmodel.DeriveState(derived.ActiveVersionWorkflow, derived.Accessioning),
		Accessioned:           derived.Accessioned,
		Accessioning:          derived.Accessioning,
		Assembling:            derived.Assembling,
		ActiveVersionWorkflow: derived.ActiveVersionWorkflow,
	}

	if record, err := s.records.Find(ctx, externalID, snap.Version); err == nil {
		status.Description = record.Description
		status.Significance = string(record.Significance)
	} else if !errors.Is(err, repository.ErrVersionRecordNotFound) {
		return nil, err
	}

	if v, err := s.preservation.CurrentVersion(ctx, externalID); err == nil {
		status.PreservationVersion = v
	}

	if status.Openable, err = predicate(s.checkOpenable(ctx, snap, false)); err != nil {
		return nil, err
	}
	if status.Closeable, err = predicate(0, s.checkCloseable(ctx, snap, snap.Version)); err != nil {
		return nil, err
	}
	return status, nil
}

// LockToken returns the token for the object as currently stored, for use
// with WithLockToken.
func (s *Service) LockToken(ctx context.Context, externalID string) (lock.Token, error) {
	_, token, err := s.store.Load(ctx, externalID)
	if err != nil {
		return lock.Token{}, fmt.Errorf("load %s: %w", externalID, err)
	}
	return token, nil
}

// History lists the version records of an object, oldest first
func (s *Service) History(ctx context.Context, externalID string) ([]*object.VersionRecord, error) {
	if _, _, err := s.store.Load(ctx, externalID); err != nil {
		return nil, fmt.Errorf("load %s: %w", externalID, err)
	}
	return s.records.List(ctx, externalID)
}
