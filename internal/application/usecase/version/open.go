package version

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	versionmodel "github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/version"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/service"
)

// ReconciledDescription is written on version records backfilled from preservation
const ReconciledDescription = "Reconciled with preservation"

type openOptions struct {
	token             *lock.Token
	assumeAccessioned bool
	skip              *service.SkipLock
}

// OpenOption customises Open
type OpenOption func(*openOptions)

// WithLockToken makes Open verify and write against a token the caller
// obtained earlier, so changes made since then fail as a stale lock.
func WithLockToken(token lock.Token) OpenOption {
	return func(o *openOptions) {
		o.token = &token
	}
}

// AssumeAccessioned skips the accessioned precondition
func AssumeAccessioned() OpenOption {
	return func(o *openOptions) {
		o.assumeAccessioned = true
	}
}

// SkipLock writes the new head without the token check. Actor and reason are
// required and logged.
func SkipLock(actor, reason string) OpenOption {
	return func(o *openOptions) {
		o.skip = &service.SkipLock{Actor: actor, Reason: reason}
	}
}

// Open creates version n+1 of an object that is closed and accessioned,
// returning the new version number.
func (s *Service) Open(ctx context.Context, externalID, description, opener string, opts ...OpenOption) (newVersion int, err error) {
	defer func() { s.metrics.RecordOperation("open", Outcome(err)) }()

	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}
	description = object.NormalizeDescription(description)

	snap, token, err := s.store.Load(ctx, externalID)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", externalID, err)
	}

	expected := token
	if o.token != nil {
		if err := s.guard.Check(snap, *o.token); err != nil {
			return 0, err
		}
		expected = *o.token
	}

	preserved, err := s.checkOpenable(ctx, snap, o.assumeAccessioned)
	if err != nil {
		return 0, err
	}

	next := snap.NextVersion()
	newVersion = next.Version
	var backfill []int

	err = s.txManager.InTransaction(ctx, func(txCtx context.Context) error {
		// another opener may have committed since the checks above
		if err := s.checkWorkflowsIdle(txCtx, snap); err != nil {
			return err
		}
		var err error
		if backfill, err = s.planRecords(txCtx, snap, preserved); err != nil {
			return err
		}

		if _, err := s.guard.Persist(txCtx, next, expected, o.skip); err != nil {
			return err
		}

		for _, v := range backfill {
			record, err := object.NewVersionRecord(externalID, v, ReconciledDescription, opener)
			if err != nil {
				return s.partialFailure(externalID, newVersion, "backfill version record", err)
			}
			if err := s.records.Create(txCtx, record); err != nil {
				return s.partialFailure(externalID, newVersion, "backfill version record", err)
			}
		}

		record, err := object.NewVersionRecord(externalID, newVersion, description, opener)
		if err != nil {
			return s.partialFailure(externalID, newVersion, "create version record", err)
		}
		if err := s.records.Create(txCtx, record); err != nil {
			return s.partialFailure(externalID, newVersion, "create version record", err)
		}

		if _, err := s.engine.CreateInstance(txCtx, externalID, workflow.VersioningWF, newVersion, nil); err != nil {
			return s.partialFailure(externalID, newVersion, "create "+workflow.VersioningWF, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if len(backfill) > 0 {
		s.logger.Info("version records reconciled with preservation",
			zap.String("object_id", externalID),
			zap.Ints("versions", backfill),
		)
	}
	s.logger.Info("version opened",
		zap.String("object_id", externalID),
		zap.Int("version", newVersion),
		zap.String("opener", opener),
	)
	s.events.Record(ctx, externalID, repository.EventVersionOpen, map[string]any{
		"who":         opener,
		"version":     newVersion,
		"description": description,
	})
	return newVersion, nil
}

func (s *Service) partialFailure(externalID string, version int, step string, err error) error {
	s.logger.Error("version transition left incomplete",
		zap.String("object_id", externalID),
		zap.Int("version", version),
		zap.String("step", step),
		zap.Error(err),
	)
	return &versionmodel.PartialFailureError{ObjectID: externalID, Version: version, Step: step, Err: err}
}
