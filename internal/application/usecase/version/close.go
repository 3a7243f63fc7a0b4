package version

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// CloseRequest carries the optional changes applied when a version closes
type CloseRequest struct {
	Description    string              // empty keeps the description given at open
	Significance   object.Significance // empty keeps the existing significance
	Closer         string
	StartAccession bool
}

// Close closes the open version and optionally starts accessioning it
func (s *Service) Close(ctx context.Context, externalID string, version int, req CloseRequest) (err error) {
	defer func() { s.metrics.RecordOperation("close", Outcome(err)) }()

	if !req.Significance.IsValid() {
		return fmt.Errorf("invalid significance: %q", req.Significance)
	}

	snap, _, err := s.store.Load(ctx, externalID)
	if err != nil {
		return fmt.Errorf("load %s: %w", externalID, err)
	}
	if err := s.checkCloseable(ctx, snap, version); err != nil {
		return err
	}

	var record *object.VersionRecord
	err = s.txManager.InTransaction(ctx, func(txCtx context.Context) error {
		// a concurrent close may have committed since the checks above
		if err := s.checkCloseable(txCtx, snap, version); err != nil {
			return err
		}

		found, err := s.records.Find(txCtx, externalID, version)
		if errors.Is(err, repository.ErrVersionRecordNotFound) {
			// open versions created outside this service may lack a record
			found, err = object.NewVersionRecord(externalID, version, "", req.Closer)
			if err == nil {
				err = s.records.Create(txCtx, found)
			}
		}
		if err != nil {
			return fmt.Errorf("load version record: %w", err)
		}
		record = found

		if err := record.Amend(req.Description, req.Significance); err != nil {
			return err
		}
		record.MarkClosed(time.Now())
		if err := s.records.Update(txCtx, record); err != nil {
			return fmt.Errorf("update version record: %w", err)
		}

		if err := s.engine.CloseInstance(txCtx, externalID, workflow.VersioningWF, version, req.StartAccession); err != nil {
			return s.partialFailure(externalID, version, "close "+workflow.VersioningWF, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("version closed",
		zap.String("object_id", externalID),
		zap.Int("version", version),
		zap.String("closer", req.Closer),
		zap.Bool("start_accession", req.StartAccession),
	)
	s.events.Record(ctx, externalID, repository.EventVersionClose, map[string]any{
		"who":             req.Closer,
		"version":         version,
		"description":     record.Description,
		"significance":    string(record.Significance),
		"start_accession": req.StartAccession,
	})
	return nil
}
