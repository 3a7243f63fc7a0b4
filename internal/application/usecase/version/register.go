package version

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// RegisterRequest describes a new object
type RegisterRequest struct {
	ID             string
	Label          string
	ObjectType     string
	MetadataJSON   string
	Who            string
	StartAccession bool // start accessionWF for version 1
}

// Register creates an object at version 1 with its initial version record
func (s *Service) Register(ctx context.Context, req RegisterRequest) (snap *object.Snapshot, err error) {
	defer func() { s.metrics.RecordOperation("register", Outcome(err)) }()

	snap, err = object.NewSnapshot(req.ID, req.Label, req.ObjectType, req.MetadataJSON)
	if err != nil {
		return nil, err
	}

	err = s.txManager.InTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.store.Create(txCtx, snap); err != nil {
			return fmt.Errorf("create object: %w", err)
		}

		record, err := object.NewVersionRecord(snap.ExternalID, 1, object.InitialVersionDescription, req.Who)
		if err != nil {
			return err
		}
		if err := s.records.Create(txCtx, record); err != nil {
			return fmt.Errorf("create initial version record: %w", err)
		}

		if req.StartAccession {
			if _, err := s.engine.CreateInstance(txCtx, snap.ExternalID, workflow.AccessionWF, 1, nil); err != nil {
				return fmt.Errorf("start %s: %w", workflow.AccessionWF, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("object registered", zap.String("object_id", snap.ExternalID), zap.String("who", req.Who))
	s.events.Record(ctx, snap.ExternalID, repository.EventRegistration, map[string]any{
		"who":     req.Who,
		"version": 1,
	})
	return snap, nil
}
