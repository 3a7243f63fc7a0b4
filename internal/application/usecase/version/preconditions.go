package version

import (
	"context"
	"errors"
	"fmt"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	versionmodel "github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/version"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// preservedVersion returns the version preservation holds for the object.
// An object preservation has never seen counts as version 0 only while it
// has never been accessioned.
func (s *Service) preservedVersion(ctx context.Context, snap *object.Snapshot) (int, error) {
	v, err := s.preservation.CurrentVersion(ctx, snap.ExternalID)
	if errors.Is(err, repository.ErrPreservationNotFound) {
		accessioned, aerr := s.state.Accessioned(ctx, snap.ExternalID)
		if aerr != nil {
			return 0, aerr
		}
		if !accessioned {
			return 0, nil
		}
		return 0, versionmodel.NewError(versionmodel.KindPreservationNotReady, snap.ExternalID, snap.Version,
			"preservation is not yet answering queries about this object").WithCause(err)
	}
	if err != nil {
		return 0, versionmodel.NewError(versionmodel.KindPreservationNotReady, snap.ExternalID, snap.Version,
			"preservation registry is unavailable").WithCause(err)
	}
	return v, nil
}

// checkOpenable evaluates the open preconditions in order and returns the
// preserved version on success.
func (s *Service) checkOpenable(ctx context.Context, snap *object.Snapshot, assumeAccessioned bool) (int, error) {
	id := snap.ExternalID

	preserved, err := s.preservedVersion(ctx, snap)
	if err != nil {
		return 0, err
	}
	if preserved > snap.Version {
		return 0, versionmodel.NewError(versionmodel.KindPreservationAhead, id, snap.Version,
			fmt.Sprintf("preservation has version %d, newer than local version %d", preserved, snap.Version)).
			WithOther(preserved)
	}

	if !assumeAccessioned {
		accessioned, err := s.state.Accessioned(ctx, id)
		if err != nil {
			return 0, err
		}
		if !accessioned {
			return 0, versionmodel.NewError(versionmodel.KindNotAccessioned, id, snap.Version,
				"object has not completed an accession cycle")
		}
	}

	if err := s.checkWorkflowsIdle(ctx, snap); err != nil {
		return 0, err
	}
	return preserved, nil
}

// checkWorkflowsIdle covers the open preconditions that depend only on
// local workflow state. Open repeats it inside its transaction.
func (s *Service) checkWorkflowsIdle(ctx context.Context, snap *object.Snapshot) error {
	id := snap.ExternalID

	active, err := s.state.ActiveVersioningInstance(ctx, id)
	if err != nil {
		return err
	}
	if active != nil {
		return versionmodel.NewError(versionmodel.KindAlreadyOpen, id, snap.Version,
			fmt.Sprintf("version %d is already open", active.Version)).WithOther(active.Version)
	}

	accessioning, err := s.state.Accessioning(ctx, id)
	if err != nil {
		return err
	}
	if accessioning {
		return versionmodel.NewError(versionmodel.KindAccessioning, id, snap.Version,
			"object is still being accessioned")
	}
	return nil
}

// checkCloseable evaluates the close preconditions in order
func (s *Service) checkCloseable(ctx context.Context, snap *object.Snapshot, version int) error {
	id := snap.ExternalID

	active, err := s.state.ActiveVersioningInstance(ctx, id)
	if err != nil {
		return err
	}
	if active == nil {
		return versionmodel.NewError(versionmodel.KindNotOpen, id, snap.Version,
			"there is no open version to close").WithOther(version)
	}
	if active.Version != version || snap.Version != version {
		return versionmodel.NewError(versionmodel.KindNotOpen, id, snap.Version,
			fmt.Sprintf("version %d is not the open version (open version is %d)", version, active.Version)).
			WithOther(version)
	}

	accessioning, err := s.state.Accessioning(ctx, id)
	if err != nil {
		return err
	}
	if accessioning {
		return versionmodel.NewError(versionmodel.KindAccessioning, id, snap.Version,
			"a previous accession cycle is still running").WithOther(version)
	}

	assembling, err := s.state.Assembling(ctx, id)
	if err != nil {
		return err
	}
	if assembling {
		return versionmodel.NewError(versionmodel.KindAssembling, id, snap.Version,
			"pre-processing workflows are still running").WithOther(version)
	}
	return nil
}

// planRecords checks that the version records line up with the object head
// and returns the versions to backfill from preservation first.
func (s *Service) planRecords(ctx context.Context, snap *object.Snapshot, preserved int) ([]int, error) {
	head := 0
	current, err := s.records.Current(ctx, snap.ExternalID)
	switch {
	case errors.Is(err, repository.ErrVersionRecordNotFound):
	case err != nil:
		return nil, fmt.Errorf("load current version record: %w", err)
	default:
		head = current.Version
	}

	var backfill []int
	if s.opts.SyncWithPreservation && head < preserved {
		for v := head + 1; v <= preserved; v++ {
			backfill = append(backfill, v)
		}
		head = preserved
	}

	if head != snap.Version {
		return nil, fmt.Errorf("%w: %s has version records up to %d but is at version %d",
			versionmodel.ErrInconsistentVersions, snap.ExternalID, head, snap.Version)
	}
	return backfill, nil
}
