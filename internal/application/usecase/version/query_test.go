package version

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	versionmodel "github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/version"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

func TestPredicates_AreIdempotent(t *testing.T) {
	h := newHarness(t, Options{})
	h.accessioned(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		ok, err := h.svc.CanOpen(ctx, druid)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = h.svc.CanClose(ctx, druid, 1)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	assert.Equal(t, 1, h.currentVersion(t))
	assert.Equal(t, 0, h.engine.CountInstances(druid, workflow.VersioningWF))
	assert.Len(t, h.events.Events(), 1) // registration only
}

func TestCanOpen_StoreErrorsPropagate(t *testing.T) {
	h := newHarness(t, Options{})
	h.accessioned(t)
	h.engine.FailOn("FetchInstance", assert.AnError)

	ok, err := h.svc.CanOpen(context.Background(), druid)
	assert.False(t, ok)
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, versionmodel.IsPrecondition(err))
}

func TestStatus(t *testing.T) {
	h := newHarness(t, Options{})
	h.accessioned(t)
	ctx := context.Background()

	status, err := h.svc.Status(ctx, druid)
	require.NoError(t, err)
	assert.Equal(t, versionmodel.Status{
		ObjectID:            druid,
		Version:             1,
		State:               versionmodel.StateClosed,
		Description:         object.InitialVersionDescription,
		Accessioned:         true,
		Openable:            true,
		PreservationVersion: 1,
	}, *status)

	_, err = h.svc.Open(ctx, druid, "v2 work", "jdoe")
	require.NoError(t, err)

	status, err = h.svc.Status(ctx, druid)
	require.NoError(t, err)
	assert.Equal(t, 2, status.Version)
	assert.Equal(t, versionmodel.StateOpen, status.State)
	assert.Equal(t, "v2 work", status.Description)
	assert.True(t, status.ActiveVersionWorkflow)
	assert.False(t, status.Openable)
	assert.True(t, status.Closeable)

	require.NoError(t, h.svc.Close(ctx, druid, 2, CloseRequest{StartAccession: true}))
	status, err = h.svc.Status(ctx, druid)
	require.NoError(t, err)
	assert.Equal(t, versionmodel.StateAccessioning, status.State)
	assert.True(t, status.Accessioning)
	assert.False(t, status.Openable)
	assert.False(t, status.Closeable)
}

func TestHistory(t *testing.T) {
	h := newHarness(t, Options{})
	h.accessioned(t)
	ctx := context.Background()

	_, err := h.svc.Open(ctx, druid, "v2 work", "jdoe")
	require.NoError(t, err)

	records, err := h.svc.History(ctx, druid)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, object.InitialVersionDescription, records[0].Description)
	assert.Equal(t, "v2 work", records[1].Description)

	_, err = h.svc.History(ctx, "druid:zz999zz9999")
	assert.ErrorIs(t, err, repository.ErrObjectNotFound)
}

func TestRegister(t *testing.T) {
	h := newHarness(t, Options{})
	ctx := context.Background()

	snap, err := h.svc.Register(ctx, RegisterRequest{ID: druid, Label: "map", Who: "registrar", StartAccession: true})
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Version)

	accessioning, err := h.svc.State().Accessioning(ctx, druid)
	require.NoError(t, err)
	assert.True(t, accessioning)

	_, err = h.svc.Register(ctx, RegisterRequest{ID: druid})
	assert.ErrorIs(t, err, repository.ErrObjectExists)

	_, err = h.svc.Register(ctx, RegisterRequest{ID: "  "})
	assert.Error(t, err)

	events := h.events.Events(repository.EventRegistration)
	require.Len(t, events, 1)
	assert.Equal(t, "registrar", events[0].Payload["who"])
}
