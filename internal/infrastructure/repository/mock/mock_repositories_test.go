package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// Compile-time interface checks
var (
	_ repository.MetadataStore           = (*MockMetadataStore)(nil)
	_ repository.VersionRecordRepository = (*MockVersionRecordRepository)(nil)
	_ repository.WorkflowEngine          = (*MockWorkflowEngine)(nil)
	_ repository.WorkflowStepUpdater     = (*MockWorkflowEngine)(nil)
	_ repository.PreservationRegistry    = (*MockPreservationRegistry)(nil)
	_ repository.PreservationRecorder    = (*MockPreservationRegistry)(nil)
	_ repository.EventLog                = (*MockEventLog)(nil)
)

const druid = "druid:bc123df4567"

func TestMockMetadataStore_CompareAndSwap(t *testing.T) {
	store := NewMockMetadataStore()
	ctx := context.Background()

	snap, err := object.NewSnapshot(druid, "label", "", "")
	require.NoError(t, err)
	token, err := store.Create(ctx, snap)
	require.NoError(t, err)

	_, err = store.Create(ctx, snap)
	assert.ErrorIs(t, err, repository.ErrObjectExists)

	_, err = store.Store(ctx, snap.NextVersion(), token)
	require.NoError(t, err)

	_, err = store.Store(ctx, snap.NextVersion(), token)
	assert.ErrorIs(t, err, lock.ErrStaleLock)

	loaded, _, err := store.Load(ctx, druid)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, 1, loaded.LockVersion)
}

func TestMockWorkflowEngine_FailOn(t *testing.T) {
	engine := NewMockWorkflowEngine()
	ctx := context.Background()
	boom := errors.New("boom")

	engine.FailOn("CreateInstance", boom)
	_, err := engine.CreateInstance(ctx, druid, workflow.VersioningWF, 2, nil)
	assert.ErrorIs(t, err, boom)

	engine.FailOn("CreateInstance", nil)
	_, err = engine.CreateInstance(ctx, druid, workflow.VersioningWF, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.CountInstances(druid, workflow.VersioningWF))

	require.NoError(t, engine.CloseInstance(ctx, druid, workflow.VersioningWF, 2, true))
	inst, err := engine.FetchInstance(ctx, druid, workflow.AccessionWF)
	require.NoError(t, err)
	assert.True(t, inst.IsActive())
}

func TestMockPreservationRegistry(t *testing.T) {
	registry := NewMockPreservationRegistry()
	ctx := context.Background()

	_, err := registry.CurrentVersion(ctx, druid)
	assert.ErrorIs(t, err, repository.ErrPreservationNotFound)

	require.NoError(t, registry.SetVersion(ctx, druid, 2))
	v, err := registry.CurrentVersion(ctx, druid)
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	registry.SetError(assert.AnError)
	_, err = registry.CurrentVersion(ctx, druid)
	assert.ErrorIs(t, err, assert.AnError)
}
