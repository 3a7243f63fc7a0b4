package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
)

func testSnapshot(t *testing.T) *object.Snapshot {
	t.Helper()
	snap, err := object.NewSnapshot(testDruid, "A map of Palo Alto", "item", "{}")
	require.NoError(t, err)
	snap.Version = 2
	snap.LockVersion = 4
	return snap
}

func TestLockGuard_Check(t *testing.T) {
	snap := testSnapshot(t)
	guard := NewLockGuard(new(mockMetadataStore), zap.NewNop(), nil)

	assert.NoError(t, guard.Check(snap, snap.LockToken()))

	stale := lock.NewToken(testDruid, 2, 3)
	err := guard.Check(snap, stale)
	var staleErr *lock.StaleLockError
	require.True(t, errors.As(err, &staleErr))
	assert.Equal(t, snap.LockToken(), staleErr.Expected)
	assert.Equal(t, stale, staleErr.Supplied)
	assert.ErrorIs(t, err, lock.ErrStaleLock)

	assert.ErrorIs(t, guard.Check(snap, lock.Token{}), lock.ErrStaleLock)
}

func TestLockGuard_Persist_UsesCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	snap := testSnapshot(t)
	expected := snap.LockToken()
	next := snap.NextVersion()
	newToken := lock.NewToken(testDruid, 3, 5)

	store := new(mockMetadataStore)
	store.On("Store", ctx, next, expected).Return(newToken, nil)

	got, err := NewLockGuard(store, nil, nil).Persist(ctx, next, expected, nil)
	require.NoError(t, err)
	assert.Equal(t, newToken, got)
	store.AssertNotCalled(t, "StoreWithoutLock", mock.Anything, mock.Anything)
}

func TestLockGuard_Persist_StaleWrapped(t *testing.T) {
	ctx := context.Background()
	snap := testSnapshot(t)
	stale := &lock.StaleLockError{ObjectID: testDruid, Expected: lock.NewToken(testDruid, 2, 5), Supplied: snap.LockToken()}

	store := new(mockMetadataStore)
	store.On("Store", ctx, mock.Anything, snap.LockToken()).Return(lock.Token{}, stale)

	_, err := NewLockGuard(store, nil, nil).Persist(ctx, snap.NextVersion(), snap.LockToken(), nil)
	var staleErr *lock.StaleLockError
	assert.True(t, errors.As(err, &staleErr))
}

func TestLockGuard_Persist_SkipIsAudited(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.WarnLevel)
	next := testSnapshot(t).NextVersion()

	store := new(mockMetadataStore)
	store.On("StoreWithoutLock", ctx, next).Return(lock.NewToken(testDruid, 3, 5), nil)

	var audited []string
	guard := NewLockGuard(store, zap.New(core), func(objectID, actor, reason string) {
		audited = append(audited, objectID+"|"+actor+"|"+reason)
	})

	_, err := guard.Persist(ctx, next, lock.Token{}, &SkipLock{Actor: "registration", Reason: "fresh object"})
	require.NoError(t, err)

	assert.Equal(t, []string{testDruid + "|registration|fresh object"}, audited)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "lock check bypassed", entry.Message)
	assert.Equal(t, "registration", entry.ContextMap()["actor"])
	store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
}

func TestLockGuard_Persist_SkipRequiresAttribution(t *testing.T) {
	store := new(mockMetadataStore)
	_, err := NewLockGuard(store, nil, nil).Persist(context.Background(), testSnapshot(t), lock.Token{}, &SkipLock{Actor: "admin"})
	assert.ErrorIs(t, err, ErrSkipLockUnattributed)
	store.AssertExpectations(t)
}
