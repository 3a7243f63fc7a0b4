package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

func createObject(t *testing.T, store *MetadataStoreImpl) (*object.Snapshot, lock.Token) {
	t.Helper()
	snap, err := object.NewSnapshot(testDruid, "Stanford map", "item", `{"title":"map"}`)
	require.NoError(t, err)
	token, err := store.Create(context.Background(), snap)
	require.NoError(t, err)
	return snap, token
}

func TestMetadataStore_CreateAndLoad(t *testing.T) {
	db, tm := setupTestDB(t)
	store := NewMetadataStore(db, tm)
	ctx := context.Background()

	snap, token := createObject(t, store)
	assert.Equal(t, snap.LockToken(), token)

	loaded, loadedToken, err := store.Load(ctx, testDruid)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Version)
	assert.Equal(t, "Stanford map", loaded.Label)
	assert.Equal(t, `{"title":"map"}`, loaded.MetadataJSON)
	assert.True(t, token.Equals(loadedToken))

	_, err = store.Create(ctx, snap)
	assert.ErrorIs(t, err, repository.ErrObjectExists)

	_, _, err = store.Load(ctx, "druid:zz999zz9999")
	assert.ErrorIs(t, err, repository.ErrObjectNotFound)
}

func TestMetadataStore_StoreCompareAndSwap(t *testing.T) {
	db, tm := setupTestDB(t)
	store := NewMetadataStore(db, tm)
	ctx := context.Background()

	snap, token := createObject(t, store)

	next := snap.NextVersion()
	newToken, err := store.Store(ctx, next, token)
	require.NoError(t, err)
	assert.False(t, newToken.Equals(token))
	assert.Equal(t, 1, next.LockVersion)

	loaded, loadedToken, err := store.Load(ctx, testDruid)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.True(t, newToken.Equals(loadedToken))

	// the old token is now stale
	_, err = store.Store(ctx, loaded.NextVersion(), token)
	var stale *lock.StaleLockError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, loadedToken, stale.Expected)
	assert.Equal(t, token, stale.Supplied)

	reloaded, _, err := store.Load(ctx, testDruid)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Version)
}

func TestMetadataStore_StoreConcurrentSingleWinner(t *testing.T) {
	db, tm := setupTestDB(t)
	store := NewMetadataStore(db, tm)
	snap, token := createObject(t, store)

	const writers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		stale     int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Store(context.Background(), snap.NextVersion(), token)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, lock.ErrStaleLock):
				stale++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, writers-1, stale)
}

func TestMetadataStore_StoreWithoutLock(t *testing.T) {
	db, tm := setupTestDB(t)
	store := NewMetadataStore(db, tm)
	ctx := context.Background()

	snap, token := createObject(t, store)
	next := snap.NextVersion()
	newToken, err := store.StoreWithoutLock(ctx, next)
	require.NoError(t, err)
	assert.False(t, newToken.Equals(token))
	assert.Equal(t, 2, next.Version)
	assert.Equal(t, 1, next.LockVersion)

	missing, err := object.NewSnapshot("druid:zz999zz9999", "", "", "")
	require.NoError(t, err)
	_, err = store.StoreWithoutLock(ctx, missing)
	assert.ErrorIs(t, err, repository.ErrObjectNotFound)
}
