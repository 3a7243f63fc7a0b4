package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

func TestVersionRecordRepository_Lifecycle(t *testing.T) {
	db, tm := setupTestDB(t)
	createObject(t, NewMetadataStore(db, tm))
	repo := NewVersionRecordRepository(db)
	ctx := context.Background()

	_, err := repo.Current(ctx, testDruid)
	assert.ErrorIs(t, err, repository.ErrVersionRecordNotFound)

	for v, desc := range map[int]string{1: object.InitialVersionDescription, 2: "Fix typo"} {
		record, err := object.NewVersionRecord(testDruid, v, desc, "jdoe")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, record))
	}

	dup, err := object.NewVersionRecord(testDruid, 2, "again", "jdoe")
	require.NoError(t, err)
	assert.ErrorIs(t, repo.Create(ctx, dup), repository.ErrVersionRecordExists)

	current, err := repo.Current(ctx, testDruid)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Version)
	assert.Equal(t, "Fix typo", current.Description)
	assert.False(t, current.IsClosed())

	require.NoError(t, current.Amend("Fix typo in title", object.SignificanceMinor))
	current.MarkClosed(time.Now())
	require.NoError(t, repo.Update(ctx, current))

	found, err := repo.Find(ctx, testDruid, 2)
	require.NoError(t, err)
	assert.Equal(t, "Fix typo in title", found.Description)
	assert.Equal(t, object.SignificanceMinor, found.Significance)
	assert.True(t, found.IsClosed())

	records, err := repo.List(ctx, testDruid)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Version)
	assert.Equal(t, 2, records[1].Version)

	_, err = repo.Find(ctx, testDruid, 3)
	assert.ErrorIs(t, err, repository.ErrVersionRecordNotFound)

	missing := &object.VersionRecord{ExternalID: testDruid, Version: 9}
	assert.ErrorIs(t, repo.Update(ctx, missing), repository.ErrVersionRecordNotFound)
}

func TestVersionRecordRepository_RollsBackWithTransaction(t *testing.T) {
	db, tm := setupTestDB(t)
	createObject(t, NewMetadataStore(db, tm))
	repo := NewVersionRecordRepository(db)
	ctx := context.Background()

	err := tm.InTransaction(ctx, func(txCtx context.Context) error {
		record, err := object.NewVersionRecord(testDruid, 1, "inside", "jdoe")
		require.NoError(t, err)
		require.NoError(t, repo.Create(txCtx, record))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	records, err := repo.List(ctx, testDruid)
	require.NoError(t, err)
	assert.Empty(t, records)
}
