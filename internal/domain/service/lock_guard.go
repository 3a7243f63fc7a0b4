package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/object"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// ErrSkipLockUnattributed is returned when a lock bypass names no actor or reason
var ErrSkipLockUnattributed = errors.New("skip lock requires an actor and a reason")

// SkipLock is an explicit request to bypass the token check
type SkipLock struct {
	Actor  string
	Reason string
}

// SkipAuditFunc is called for every bypassed token check
type SkipAuditFunc func(objectID, actor, reason string)

// LockGuard checks caller tokens against stored state before snapshots are written
type LockGuard struct {
	store  repository.MetadataStore
	logger *zap.Logger
	onSkip SkipAuditFunc
}

// NewLockGuard creates a new lock guard
func NewLockGuard(store repository.MetadataStore, logger *zap.Logger, onSkip SkipAuditFunc) *LockGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LockGuard{store: store, logger: logger, onSkip: onSkip}
}

// Check compares a supplied token with the one derived from current state
func (g *LockGuard) Check(current *object.Snapshot, supplied lock.Token) error {
	expected := current.LockToken()
	if supplied.IsZero() || !supplied.Equals(expected) {
		return &lock.StaleLockError{ObjectID: current.ExternalID, Expected: expected, Supplied: supplied}
	}
	return nil
}

// Persist writes next guarded by expected. A non-nil skip bypasses the
// compare-and-swap and is logged and audited.
func (g *LockGuard) Persist(ctx context.Context, next *object.Snapshot, expected lock.Token, skip *SkipLock) (lock.Token, error) {
	if skip == nil {
		token, err := g.store.Store(ctx, next, expected)
		if err != nil {
			return lock.Token{}, fmt.Errorf("store snapshot: %w", err)
		}
		return token, nil
	}

	if skip.Actor == "" || skip.Reason == "" {
		return lock.Token{}, ErrSkipLockUnattributed
	}
	g.logger.Warn("lock check bypassed",
		zap.String("object_id", next.ExternalID),
		zap.Int("version", next.Version),
		zap.String("actor", skip.Actor),
		zap.String("reason", skip.Reason),
	)
	if g.onSkip != nil {
		g.onSkip(next.ExternalID, skip.Actor, skip.Reason)
	}
	token, err := g.store.StoreWithoutLock(ctx, next)
	if err != nil {
		return lock.Token{}, fmt.Errorf("store snapshot without lock: %w", err)
	}
	return token, nil
}
