// Package eventlog records lifecycle events off the request path.
package eventlog

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

const defaultBuffer = 64

// AsyncRecorder implements repository.EventLog by handing events to a
// background worker that writes them to every sink. When the buffer is full
// the event is dropped and logged; callers never block or fail.
type AsyncRecorder struct {
	sinks  []repository.EventSink
	logger *zap.Logger
	queue  chan repository.Event

	mu      sync.Mutex
	closed  bool
	entropy *ulid.MonotonicEntropy
	done    chan struct{}
}

// NewAsyncRecorder starts the worker. Close must be called to flush and stop it.
func NewAsyncRecorder(logger *zap.Logger, buffer int, sinks ...repository.EventSink) *AsyncRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	r := &AsyncRecorder{
		sinks:   sinks,
		logger:  logger.Named("eventlog"),
		queue:   make(chan repository.Event, buffer),
		entropy: ulid.Monotonic(rand.Reader, 0),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

// Record enqueues an event
func (r *AsyncRecorder) Record(ctx context.Context, externalID, eventType string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		r.logger.Warn("event dropped after close", zap.String("object_id", externalID), zap.String("event_type", eventType))
		return
	}

	now := time.Now().UTC()
	event := repository.Event{
		ID:        ulid.MustNew(ulid.Timestamp(now), r.entropy).String(),
		ObjectID:  externalID,
		EventType: eventType,
		Payload:   payload,
		CreatedAt: now,
	}

	select {
	case r.queue <- event:
	default:
		r.logger.Warn("event buffer full, dropping event",
			zap.String("object_id", externalID),
			zap.String("event_type", eventType),
		)
	}
}

// Close drains queued events and stops the worker
func (r *AsyncRecorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	<-r.done
	return nil
}

func (r *AsyncRecorder) run() {
	defer close(r.done)
	for event := range r.queue {
		for _, sink := range r.sinks {
			if err := sink.Write(context.Background(), event); err != nil {
				r.logger.Error("failed to write event",
					zap.String("event_id", event.ID),
					zap.String("object_id", event.ObjectID),
					zap.String("event_type", event.EventType),
					zap.Error(err),
				)
			}
		}
	}
}
