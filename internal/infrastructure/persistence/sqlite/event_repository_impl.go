package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// EventRepositoryImpl persists lifecycle events.
// It implements repository.EventSink and repository.EventReader.
type EventRepositoryImpl struct {
	db *sql.DB
}

// NewEventRepository creates a new SQLite-based event repository
func NewEventRepository(db *sql.DB) *EventRepositoryImpl {
	return &EventRepositoryImpl{db: db}
}

// Write stores one event
func (r *EventRepositoryImpl) Write(ctx context.Context, event repository.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload failed: %w", err)
	}
	_, err = executor(ctx, r.db).ExecContext(ctx,
		"INSERT INTO events (id, external_id, event_type, payload_json, created_at) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.ObjectID, event.EventType, string(payload), event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event failed: %w", err)
	}
	return nil
}

// ListEvents returns the object's events, oldest first
func (r *EventRepositoryImpl) ListEvents(ctx context.Context, externalID string) ([]repository.Event, error) {
	rows, err := executor(ctx, r.db).QueryContext(ctx, `
		SELECT id, external_id, event_type, payload_json, created_at
		FROM events
		WHERE external_id = ?
		ORDER BY created_at ASC, id ASC
	`, externalID)
	if err != nil {
		return nil, fmt.Errorf("query events failed: %w", err)
	}
	defer rows.Close()

	var events []repository.Event
	for rows.Next() {
		var (
			event   repository.Event
			payload string
		)
		if err := rows.Scan(&event.ID, &event.ObjectID, &event.EventType, &payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event failed: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &event.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload failed: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events failed: %w", err)
	}
	return events, nil
}
