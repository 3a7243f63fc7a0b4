package object

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
)

// Snapshot is the stored head of a repository object: its identity, current
// version number and the change counter used for optimistic concurrency.
type Snapshot struct {
	ExternalID   string
	Label        string
	ObjectType   string
	Version      int
	LockVersion  int
	MetadataJSON string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewSnapshot creates the initial snapshot for a freshly registered object
func NewSnapshot(externalID, label, objectType, metadataJSON string) (*Snapshot, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return nil, errors.New("external identifier cannot be empty")
	}
	if objectType == "" {
		objectType = "item"
	}
	now := time.Now().UTC()
	return &Snapshot{
		ExternalID:   externalID,
		Label:        strings.TrimSpace(label),
		ObjectType:   objectType,
		Version:      1,
		MetadataJSON: metadataJSON,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// LockToken returns the token matching the snapshot as stored
func (s *Snapshot) LockToken() lock.Token {
	return lock.NewToken(s.ExternalID, s.Version, s.LockVersion)
}

// NextVersion returns a copy of the snapshot advanced to the next version.
// The change counter is left alone; stores bump it on write.
func (s *Snapshot) NextVersion() *Snapshot {
	next := *s
	next.Version = s.Version + 1
	next.UpdatedAt = time.Now().UTC()
	return &next
}

// Validate checks the snapshot invariants before persisting
func (s *Snapshot) Validate() error {
	if s.ExternalID == "" {
		return errors.New("external identifier cannot be empty")
	}
	if s.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", s.Version)
	}
	if s.LockVersion < 0 {
		return fmt.Errorf("lock version must be >= 0, got %d", s.LockVersion)
	}
	return nil
}
