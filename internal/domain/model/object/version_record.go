package object

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// ErrVersionRecordClosed is returned when mutating a record after its version was closed
var ErrVersionRecordClosed = errors.New("version record is closed")

// Significance classifies how much a version changed the object
type Significance string

const (
	SignificanceNone  Significance = ""
	SignificanceMajor Significance = "major"
	SignificanceMinor Significance = "minor"
	SignificanceAdmin Significance = "admin"
)

// IsValid validates the significance
func (s Significance) IsValid() bool {
	switch s {
	case SignificanceNone, SignificanceMajor, SignificanceMinor, SignificanceAdmin:
		return true
	default:
		return false
	}
}

// ParseSignificance converts user input into a Significance
func ParseSignificance(value string) (Significance, error) {
	sig := Significance(strings.ToLower(strings.TrimSpace(value)))
	if !sig.IsValid() {
		return SignificanceNone, fmt.Errorf("invalid significance: %q", value)
	}
	return sig, nil
}

// InitialVersionDescription is the description of version 1
const InitialVersionDescription = "Initial Version"

// VersionRecord describes one version of an object
type VersionRecord struct {
	ExternalID   string
	Version      int
	Description  string
	Significance Significance
	OpenedBy     string
	ClosedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewVersionRecord creates an open record for the given version
func NewVersionRecord(externalID string, version int, description, openedBy string) (*VersionRecord, error) {
	if externalID == "" {
		return nil, errors.New("external identifier cannot be empty")
	}
	if version < 1 {
		return nil, fmt.Errorf("version must be >= 1, got %d", version)
	}
	now := time.Now().UTC()
	return &VersionRecord{
		ExternalID:  externalID,
		Version:     version,
		Description: NormalizeDescription(description),
		OpenedBy:    strings.TrimSpace(openedBy),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsClosed reports whether the version has been closed
func (r *VersionRecord) IsClosed() bool {
	return r.ClosedAt != nil
}

// Amend updates description and significance while the version is still open.
// Empty values keep whatever was set when the version was opened.
func (r *VersionRecord) Amend(description string, significance Significance) error {
	if r.IsClosed() {
		return fmt.Errorf("%w: %s v%d", ErrVersionRecordClosed, r.ExternalID, r.Version)
	}
	if !significance.IsValid() {
		return fmt.Errorf("invalid significance: %q", significance)
	}
	if d := NormalizeDescription(description); d != "" {
		r.Description = d
	}
	if significance != SignificanceNone {
		r.Significance = significance
	}
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkClosed stamps the close time
func (r *VersionRecord) MarkClosed(at time.Time) {
	closed := at.UTC()
	r.ClosedAt = &closed
	r.UpdatedAt = closed
}

// NormalizeDescription trims and NFC-normalises a free-text description
func NormalizeDescription(description string) string {
	return norm.NFC.String(strings.TrimSpace(description))
}
