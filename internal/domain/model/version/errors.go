package version

import (
	"errors"
	"fmt"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
)

// Kind classifies a versioning precondition failure
type Kind string

const (
	KindNotAccessioned       Kind = "not_accessioned"
	KindAlreadyOpen          Kind = "already_open"
	KindAccessioning         Kind = "accessioning"
	KindAssembling           Kind = "assembling"
	KindPreservationAhead    Kind = "preservation_ahead"
	KindNotOpen              Kind = "not_open"
	KindPreservationNotReady Kind = "preservation_not_ready"
)

// Sentinels matched by errors.Is against *Error
var (
	ErrNotAccessioned       = errors.New("object has not been accessioned")
	ErrAlreadyOpen          = errors.New("object already has an open version")
	ErrAccessioning         = errors.New("object is being accessioned")
	ErrAssembling           = errors.New("object is being assembled")
	ErrPreservationAhead    = errors.New("preservation is ahead of the local version")
	ErrNotOpen              = errors.New("object has no open version")
	ErrPreservationNotReady = errors.New("preservation registry is not ready")

	// ErrInconsistentVersions means stored version records do not line up with the object head
	ErrInconsistentVersions = errors.New("version records are inconsistent with the object")
)

var kindSentinels = map[Kind]error{
	KindNotAccessioned:       ErrNotAccessioned,
	KindAlreadyOpen:          ErrAlreadyOpen,
	KindAccessioning:         ErrAccessioning,
	KindAssembling:           ErrAssembling,
	KindPreservationAhead:    ErrPreservationAhead,
	KindNotOpen:              ErrNotOpen,
	KindPreservationNotReady: ErrPreservationNotReady,
}

// Error is a failed lifecycle precondition. No state was changed.
type Error struct {
	Kind           Kind
	ObjectID       string
	Reason         string
	CurrentVersion int
	OtherVersion   int // preservation version or the version the caller asked for
	Err            error
}

// NewError builds a precondition error of the given kind
func NewError(kind Kind, objectID string, currentVersion int, reason string) *Error {
	return &Error{Kind: kind, ObjectID: objectID, CurrentVersion: currentVersion, Reason: reason}
}

// WithOther records the second version number involved in the failure
func (e *Error) WithOther(v int) *Error {
	e.OtherVersion = v
	return e
}

// WithCause attaches the underlying error
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("cannot change version of %s (current version %d): %s", e.ObjectID, e.CurrentVersion, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is matches the sentinel for the error kind
func (e *Error) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && sentinel == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PartialFailureError reports a lifecycle transition that failed after the
// object snapshot was persisted. It requires manual reconciliation.
type PartialFailureError struct {
	ObjectID string
	Version  int
	Step     string
	Err      error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("partial failure for %s at version %d during %s: %v", e.ObjectID, e.Version, e.Step, e.Err)
}

func (e *PartialFailureError) Unwrap() error {
	return e.Err
}

// IsPrecondition reports whether err is a versioning precondition failure
func IsPrecondition(err error) bool {
	var verr *Error
	return errors.As(err, &verr)
}

// IsRetryable reports whether the caller may reload state and try again.
// Only stale lock failures qualify.
func IsRetryable(err error) bool {
	var stale *lock.StaleLockError
	return errors.As(err, &stale)
}

// KindOf returns the precondition kind carried by err, if any
func KindOf(err error) (Kind, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr.Kind, true
	}
	return "", false
}
