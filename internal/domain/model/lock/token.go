package lock

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Common lock errors
var (
	ErrStaleLock    = errors.New("stale lock")
	ErrInvalidToken = errors.New("invalid lock token")
)

// Token is a value object fingerprinting the stored state of an object.
// It is derived from the external identifier, the current version number and
// the change counter, so any write that lands in between invalidates it.
type Token struct {
	value string
}

// NewToken derives the token for the given object state
func NewToken(externalID string, version, lockVersion int) Token {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s=%d=%d", externalID, version, lockVersion)))
	return Token{value: hex.EncodeToString(sum[:16])}
}

// ParseToken wraps a token previously handed out to a caller
func ParseToken(value string) (Token, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Token{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	if len(value) != 32 {
		return Token{}, fmt.Errorf("%w: unexpected length %d", ErrInvalidToken, len(value))
	}
	if _, err := hex.DecodeString(value); err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return Token{value: strings.ToLower(value)}, nil
}

// String returns the opaque token value
func (t Token) String() string {
	return t.value
}

// IsZero reports whether the token was never set
func (t Token) IsZero() bool {
	return t.value == ""
}

// Equals checks if two tokens are equal
func (t Token) Equals(other Token) bool {
	return t.value == other.value
}

// StaleLockError is returned when a writer presents a token that no longer
// matches the stored state. Callers may reload and retry.
type StaleLockError struct {
	ObjectID string
	Expected Token // computed from the stored state
	Supplied Token // presented by the caller
}

func (e *StaleLockError) Error() string {
	return fmt.Sprintf("stale lock for %s: expected %s, supplied %s", e.ObjectID, e.Expected, e.Supplied)
}

// Is lets errors.Is(err, ErrStaleLock) match
func (e *StaleLockError) Is(target error) bool {
	return target == ErrStaleLock
}

// Retryable marks the error as safe to retry after reloading state
func (e *StaleLockError) Retryable() bool {
	return true
}
