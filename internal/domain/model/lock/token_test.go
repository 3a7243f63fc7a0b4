package lock

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken_Deterministic(t *testing.T) {
	a := NewToken("druid:bc123df4567", 2, 7)
	b := NewToken("druid:bc123df4567", 2, 7)

	assert.True(t, a.Equals(b))
	assert.False(t, a.IsZero())
	assert.Len(t, a.String(), 32)
}

func TestNewToken_ChangesWithState(t *testing.T) {
	base := NewToken("druid:bc123df4567", 2, 7)

	tests := []struct {
		name  string
		token Token
	}{
		{"Different object", NewToken("druid:zz999zz9999", 2, 7)},
		{"Different version", NewToken("druid:bc123df4567", 3, 7)},
		{"Different change counter", NewToken("druid:bc123df4567", 2, 8)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, base.Equals(tt.token))
		})
	}
}

func TestParseToken(t *testing.T) {
	valid := NewToken("druid:bc123df4567", 1, 0)

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"Round trip", valid.String(), false},
		{"Upper case", "ABCDEF0123456789ABCDEF0123456789", false},
		{"Empty", "", true},
		{"Too short", "abc", true},
		{"Not hex", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ParseToken(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidToken))
				return
			}
			require.NoError(t, err)
			assert.False(t, token.IsZero())
		})
	}

	parsed, err := ParseToken(valid.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(valid))
}

func TestStaleLockError(t *testing.T) {
	err := error(&StaleLockError{
		ObjectID: "druid:bc123df4567",
		Expected: NewToken("druid:bc123df4567", 2, 1),
		Supplied: NewToken("druid:bc123df4567", 1, 0),
	})

	assert.True(t, errors.Is(err, ErrStaleLock))
	assert.Contains(t, err.Error(), "druid:bc123df4567")

	var stale *StaleLockError
	require.True(t, errors.As(err, &stale))
	assert.True(t, stale.Retryable())
}
