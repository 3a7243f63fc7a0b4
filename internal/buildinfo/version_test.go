package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion_Stamped(t *testing.T) {
	orig := Version
	t.Cleanup(func() { Version = orig })

	Version = "v1.2.0"
	assert.Equal(t, "v1.2.0", GetVersion())

	Version = ""
	assert.NotEmpty(t, GetVersion())
}

func TestGetCommit_Stamped(t *testing.T) {
	orig := Commit
	t.Cleanup(func() { Commit = orig })

	Commit = "abc123"
	assert.Equal(t, "abc123", GetCommit())
}
