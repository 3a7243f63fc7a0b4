package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/lock"
	versionmodel "github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/version"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
)

const druid = "druid:bc123df4567"

func execute(t *testing.T, home string, args ...string) (string, error) {
	t.Helper()
	root := newRoot(afero.NewOsFs())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--home", home}, args...))
	err := root.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, home string, args ...string) string {
	t.Helper()
	out, err := execute(t, home, args...)
	require.NoError(t, err, out)
	return out
}

func accessionedObject(t *testing.T, home string) {
	t.Helper()
	mustExecute(t, home, "register", druid, "--label", "Palo Alto map", "--user", "registrar", "--start-accession")
	steps, err := workflow.StepTemplate(workflow.AccessionWF)
	require.NoError(t, err)
	for _, step := range steps {
		mustExecute(t, home, "step", druid, workflow.AccessionWF, "1", step, "completed")
	}
	mustExecute(t, home, "preservation", "set", druid, "1")
}

func status(t *testing.T, home string) StatusOutput {
	t.Helper()
	var out StatusOutput
	require.NoError(t, json.Unmarshal([]byte(mustExecute(t, home, "status", druid, "--json")), &out))
	return out
}

func TestCLI_OpenCloseCycle(t *testing.T) {
	home := t.TempDir()
	accessionedObject(t, home)

	st := status(t, home)
	assert.Equal(t, 1, st.Version)
	assert.Equal(t, string(versionmodel.StateClosed), st.State)
	assert.True(t, st.Openable)

	out := mustExecute(t, home, "open", druid, "-m", "fix title", "--user", "jdoe", "--lock", st.LockToken)
	assert.Contains(t, out, "Opened "+druid+" version 2")

	st = status(t, home)
	assert.Equal(t, string(versionmodel.StateOpen), st.State)
	assert.True(t, st.Closeable)

	out = mustExecute(t, home, "close", druid, "2", "--significance", "minor", "--user", "jdoe", "--start-accession")
	assert.Contains(t, out, "Closed "+druid+" version 2")

	st = status(t, home)
	assert.Equal(t, string(versionmodel.StateAccessioning), st.State)
	assert.Equal(t, "minor", st.Significance)

	history := mustExecute(t, home, "history", druid)
	assert.Contains(t, history, "Initial Version")
	assert.Contains(t, history, "fix title")

	events := mustExecute(t, home, "events", druid)
	assert.Contains(t, events, "registration")
	assert.Contains(t, events, "version_open")
	assert.Contains(t, events, "version_close")
}

func TestCLI_StaleLock(t *testing.T) {
	home := t.TempDir()
	accessionedObject(t, home)
	st := status(t, home)

	mustExecute(t, home, "open", druid, "-m", "first", "--user", "jdoe")
	mustExecute(t, home, "close", druid, "2", "--user", "jdoe")

	_, err := execute(t, home, "open", druid, "-m", "second", "--user", "jdoe", "--lock", st.LockToken)
	assert.ErrorIs(t, err, lock.ErrStaleLock)
	assert.Contains(t, err.Error(), "retry")
}

func TestCLI_PreconditionFailures(t *testing.T) {
	home := t.TempDir()
	mustExecute(t, home, "register", druid)

	_, err := execute(t, home, "open", druid, "-m", "too early")
	assert.ErrorIs(t, err, versionmodel.ErrNotAccessioned)

	_, err = execute(t, home, "close", druid, "1")
	assert.ErrorIs(t, err, versionmodel.ErrNotOpen)

	out := mustExecute(t, home, "open", druid, "-m", "migration", "--assume-accessioned")
	assert.Contains(t, out, "version 2")
}

func TestCLI_InvalidArguments(t *testing.T) {
	home := t.TempDir()

	tests := [][]string{
		{"close", druid, "two"},
		{"close", druid, "2", "--significance", "huge"},
		{"step", druid, "unknownWF", "1", "start", "completed"},
		{"step", druid, workflow.AccessionWF, "1", "start-accession", "done"},
		{"preservation", "set", druid, "0"},
		{"open", druid, "--lock", "not-a-token"},
		{"status", druid},
	}
	for _, args := range tests {
		_, err := execute(t, home, args...)
		assert.Error(t, err, "%v", args)
	}
}

func TestCLI_Init(t *testing.T) {
	home := t.TempDir()

	out := mustExecute(t, home, "init")
	assert.Contains(t, out, "setting.yaml")

	_, err := execute(t, home, "init")
	assert.Error(t, err)

	mustExecute(t, home, "init", "--force")
	mustExecute(t, home, "register", druid)
}
