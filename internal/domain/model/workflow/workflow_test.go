package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInstance_FromTemplate(t *testing.T) {
	inst, err := NewInstance("wf-1", "druid:bc123df4567", VersioningWF, 2, nil)
	require.NoError(t, err)

	assert.True(t, inst.IsActive())
	assert.Equal(t, []string{"start-version", "submit-version", "start-accession"}, inst.IncompleteSteps())
	for _, step := range inst.Steps {
		assert.Equal(t, StepWaiting, step.Status)
	}
}

func TestNewInstance_Invalid(t *testing.T) {
	_, err := NewInstance("wf-1", "druid:bc123df4567", "bogusWF", 1, nil)
	assert.True(t, errors.Is(err, ErrUnknownWorkflow))

	_, err = NewInstance("wf-1", "", AccessionWF, 1, nil)
	assert.Error(t, err)

	_, err = NewInstance("wf-1", "druid:bc123df4567", AccessionWF, 0, nil)
	assert.Error(t, err)
}

func TestInstance_IncompleteSteps(t *testing.T) {
	inst, err := NewInstance("wf-1", "druid:bc123df4567", OCRWF, 1, nil)
	require.NoError(t, err)

	require.NoError(t, inst.SetStepStatus("start-ocr", StepCompleted, ""))
	require.NoError(t, inst.SetStepStatus("fetch-files", StepSkipped, ""))
	require.NoError(t, inst.SetStepStatus("ocr-create", StepError, "tesseract crashed"))

	assert.Equal(t, []string{"ocr-create", "end-ocr"}, inst.IncompleteSteps())
	assert.Equal(t, []string{"ocr-create"}, inst.IncompleteSteps("end-ocr"))

	require.NoError(t, inst.SetStepStatus("ocr-create", StepCompleted, ""))
	assert.Empty(t, inst.IncompleteSteps("end-ocr"))
}

func TestInstance_SetStepStatus_Errors(t *testing.T) {
	inst, err := NewInstance("wf-1", "druid:bc123df4567", OCRWF, 1, nil)
	require.NoError(t, err)

	err = inst.SetStepStatus("nope", StepCompleted, "")
	assert.True(t, errors.Is(err, ErrUnknownStep))

	err = inst.SetStepStatus("start-ocr", StepStatus("paused"), "")
	assert.Error(t, err)
}

func TestInstance_CompleteAndDeactivate(t *testing.T) {
	inst, err := NewInstance("wf-1", "druid:bc123df4567", VersioningWF, 3, map[string]string{"k": "v"})
	require.NoError(t, err)

	clone := inst.Clone()
	inst.CompleteAll()
	inst.Deactivate()

	assert.False(t, inst.IsActive())
	assert.Empty(t, inst.IncompleteSteps())

	// the clone keeps its own state
	assert.True(t, clone.IsActive())
	assert.Len(t, clone.IncompleteSteps(), 3)
	clone.Context["k"] = "changed"
	assert.Equal(t, "v", inst.Context["k"])
}

func TestParseStepStatus(t *testing.T) {
	status, err := ParseStepStatus(" Completed ")
	require.NoError(t, err)
	assert.Equal(t, StepCompleted, status)
	assert.True(t, status.IsDone())
	assert.False(t, StepError.IsDone())

	_, err = ParseStepStatus("paused")
	assert.Error(t, err)
}

func TestStepTemplate_ReturnsCopy(t *testing.T) {
	steps, err := StepTemplate(AccessionWF)
	require.NoError(t, err)
	assert.Equal(t, "end-accession", steps[len(steps)-1])

	steps[0] = "mutated"
	again, err := StepTemplate(AccessionWF)
	require.NoError(t, err)
	assert.Equal(t, "start-accession", again[0])
	assert.True(t, IsKnown(SpeechToTextWF))
	assert.False(t, IsKnown("bogusWF"))
}
