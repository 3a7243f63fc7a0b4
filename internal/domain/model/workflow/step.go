package workflow

import (
	"fmt"
	"strings"
	"time"
)

// StepStatus is the processing status of a single workflow step
type StepStatus string

const (
	StepWaiting   StepStatus = "waiting"
	StepStarted   StepStatus = "started"
	StepCompleted StepStatus = "completed"
	StepError     StepStatus = "error"
	StepSkipped   StepStatus = "skipped"
)

// String returns the string representation
func (s StepStatus) String() string {
	return string(s)
}

// IsValid validates the status
func (s StepStatus) IsValid() bool {
	switch s {
	case StepWaiting, StepStarted, StepCompleted, StepError, StepSkipped:
		return true
	default:
		return false
	}
}

// IsDone reports whether the step no longer represents pending work.
// Errored steps still count as incomplete.
func (s StepStatus) IsDone() bool {
	return s == StepCompleted || s == StepSkipped
}

// ParseStepStatus converts a string into a known StepStatus
func ParseStepStatus(value string) (StepStatus, error) {
	status := StepStatus(strings.ToLower(strings.TrimSpace(value)))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid step status: %q", value)
	}
	return status, nil
}

// Step is one named unit of work inside a workflow instance
type Step struct {
	Name          string
	Status        StepStatus
	ActiveVersion bool // belongs to the active instance for its workflow
	Message       string
	UpdatedAt     time.Time
}
