package repository

import (
	"context"
	"errors"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
)

// Workflow engine errors
var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrWorkflowExists   = errors.New("workflow already exists for version")
)

// WorkflowEngine is the facade over the workflow step store
type WorkflowEngine interface {
	// CreateInstance starts an active instance and deactivates any prior
	// instance of the same workflow for the object.
	CreateInstance(ctx context.Context, externalID, name string, version int, context map[string]string) (*workflow.Instance, error)

	// CloseInstance completes and deactivates the instance at version. With
	// startNext an active accessionWF instance is created in the same call.
	CloseInstance(ctx context.Context, externalID, name string, version int, startNext bool) error

	// FetchInstance returns the most recent instance of the workflow
	FetchInstance(ctx context.Context, externalID, name string) (*workflow.Instance, error)

	// HasCompletedStep reports whether the step is completed in any version
	HasCompletedStep(ctx context.Context, externalID, name, step string) (bool, error)
}

// WorkflowStepUpdater mutates individual steps on behalf of processing pipelines
type WorkflowStepUpdater interface {
	SetStepStatus(ctx context.Context, externalID, name string, version int, step string, status workflow.StepStatus, message string) error
}
