package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// Terminal milestone that marks a version as accessioned
const (
	AccessionedWorkflow = workflow.AccessionWF
	AccessionedStep     = "end-accession"
)

// ignorableSteps lists per workflow the terminal bookkeeping steps that do
// not count as outstanding work.
var ignorableSteps = map[string][]string{
	workflow.AccessionWF:           {"end-accession"},
	workflow.AssemblyWF:            {"accessioning-initiate"},
	workflow.WASCrawlPreassemblyWF: {"end-was-crawl-preassembly"},
	workflow.WASSeedPreassemblyWF:  {"end-was-seed-preassembly"},
	workflow.GISDeliveryWF:         {"start-gis-assembly-workflow"},
	workflow.GISAssemblyWF:         {"start-accession-workflow"},
	workflow.OCRWF:                 {"end-ocr"},
	workflow.SpeechToTextWF:        {"end-stt"},
}

// preassemblyWorkflows is scanned in order by Assembling
var preassemblyWorkflows = []string{
	workflow.AssemblyWF,
	workflow.WASCrawlPreassemblyWF,
	workflow.WASSeedPreassemblyWF,
	workflow.GISDeliveryWF,
	workflow.GISAssemblyWF,
	workflow.OCRWF,
	workflow.SpeechToTextWF,
}

// IgnorableSteps returns the ignorable terminal steps for a workflow
func IgnorableSteps(name string) []string {
	steps := ignorableSteps[name]
	cp := make([]string, len(steps))
	copy(cp, steps)
	return cp
}

// PreassemblyWorkflows returns the pre-processing workflow catalog
func PreassemblyWorkflows() []string {
	cp := make([]string, len(preassemblyWorkflows))
	copy(cp, preassemblyWorkflows)
	return cp
}

// DerivedState holds the four workflow-derived predicates for an object
type DerivedState struct {
	Accessioned           bool
	Accessioning          bool
	Assembling            bool
	ActiveVersionWorkflow bool
}

// WorkflowStateService answers what an object is doing right now by
// inspecting its workflow instances. It never retries store calls; a missing
// workflow instance means that stage is inactive.
type WorkflowStateService struct {
	engine repository.WorkflowEngine
}

// NewWorkflowStateService creates a new workflow state service
func NewWorkflowStateService(engine repository.WorkflowEngine) *WorkflowStateService {
	return &WorkflowStateService{engine: engine}
}

// Accessioned reports whether the accession milestone has ever completed
func (s *WorkflowStateService) Accessioned(ctx context.Context, externalID string) (bool, error) {
	done, err := s.engine.HasCompletedStep(ctx, externalID, AccessionedWorkflow, AccessionedStep)
	if errors.Is(err, repository.ErrWorkflowNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return done, nil
}

// Accessioning reports whether the active accessionWF instance has outstanding work
func (s *WorkflowStateService) Accessioning(ctx context.Context, externalID string) (bool, error) {
	return s.hasOutstandingWork(ctx, externalID, workflow.AccessionWF)
}

// Assembling reports whether any pre-processing workflow has outstanding work.
// The scan stops at the first workflow that does.
func (s *WorkflowStateService) Assembling(ctx context.Context, externalID string) (bool, error) {
	for _, name := range preassemblyWorkflows {
		busy, err := s.hasOutstandingWork(ctx, externalID, name)
		if err != nil {
			return false, err
		}
		if busy {
			return true, nil
		}
	}
	return false, nil
}

// ActiveVersionWorkflow reports whether a versioningWF instance is active
func (s *WorkflowStateService) ActiveVersionWorkflow(ctx context.Context, externalID string) (bool, error) {
	inst, err := s.ActiveVersioningInstance(ctx, externalID)
	if err != nil {
		return false, err
	}
	return inst != nil, nil
}

// ActiveVersioningInstance returns the active versioningWF instance, or nil when there is none
func (s *WorkflowStateService) ActiveVersioningInstance(ctx context.Context, externalID string) (*workflow.Instance, error) {
	inst, err := s.activeInstance(ctx, externalID, workflow.VersioningWF)
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// Derive evaluates all four predicates
func (s *WorkflowStateService) Derive(ctx context.Context, externalID string) (*DerivedState, error) {
	var (
		state DerivedState
		err   error
	)
	if state.Accessioned, err = s.Accessioned(ctx, externalID); err != nil {
		return nil, fmt.Errorf("accessioned: %w", err)
	}
	if state.Accessioning, err = s.Accessioning(ctx, externalID); err != nil {
		return nil, fmt.Errorf("accessioning: %w", err)
	}
	if state.Assembling, err = s.Assembling(ctx, externalID); err != nil {
		return nil, fmt.Errorf("assembling: %w", err)
	}
	if state.ActiveVersionWorkflow, err = s.ActiveVersionWorkflow(ctx, externalID); err != nil {
		return nil, fmt.Errorf("active version workflow: %w", err)
	}
	return &state, nil
}

func (s *WorkflowStateService) hasOutstandingWork(ctx context.Context, externalID, name string) (bool, error) {
	inst, err := s.activeInstance(ctx, externalID, name)
	if err != nil || inst == nil {
		return false, err
	}
	return len(inst.IncompleteSteps(ignorableSteps[name]...)) > 0, nil
}

// activeInstance fetches the named instance, returning nil if it is missing or inactive
func (s *WorkflowStateService) activeInstance(ctx context.Context, externalID, name string) (*workflow.Instance, error) {
	inst, err := s.engine.FetchInstance(ctx, externalID, name)
	if errors.Is(err, repository.ErrWorkflowNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !inst.IsActive() {
		return nil, nil
	}
	return inst, nil
}
