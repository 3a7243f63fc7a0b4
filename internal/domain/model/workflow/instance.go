package workflow

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownStep is returned when a step name is not part of an instance
var ErrUnknownStep = errors.New("unknown workflow step")

// Instance is one run of a named workflow for an object at a given version
type Instance struct {
	ID        string
	ObjectID  string
	Name      string
	Version   int
	Context   map[string]string
	Steps     []Step
	CreatedAt time.Time
}

// NewInstance builds an active instance from the step template of the named workflow
func NewInstance(id, objectID, name string, version int, context map[string]string) (*Instance, error) {
	if objectID == "" {
		return nil, errors.New("object identifier cannot be empty")
	}
	if version < 1 {
		return nil, fmt.Errorf("version must be >= 1, got %d", version)
	}
	names, err := StepTemplate(name)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	steps := make([]Step, len(names))
	for i, stepName := range names {
		steps[i] = Step{Name: stepName, Status: StepWaiting, ActiveVersion: true, UpdatedAt: now}
	}
	return &Instance{
		ID:        id,
		ObjectID:  objectID,
		Name:      name,
		Version:   version,
		Context:   context,
		Steps:     steps,
		CreatedAt: now,
	}, nil
}

// IsActive reports whether the instance is the active one for its workflow name
func (i *Instance) IsActive() bool {
	for _, step := range i.Steps {
		if step.ActiveVersion {
			return true
		}
	}
	return false
}

// IncompleteSteps returns the names of steps that still represent pending
// work, in template order, leaving out any name listed in except.
func (i *Instance) IncompleteSteps(except ...string) []string {
	skip := make(map[string]struct{}, len(except))
	for _, name := range except {
		skip[name] = struct{}{}
	}
	var incomplete []string
	for _, step := range i.Steps {
		if step.Status.IsDone() {
			continue
		}
		if _, ok := skip[step.Name]; ok {
			continue
		}
		incomplete = append(incomplete, step.Name)
	}
	return incomplete
}

// Step returns the named step
func (i *Instance) Step(name string) (Step, bool) {
	for _, step := range i.Steps {
		if step.Name == name {
			return step, true
		}
	}
	return Step{}, false
}

// SetStepStatus mutates a single step
func (i *Instance) SetStepStatus(name string, status StepStatus, message string) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid step status: %q", status)
	}
	for idx := range i.Steps {
		if i.Steps[idx].Name == name {
			i.Steps[idx].Status = status
			i.Steps[idx].Message = message
			i.Steps[idx].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("%w: %s has no step %q", ErrUnknownStep, i.Name, name)
}

// CompleteAll marks every unfinished step completed
func (i *Instance) CompleteAll() {
	now := time.Now().UTC()
	for idx := range i.Steps {
		if !i.Steps[idx].Status.IsDone() {
			i.Steps[idx].Status = StepCompleted
			i.Steps[idx].UpdatedAt = now
		}
	}
}

// Deactivate clears the active-version flag on every step; history is kept
func (i *Instance) Deactivate() {
	for idx := range i.Steps {
		i.Steps[idx].ActiveVersion = false
	}
}

// Clone returns a deep copy so callers cannot mutate stored state
func (i *Instance) Clone() *Instance {
	cp := *i
	cp.Steps = make([]Step, len(i.Steps))
	copy(cp.Steps, i.Steps)
	if i.Context != nil {
		cp.Context = make(map[string]string, len(i.Context))
		for k, v := range i.Context {
			cp.Context[k] = v
		}
	}
	return &cp
}
