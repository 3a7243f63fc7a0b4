package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sul-dlss/dor-services-app-sub001/internal/application/port/output"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/model/workflow"
	"github.com/sul-dlss/dor-services-app-sub001/internal/domain/repository"
)

// WorkflowEngineImpl stores workflow instances and their steps in SQLite.
// It implements repository.WorkflowEngine and repository.WorkflowStepUpdater.
type WorkflowEngineImpl struct {
	db *sql.DB
	tm output.TransactionManager
}

// NewWorkflowEngine creates a new SQLite-based workflow engine
func NewWorkflowEngine(db *sql.DB, tm output.TransactionManager) *WorkflowEngineImpl {
	return &WorkflowEngineImpl{db: db, tm: tm}
}

// CreateInstance creates an active instance, deactivating earlier instances of the same workflow
func (e *WorkflowEngineImpl) CreateInstance(ctx context.Context, externalID, name string, version int, wfContext map[string]string) (*workflow.Instance, error) {
	inst, err := workflow.NewInstance(uuid.NewString(), externalID, name, version, wfContext)
	if err != nil {
		return nil, err
	}

	err = e.tm.InTransaction(ctx, func(txCtx context.Context) error {
		if err := e.deactivate(txCtx, externalID, name); err != nil {
			return err
		}
		return e.insert(txCtx, inst)
	})
	if err != nil {
		return nil, err
	}
	return inst, nil
}

// CloseInstance completes and deactivates the instance at version,
// optionally starting accessionWF at the same version.
func (e *WorkflowEngineImpl) CloseInstance(ctx context.Context, externalID, name string, version int, startNext bool) error {
	return e.tm.InTransaction(ctx, func(txCtx context.Context) error {
		db := executor(txCtx, e.db)

		var instanceID string
		err := db.QueryRowContext(txCtx,
			"SELECT id FROM workflow_instances WHERE external_id = ? AND name = ? AND version = ?",
			externalID, name, version,
		).Scan(&instanceID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s %s v%d", repository.ErrWorkflowNotFound, externalID, name, version)
		}
		if err != nil {
			return fmt.Errorf("query workflow instance failed: %w", err)
		}

		query := `
			UPDATE workflow_steps
			SET status = CASE WHEN status IN ('completed', 'skipped') THEN status ELSE 'completed' END,
			    active_version = 0,
			    updated_at = ?
			WHERE instance_id = ?
		`
		if _, err := db.ExecContext(txCtx, query, time.Now().UTC(), instanceID); err != nil {
			return fmt.Errorf("close workflow instance failed: %w", err)
		}

		if !startNext {
			return nil
		}
		next, err := workflow.NewInstance(uuid.NewString(), externalID, workflow.AccessionWF, version, nil)
		if err != nil {
			return err
		}
		if err := e.deactivate(txCtx, externalID, workflow.AccessionWF); err != nil {
			return err
		}
		return e.insert(txCtx, next)
	})
}

// FetchInstance returns the highest-version instance of the workflow
func (e *WorkflowEngineImpl) FetchInstance(ctx context.Context, externalID, name string) (*workflow.Instance, error) {
	db := executor(ctx, e.db)

	var (
		inst        workflow.Instance
		contextJSON string
	)
	err := db.QueryRowContext(ctx, `
		SELECT id, external_id, name, version, context_json, created_at
		FROM workflow_instances
		WHERE external_id = ? AND name = ?
		ORDER BY version DESC
		LIMIT 1
	`, externalID, name).Scan(&inst.ID, &inst.ObjectID, &inst.Name, &inst.Version, &contextJSON, &inst.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %s", repository.ErrWorkflowNotFound, externalID, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query workflow instance failed: %w", err)
	}
	if contextJSON != "" && contextJSON != "{}" {
		if err := json.Unmarshal([]byte(contextJSON), &inst.Context); err != nil {
			return nil, fmt.Errorf("unmarshal workflow context failed: %w", err)
		}
	}

	rows, err := db.QueryContext(ctx, `
		SELECT name, status, active_version, message, updated_at
		FROM workflow_steps
		WHERE instance_id = ?
		ORDER BY position ASC
	`, inst.ID)
	if err != nil {
		return nil, fmt.Errorf("query workflow steps failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			step   workflow.Step
			status string
		)
		if err := rows.Scan(&step.Name, &status, &step.ActiveVersion, &step.Message, &step.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow step failed: %w", err)
		}
		step.Status = workflow.StepStatus(status)
		inst.Steps = append(inst.Steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow steps failed: %w", err)
	}
	return &inst, nil
}

// HasCompletedStep reports whether step completed in any version of the workflow
func (e *WorkflowEngineImpl) HasCompletedStep(ctx context.Context, externalID, name, step string) (bool, error) {
	var count int
	err := executor(ctx, e.db).QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM workflow_steps s
		JOIN workflow_instances i ON i.id = s.instance_id
		WHERE i.external_id = ? AND i.name = ? AND s.name = ? AND s.status = 'completed'
	`, externalID, name, step).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query completed step failed: %w", err)
	}
	return count > 0, nil
}

// SetStepStatus updates one step of the instance at version
func (e *WorkflowEngineImpl) SetStepStatus(ctx context.Context, externalID, name string, version int, step string, status workflow.StepStatus, message string) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid step status: %q", status)
	}

	return e.tm.InTransaction(ctx, func(txCtx context.Context) error {
		db := executor(txCtx, e.db)

		var instanceID string
		err := db.QueryRowContext(txCtx,
			"SELECT id FROM workflow_instances WHERE external_id = ? AND name = ? AND version = ?",
			externalID, name, version,
		).Scan(&instanceID)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s %s v%d", repository.ErrWorkflowNotFound, externalID, name, version)
		}
		if err != nil {
			return fmt.Errorf("query workflow instance failed: %w", err)
		}

		result, err := db.ExecContext(txCtx,
			"UPDATE workflow_steps SET status = ?, message = ?, updated_at = ? WHERE instance_id = ? AND name = ?",
			string(status), message, time.Now().UTC(), instanceID, step,
		)
		if err != nil {
			return fmt.Errorf("update workflow step failed: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected failed: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: %s has no step %q", workflow.ErrUnknownStep, name, step)
		}
		return nil
	})
}

func (e *WorkflowEngineImpl) deactivate(ctx context.Context, externalID, name string) error {
	query := `
		UPDATE workflow_steps
		SET active_version = 0
		WHERE active_version = 1
		  AND instance_id IN (SELECT id FROM workflow_instances WHERE external_id = ? AND name = ?)
	`
	if _, err := executor(ctx, e.db).ExecContext(ctx, query, externalID, name); err != nil {
		return fmt.Errorf("deactivate workflow failed: %w", err)
	}
	return nil
}

func (e *WorkflowEngineImpl) insert(ctx context.Context, inst *workflow.Instance) error {
	db := executor(ctx, e.db)

	contextJSON := "{}"
	if len(inst.Context) > 0 {
		raw, err := json.Marshal(inst.Context)
		if err != nil {
			return fmt.Errorf("marshal workflow context failed: %w", err)
		}
		contextJSON = string(raw)
	}

	_, err := db.ExecContext(ctx,
		"INSERT INTO workflow_instances (id, external_id, name, version, context_json, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		inst.ID, inst.ObjectID, inst.Name, inst.Version, contextJSON, inst.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s %s v%d", repository.ErrWorkflowExists, inst.ObjectID, inst.Name, inst.Version)
	}
	if err != nil {
		return fmt.Errorf("insert workflow instance failed: %w", err)
	}

	for position, step := range inst.Steps {
		_, err := db.ExecContext(ctx,
			"INSERT INTO workflow_steps (instance_id, position, name, status, active_version, message, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			inst.ID, position, step.Name, string(step.Status), step.ActiveVersion, step.Message, step.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert workflow step failed: %w", err)
		}
	}
	return nil
}
