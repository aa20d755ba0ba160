package app

import (
	"context"

	"go.uber.org/zap"

	"qcloud/internal/domain"
	"qcloud/internal/infra/taskstore"
	"qcloud/internal/infra/telemetry"
)

// Report is the outcome of a stored task or batch. Exactly one of Task and
// Batch is set.
type Report struct {
	ID    string
	Task  *domain.TaskReport
	Batch *domain.BatchReport
}

func (r Report) Status() domain.TaskStatus {
	if r.Batch != nil {
		return r.Batch.Status
	}
	if r.Task != nil {
		return r.Task.Status
	}
	return 0
}

func (r Report) Err() error {
	if r.Batch != nil {
		return r.Batch.Err
	}
	if r.Task != nil {
		return r.Task.Err
	}
	return nil
}

// Submit commits task without waiting and remembers the handle in the task
// store. Several programs, or batch set, go through the batch endpoints. A
// submission the service rejected is reported with an empty id and is not
// stored.
func (a *App) Submit(ctx context.Context, task domain.Task, progs []domain.Program, batch bool) (Report, error) {
	store, err := a.Store()
	if err != nil {
		return Report{}, err
	}
	if batch || len(progs) > 1 {
		return a.submitBatch(ctx, store, task, progs)
	}
	if len(progs) == 0 {
		return Report{}, domain.Configf("app.Submit", "at least one program is required")
	}

	handle, report, err := a.client.Commit(ctx, task, progs[0])
	if err != nil {
		return Report{}, err
	}
	if report.Status == domain.TaskStatusFailed {
		return Report{Task: &report}, nil
	}
	if err := store.PutTask(handle); err != nil {
		return Report{}, err
	}
	a.logger.Info("task stored",
		telemetry.EventField(telemetry.EventSubmit),
		telemetry.TaskIDField(handle.TaskID),
		telemetry.BackendField(handle.Backend),
	)
	return Report{ID: handle.TaskID, Task: &report}, nil
}

func (a *App) submitBatch(ctx context.Context, store *taskstore.Store, task domain.Task, progs []domain.Program) (Report, error) {
	handle, report, err := a.client.CommitBatch(ctx, task, progs)
	if err != nil {
		return Report{}, err
	}
	if report.Status == domain.TaskStatusFailed {
		return Report{Batch: &report}, nil
	}
	id, err := store.PutBatch(handle)
	if err != nil {
		return Report{}, err
	}
	a.logger.Info("batch stored",
		telemetry.EventField(telemetry.EventBatchSubmit),
		telemetry.TaskIDField(id),
		telemetry.BackendField(handle.Backend),
		zap.Int("steps", len(handle.Steps)),
	)
	return Report{ID: id, Batch: &report}, nil
}

// Query performs one inquiry for a stored id and records the observed
// status.
func (a *App) Query(ctx context.Context, id string) (Report, error) {
	return a.inspect(ctx, id, false)
}

// Wait polls a stored id to a terminal state and records it.
func (a *App) Wait(ctx context.Context, id string) (Report, error) {
	return a.inspect(ctx, id, true)
}

func (a *App) inspect(ctx context.Context, id string, wait bool) (Report, error) {
	store, err := a.Store()
	if err != nil {
		return Report{}, err
	}
	entry, err := store.Get(id)
	if err != nil {
		return Report{}, err
	}

	report := Report{ID: entry.ID}
	switch {
	case entry.IsBatch() && wait:
		r := a.client.ExecBatch(ctx, *entry.Batch)
		report.Batch = &r
	case entry.IsBatch():
		r := a.client.QueryBatch(ctx, *entry.Batch)
		report.Batch = &r
	case entry.Task == nil:
		return Report{}, domain.E(domain.CodeInternal, "app.inspect", "stored entry has no handle", nil).WithMeta("id", id)
	case wait:
		r := a.client.Exec(ctx, *entry.Task)
		report.Task = &r
	default:
		r := a.client.Query(ctx, *entry.Task)
		report.Task = &r
	}

	switch domain.OutcomeFromError(report.Err()) {
	case domain.TaskOutcomeCanceled, domain.TaskOutcomeTransportError:
		// Local failures say nothing about the remote task.
		return report, nil
	}
	if err := store.SetStatus(id, report.Status(), report.Err()); err != nil {
		return Report{}, err
	}
	return report, nil
}
