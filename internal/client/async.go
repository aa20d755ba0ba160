package client

import (
	"context"

	"qcloud/internal/domain"
	"qcloud/internal/infra/decode"
	"qcloud/internal/infra/telemetry"
)

// commitFailure reports whether err came back from the service rather than
// from building or delivering the request.
func commitFailure(err error) bool {
	return domain.IsCode(err, domain.CodeRemoteRejection) || domain.IsCode(err, domain.CodeResultDecode)
}

func failedReport(err error) domain.TaskReport {
	return domain.TaskReport{Status: domain.TaskStatusFailed, Err: err}
}

// Commit submits task without waiting for it. The error is non-nil only
// when the request could not be built or delivered; a rejection by the
// service yields a FAILED report and a zero handle.
func (c *Client) Commit(ctx context.Context, task domain.Task, prog domain.Program) (domain.TaskHandle, domain.TaskReport, error) {
	ctx, _ = telemetry.StartOperation(ctx, "commit")
	handle, err := c.submit(ctx, c.session.state(), task, prog)
	if err != nil {
		if commitFailure(err) {
			return domain.TaskHandle{}, failedReport(err), nil
		}
		return domain.TaskHandle{}, domain.TaskReport{}, err
	}
	return handle, domain.TaskReport{Status: domain.TaskStatusWaiting}, nil
}

// Query performs a single inquiry and never fails: a task that failed and a
// query that could not be answered both come back as FAILED with an empty
// result, the cause in Err.
func (c *Client) Query(ctx context.Context, handle domain.TaskHandle) domain.TaskReport {
	ctx, _ = telemetry.StartOperation(ctx, "query")
	if handle.TaskID == "" {
		return failedReport(domain.Configf("client.Query", "task id is required"))
	}
	out, err := c.inquire(ctx, c.session.state(), handle)
	if err != nil {
		return failedReport(err)
	}
	switch out.Phase {
	case decode.PhaseReady:
		return domain.TaskReport{Status: domain.TaskStatusFinished, Result: out.Result}
	case decode.PhaseFailed:
		return failedReport(out.Err)
	default:
		return domain.TaskReport{Status: out.Status}
	}
}

// Exec polls handle to a terminal state. Like Query it reports failures in
// the returned report.
func (c *Client) Exec(ctx context.Context, handle domain.TaskHandle) domain.TaskReport {
	ctx, _ = telemetry.StartOperation(ctx, "exec")
	if handle.TaskID == "" {
		return failedReport(domain.Configf("client.Exec", "task id is required"))
	}
	res, err := c.wait(ctx, c.session.state(), handle)
	if err != nil {
		return failedReport(err)
	}
	return domain.TaskReport{Status: domain.TaskStatusFinished, Result: res}
}

func failedBatchReport(err error) domain.BatchReport {
	return domain.BatchReport{Status: domain.TaskStatusFailed, Err: err}
}

// CommitBatch is the batch counterpart of Commit.
func (c *Client) CommitBatch(ctx context.Context, task domain.Task, progs []domain.Program) (domain.BatchHandle, domain.BatchReport, error) {
	ctx, _ = telemetry.StartOperation(ctx, "commit_batch")
	handle, err := c.submitBatch(ctx, c.session.state(), task, progs)
	if err != nil {
		if commitFailure(err) {
			return domain.BatchHandle{}, failedBatchReport(err), nil
		}
		return domain.BatchHandle{}, domain.BatchReport{}, err
	}
	return handle, domain.BatchReport{Status: domain.TaskStatusWaiting}, nil
}

// QueryBatch performs one pass. While steps are outstanding the report
// carries the state of the lowest pending step and the steps finished so
// far.
func (c *Client) QueryBatch(ctx context.Context, handle domain.BatchHandle) domain.BatchReport {
	ctx, _ = telemetry.StartOperation(ctx, "query_batch")
	out, err := c.inquireBatch(ctx, c.session.state(), handle)
	if err != nil {
		return failedBatchReport(err)
	}
	if out.Err != nil {
		return failedBatchReport(out.Err)
	}
	result := batchResult(handle, out)
	if out.Complete(handle.Steps) {
		return domain.BatchReport{Status: domain.TaskStatusFinished, Result: result}
	}
	return domain.BatchReport{Status: pendingStatus(handle, out), Result: result}
}

func pendingStatus(handle domain.BatchHandle, out decode.BatchOutcome) domain.TaskStatus {
	lowest := -1
	for _, step := range out.Pending(handle.Steps) {
		if lowest == -1 || step < lowest {
			lowest = step
		}
	}
	if status, ok := out.Statuses[lowest]; ok && status != domain.TaskStatusFinished {
		return status
	}
	return domain.TaskStatusWaiting
}

// ExecBatch polls handle until every step finished in one pass.
func (c *Client) ExecBatch(ctx context.Context, handle domain.BatchHandle) domain.BatchReport {
	ctx, _ = telemetry.StartOperation(ctx, "exec_batch")
	res, err := c.waitBatch(ctx, c.session.state(), handle)
	if err != nil {
		return failedBatchReport(err)
	}
	return domain.BatchReport{Status: domain.TaskStatusFinished, Result: res}
}
