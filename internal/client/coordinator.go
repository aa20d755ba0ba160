package client

import (
	"context"

	"go.uber.org/zap"

	"qcloud/internal/domain"
	"qcloud/internal/infra/decode"
	"qcloud/internal/infra/poll"
	"qcloud/internal/infra/telemetry"
)

func (c *Client) submitBatch(ctx context.Context, st sessionState, task domain.Task, progs []domain.Program) (domain.BatchHandle, error) {
	const op = "client.submitBatch"
	if len(progs) == 0 {
		return domain.BatchHandle{}, domain.Configf(op, "at least one program is required")
	}
	for i, prog := range progs {
		if prog == nil {
			return domain.BatchHandle{}, domain.Configf(op, "program %d is nil", i)
		}
	}
	codes, err := c.encode(ctx, progs...)
	if err != nil {
		return domain.BatchHandle{}, err
	}
	qubits, cbits := domain.RegisterSizes(progs...)
	body, err := c.builder(st).Batch(task, codes, qubits, cbits)
	if err != nil {
		return domain.BatchHandle{}, err
	}

	logger := telemetry.LoggerFor(ctx, c.logger)
	resp, err := c.post(ctx, st, st.endpoints.BatchCompute, body)
	if err != nil {
		c.metrics.ObserveSubmit(task.Backend, true, domain.OutcomeFromError(err))
		return domain.BatchHandle{}, err
	}
	steps, err := decode.BatchSubmit(resp)
	c.metrics.ObserveSubmit(task.Backend, true, domain.OutcomeFromError(err))
	if err != nil {
		c.logDecodeFailure(ctx, st, resp, err)
		logger.Warn("batch submit rejected",
			telemetry.EventField(telemetry.EventSubmitRejected),
			telemetry.BackendField(task.Backend),
			zap.Error(err),
		)
		return domain.BatchHandle{}, err
	}
	c.metrics.ObserveBatchSteps(task.Backend, len(steps))

	handle := domain.BatchHandle{
		Backend:     task.Backend,
		Kind:        task.Kind,
		Name:        task.TaskName(),
		SubmittedAt: c.now(),
		Steps:       steps,
	}
	logger.Info("batch submitted",
		telemetry.EventField(telemetry.EventBatchSubmit),
		telemetry.BackendField(task.Backend),
		zap.Strings("task_ids", handle.TaskIDs()),
	)
	return handle, nil
}

// inquireBatch performs one pass over every step of handle.
func (c *Client) inquireBatch(ctx context.Context, st sessionState, handle domain.BatchHandle) (decode.BatchOutcome, error) {
	const op = "client.inquireBatch"
	if len(handle.Steps) == 0 {
		return decode.BatchOutcome{}, domain.Configf(op, "batch handle has no steps")
	}
	body, err := c.builder(st).BatchInquire(handle.TaskIDs(), handle.Backend)
	if err != nil {
		return decode.BatchOutcome{}, err
	}
	resp, err := c.post(ctx, st, st.endpoints.BatchInquire, body)
	if err != nil {
		return decode.BatchOutcome{}, err
	}
	out, err := decode.BatchInquiry(resp, handle.Backend)
	if err != nil {
		c.logDecodeFailure(ctx, st, resp, err)
		return decode.BatchOutcome{}, err
	}

	logger := telemetry.LoggerFor(ctx, c.logger)
	for _, step := range handle.Steps {
		status, ok := out.Statuses[step.Step]
		if !ok {
			continue
		}
		c.metrics.ObserveInquiry(handle.Backend, status)
		if !status.Known() {
			logger.Warn("unknown task state, treating as pending",
				telemetry.EventField(telemetry.EventUnknownState),
				telemetry.StepField(step.Step),
				telemetry.TaskIDField(step.TaskID),
				telemetry.StatusField(status),
			)
		}
	}
	return out, nil
}

// waitBatch polls until every step finished in the same pass. Results of
// earlier passes are discarded; only the completing pass is returned.
func (c *Client) waitBatch(ctx context.Context, st sessionState, handle domain.BatchHandle) (domain.BatchResult, error) {
	started := c.now()
	var result domain.BatchResult
	polls, err := poll.Until(ctx, poll.Options{Interval: c.batchPollInterval, Timeout: c.pollTimeout}, func(ctx context.Context) (bool, error) {
		out, err := c.inquireBatch(ctx, st, handle)
		if err != nil {
			return false, err
		}
		if out.Err != nil {
			return false, out.Err
		}
		if !out.Complete(handle.Steps) {
			telemetry.LoggerFor(ctx, c.logger).Debug("batch pass incomplete",
				telemetry.EventField(telemetry.EventBatchPass),
				zap.Ints("pending_steps", out.Pending(handle.Steps)),
			)
			return false, nil
		}
		result = batchResult(handle, out)
		return true, nil
	})

	c.metrics.ObserveTask(domain.TaskMetric{
		Backend:  handle.Backend,
		Batch:    true,
		Outcome:  domain.OutcomeFromError(err),
		Polls:    polls,
		Duration: c.now().Sub(started),
	})
	logger := telemetry.LoggerFor(ctx, c.logger).With(
		telemetry.BackendField(handle.Backend),
		telemetry.PollsField(polls),
	)
	if err != nil {
		logger.Warn("batch did not finish",
			telemetry.EventField(telemetry.EventTaskFailed),
			zap.Error(err),
		)
		return domain.BatchResult{}, err
	}
	logger.Info("batch finished",
		telemetry.EventField(telemetry.EventBatchReady),
		zap.Int("steps", result.Len()),
		telemetry.DurationField(c.now().Sub(started)),
	)
	return result, nil
}

// batchResult keeps only the steps the handle asked for.
func batchResult(handle domain.BatchHandle, out decode.BatchOutcome) domain.BatchResult {
	byStep := make(map[int]domain.Result, len(handle.Steps))
	for _, step := range handle.Steps {
		if res, ok := out.Results[step.Step]; ok {
			byStep[step.Step] = res
		}
	}
	return domain.NewBatchResult(byStep)
}

func (c *Client) runBatch(ctx context.Context, operation string, task domain.Task, progs []domain.Program) (domain.BatchResult, error) {
	ctx, _ = telemetry.StartOperation(ctx, operation)
	st := c.session.state()
	handle, err := c.submitBatch(ctx, st, task, progs)
	if err != nil {
		return domain.BatchResult{}, err
	}
	return c.waitBatch(ctx, st, handle)
}
