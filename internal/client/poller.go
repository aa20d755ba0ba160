package client

import (
	"context"

	"go.uber.org/zap"

	"qcloud/internal/domain"
	"qcloud/internal/infra/decode"
	"qcloud/internal/infra/poll"
	"qcloud/internal/infra/telemetry"
)

// submit builds, sends and decodes one single-task submission. Every
// failure is returned as an error.
func (c *Client) submit(ctx context.Context, st sessionState, task domain.Task, prog domain.Program) (domain.TaskHandle, error) {
	if prog == nil {
		return domain.TaskHandle{}, domain.Configf("client.submit", "program is required")
	}
	codes, err := c.encode(ctx, prog)
	if err != nil {
		return domain.TaskHandle{}, err
	}
	body, err := c.builder(st).Single(task, codes[0], prog.QubitCount(), prog.CbitCount())
	if err != nil {
		return domain.TaskHandle{}, err
	}

	logger := telemetry.LoggerFor(ctx, c.logger)
	resp, err := c.post(ctx, st, st.endpoints.Compute, body)
	if err != nil {
		c.metrics.ObserveSubmit(task.Backend, false, domain.OutcomeFromError(err))
		return domain.TaskHandle{}, err
	}
	taskID, err := decode.Submit(resp)
	c.metrics.ObserveSubmit(task.Backend, false, domain.OutcomeFromError(err))
	if err != nil {
		c.logDecodeFailure(ctx, st, resp, err)
		logger.Warn("submit rejected",
			telemetry.EventField(telemetry.EventSubmitRejected),
			telemetry.BackendField(task.Backend),
			zap.Error(err),
		)
		return domain.TaskHandle{}, err
	}

	handle := domain.TaskHandle{
		TaskID:      taskID,
		Backend:     task.Backend,
		Kind:        task.Kind,
		Name:        task.TaskName(),
		SubmittedAt: c.now(),
	}
	logger.Info("task submitted",
		telemetry.EventField(telemetry.EventSubmit),
		telemetry.BackendField(task.Backend),
		telemetry.TaskIDField(taskID),
	)
	return handle, nil
}

// inquire performs one inquiry. Malformed responses and transport failures
// are errors; a failed task is reported through the outcome.
func (c *Client) inquire(ctx context.Context, st sessionState, handle domain.TaskHandle) (decode.Outcome, error) {
	body, err := c.builder(st).Inquire(handle.TaskID, handle.Backend)
	if err != nil {
		return decode.Outcome{}, err
	}
	resp, err := c.post(ctx, st, st.endpoints.Inquire, body)
	if err != nil {
		return decode.Outcome{}, err
	}
	out, err := decode.Inquiry(resp, handle.Backend)
	if err != nil {
		c.logDecodeFailure(ctx, st, resp, err)
		return decode.Outcome{}, err
	}
	c.metrics.ObserveInquiry(handle.Backend, out.Status)

	logger := telemetry.LoggerFor(ctx, c.logger)
	if !out.Status.Known() {
		logger.Warn("unknown task state, treating as pending",
			telemetry.EventField(telemetry.EventUnknownState),
			telemetry.TaskIDField(handle.TaskID),
			telemetry.StatusField(out.Status),
		)
	} else {
		logger.Debug("task inquired",
			telemetry.EventField(telemetry.EventInquire),
			telemetry.TaskIDField(handle.TaskID),
			telemetry.StatusField(out.Status),
		)
	}
	return out, nil
}

// wait polls handle until it reaches a terminal state. Each poll sleeps the
// single-task interval first.
func (c *Client) wait(ctx context.Context, st sessionState, handle domain.TaskHandle) (domain.Result, error) {
	started := c.now()
	var result domain.Result
	polls, err := poll.Until(ctx, poll.Options{Interval: c.pollInterval, Timeout: c.pollTimeout}, func(ctx context.Context) (bool, error) {
		out, err := c.inquire(ctx, st, handle)
		if err != nil {
			return false, err
		}
		switch out.Phase {
		case decode.PhaseReady:
			result = out.Result
			return true, nil
		case decode.PhaseFailed:
			return false, out.Err
		default:
			return false, nil
		}
	})

	c.metrics.ObserveTask(domain.TaskMetric{
		Backend:  handle.Backend,
		Outcome:  domain.OutcomeFromError(err),
		Polls:    polls,
		Duration: c.now().Sub(started),
	})
	logger := telemetry.LoggerFor(ctx, c.logger).With(
		telemetry.BackendField(handle.Backend),
		telemetry.TaskIDField(handle.TaskID),
		telemetry.PollsField(polls),
	)
	if err != nil {
		logger.Warn("task did not finish",
			telemetry.EventField(telemetry.EventTaskFailed),
			zap.Error(err),
		)
		return domain.Result{}, err
	}
	logger.Info("task finished",
		telemetry.EventField(telemetry.EventTaskReady),
		telemetry.DurationField(c.now().Sub(started)),
	)
	return result, nil
}

// run is the blocking submit-then-wait path shared by every single-task
// method.
func (c *Client) run(ctx context.Context, operation string, task domain.Task, prog domain.Program) (domain.Result, error) {
	ctx, _ = telemetry.StartOperation(ctx, operation)
	st := c.session.state()
	handle, err := c.submit(ctx, st, task, prog)
	if err != nil {
		return domain.Result{}, err
	}
	return c.wait(ctx, st, handle)
}
