package deploy

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type pollTask struct {
	cancel   context.CancelFunc
	failures int
}

// startPolling must be called with lock held. At most one loop is active.
func (c *Controller) startPolling() {
	if c.poll != nil {
		return
	}

	ctx, cancel := context.WithCancel(c.ctx)
	task := &pollTask{cancel: cancel}
	c.poll = task

	c.loops.Add(1)
	go func() {
		defer c.loops.Done()
		c.run(ctx, task)
	}()
}

// stopPolling must be called with lock held.
func (c *Controller) stopPolling() {
	if c.poll == nil {
		return
	}
	c.poll.cancel()
	c.poll = nil
}

// consecutiveFailures must be called with lock held.
func (c *Controller) consecutiveFailures() int {
	if c.poll == nil {
		return 0
	}
	return c.poll.failures
}

func (c *Controller) run(ctx context.Context, task *pollTask) {
	interval := c.config.GetPollInterval()
	c.logger.Info("polling deployment status", zap.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("polling stopped")
			return

		case <-c.clock.After(interval):
		}

		if ctx.Err() != nil {
			c.logger.Debug("polling stopped")
			return
		}

		status, err := c.fetch()
		if !c.apply(task, status, err) {
			return
		}
	}
}

// fetch is bound to the controller context rather than the loop's, so that
// Cancel lets an in-flight request finish; its result is then discarded.
func (c *Controller) fetch() (JobStatus, error) {
	ctx, cancel := context.WithTimeout(c.ctx, c.config.GetRequestTimeout())
	defer cancel()

	c.logger.Debug("fetching deployment status")
	return c.status.FetchStatus(ctx)
}

// apply merges one fetch result into the controller state. It reports
// whether the loop should continue.
func (c *Controller) apply(task *pollTask, status JobStatus, err error) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.poll != task {
		c.logger.Debug("discarding status fetched after cancellation")
		return false
	}

	if err != nil {
		task.failures++
		c.metrics.polled(c.clock.Now(), err, task.failures)
		c.logger.Warn("failed to fetch deployment status",
			zap.Error(err),
			zap.Int("consecutiveFailures", task.failures),
		)

		limit := c.config.GetMaxConsecutiveFailures()
		if limit > 0 && task.failures >= limit {
			c.logger.Error("giving up on deployment status",
				zap.Error(err),
				zap.Int("consecutiveFailures", task.failures),
			)
			c.publish(JobStatus{
				Running:   false,
				Completed: true,
				Message:   fmt.Sprintf("status unavailable: %s", err),
			})
			c.stopPolling()
			return false
		}
		return true
	}

	task.failures = 0
	c.metrics.polled(c.clock.Now(), nil, 0)

	status = c.publish(status)
	if status.Completed {
		c.logger.Info("deployment finished", zap.String("message", status.Message))
		c.stopPolling()
		return false
	}
	return true
}
