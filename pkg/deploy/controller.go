package deploy

import (
	"context"
	"sync"

	"github.com/oursky/slurm-deploy-controller/pkg/utils/channels"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Controller drives one deployment workflow: it requests a start, polls the
// job status until it is terminal, and publishes every snapshot to observers.
type Controller struct {
	logger  *zap.Logger
	config  *Config
	clock   Clock
	status  StatusClient
	starter StartClient
	metrics *metrics

	// ctx bounds every request; cancelled on Close.
	ctx    context.Context
	cancel context.CancelFunc
	loops  *sync.WaitGroup

	lock     *sync.Mutex
	starting bool
	poll     *pollTask
	closed   bool
	done     chan struct{}

	// generation changes on every publish and Cancel; a Sync whose fetch
	// spans a change is stale.
	generation uint64

	state *channels.Broadcaster[JobStatus]
}

type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

func NewController(
	logger *zap.Logger,
	config *Config,
	status StatusClient,
	starter StartClient,
	registry *prometheus.Registry,
	opts ...Option,
) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		logger:  logger.Named("deploy-controller"),
		config:  config,
		clock:   RealClock{},
		status:  status,
		starter: starter,
		metrics: newMetrics(registry),
		ctx:     ctx,
		cancel:  cancel,
		loops:   new(sync.WaitGroup),
		lock:    new(sync.Mutex),
		done:    make(chan struct{}),
		state:   channels.NewBroadcaster(IdleStatus()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start asks the panel to begin a deployment and starts polling its status.
// Calls made while a start is pending or the job is running fail with
// ErrAlreadyInProgress without contacting the panel.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.beginStart(); err != nil {
		return err
	}

	c.logger.Info("requesting deployment start")
	ctx, cancel := context.WithTimeout(ctx, c.config.GetRequestTimeout())
	err := c.starter.RequestStart(ctx)
	cancel()
	c.metrics.startRequested(err)

	c.lock.Lock()
	defer c.lock.Unlock()

	c.starting = false
	if err != nil {
		c.logger.Warn("failed to start deployment", zap.Error(err))
		return err
	}
	if c.closed {
		return ErrClosed
	}

	c.logger.Info("deployment started")
	c.publish(JobStatus{Running: true, Message: MessageStarted})
	c.startPolling()
	return nil
}

func (c *Controller) beginStart() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrClosed
	}
	current := c.state.Value()
	switch {
	case c.starting, current.Running:
		return ErrAlreadyInProgress
	case current.Completed:
		return ErrTerminal
	}
	c.starting = true
	return nil
}

// Cancel stops polling. The last observed snapshot is kept.
func (c *Controller) Cancel() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.generation++
	if c.poll != nil {
		c.logger.Info("cancelling status polling")
		c.stopPolling()
	}
}

// Sync fetches the job status once and publishes it. Polling is attached when
// the panel reports a running job. If the state changes while the fetch is in
// flight, the result is discarded and ErrAlreadyInProgress is returned.
func (c *Controller) Sync(ctx context.Context) error {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return ErrClosed
	}
	if c.starting {
		c.lock.Unlock()
		return ErrAlreadyInProgress
	}
	if c.state.Value().Completed {
		c.lock.Unlock()
		return ErrTerminal
	}
	generation := c.generation
	c.lock.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.config.GetRequestTimeout())
	status, err := c.status.FetchStatus(ctx)
	cancel()

	c.lock.Lock()
	defer c.lock.Unlock()

	c.metrics.polled(c.clock.Now(), err, c.consecutiveFailures())
	if err != nil {
		c.logger.Warn("failed to sync deployment status", zap.Error(err))
		return err
	}
	if c.closed {
		return ErrClosed
	}
	if c.starting || c.generation != generation {
		c.logger.Debug("discarding status synced during a state change")
		return ErrAlreadyInProgress
	}
	if c.state.Value().Completed {
		return ErrTerminal
	}

	status = c.publish(status)
	if status.Running {
		c.startPolling()
	}
	return nil
}

// Reset returns a controller to the idle state so that a new deployment can
// be started.
func (c *Controller) Reset() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.starting {
		return ErrAlreadyInProgress
	}

	c.logger.Info("resetting deployment state")
	c.stopPolling()
	select {
	case <-c.done:
		c.done = make(chan struct{})
	default:
	}
	c.publish(IdleStatus())
	return nil
}

// Subscribe registers an observer. It receives the current snapshot first,
// then every later one, from a single delivery goroutine.
func (c *Controller) Subscribe(observer Observer) (unsubscribe func()) {
	return c.state.Subscribe(observer.OnStateChange).Unsubscribe
}

func (c *Controller) CurrentState() JobStatus {
	return c.state.Value()
}

// Done is closed once a terminal snapshot has been published.
func (c *Controller) Done() <-chan struct{} {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.done
}

// Close stops polling, aborts pending requests and waits for queued
// snapshots to be delivered. It must not be called from an observer.
func (c *Controller) Close() {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return
	}
	c.closed = true
	c.stopPolling()
	c.cancel()
	c.lock.Unlock()

	c.loops.Wait()
	c.state.Close()
}

// publish must be called with lock held.
func (c *Controller) publish(status JobStatus) JobStatus {
	status = status.Normalize()
	c.generation++
	c.state.Publish(status)
	c.metrics.update(status)

	if status.Completed {
		select {
		case <-c.done:
		default:
			close(c.done)
		}
	}
	return status
}
