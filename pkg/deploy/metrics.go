package deploy

import (
	"sync"
	"time"

	"github.com/oursky/slurm-deploy-controller/pkg/utils/promutil"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	lock *sync.RWMutex

	status              JobStatus
	polls               int64
	pollFailures        int64
	consecutiveFailures int
	lastPoll            time.Time
	startRequests       int64
	startFailures       int64

	running            *promutil.MetricDesc
	completed          *promutil.MetricDesc
	pollsTotal         *promutil.MetricDesc
	pollFailuresTotal  *promutil.MetricDesc
	consecutiveFailed  *promutil.MetricDesc
	lastPollTime       *promutil.MetricDesc
	startRequestsTotal *promutil.MetricDesc
	startFailuresTotal *promutil.MetricDesc
}

func newMetrics(r *prometheus.Registry) *metrics {
	opts := func(name string, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace: "deploy",
			Subsystem: "controller",
			Name:      name,
			Help:      help,
		}
	}

	m := &metrics{
		lock:   new(sync.RWMutex),
		status: IdleStatus(),

		running:            promutil.NewMetricDesc(opts("running", "Describes whether the deployment job is running.")),
		completed:          promutil.NewMetricDesc(opts("completed", "Describes whether the deployment job has completed.")),
		pollsTotal:         promutil.NewMetricDesc(opts("polls_total", "Number of status fetches issued.")),
		pollFailuresTotal:  promutil.NewMetricDesc(opts("poll_failures_total", "Number of failed status fetches.")),
		consecutiveFailed:  promutil.NewMetricDesc(opts("consecutive_failures", "Number of status fetches failed in a row.")),
		lastPollTime:       promutil.NewMetricDesc(opts("last_poll_time", "Time in unix timestamp of the last status fetch.")),
		startRequestsTotal: promutil.NewMetricDesc(opts("start_requests_total", "Number of start requests sent to the panel.")),
		startFailuresTotal: promutil.NewMetricDesc(opts("start_failures_total", "Number of start requests the panel did not accept.")),
	}
	if r != nil {
		r.MustRegister(m)
	}
	return m
}

func (m *metrics) Describe(ch chan<- *prometheus.Desc) {}

func (m *metrics) Collect(ch chan<- prometheus.Metric) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	ch <- m.running.GaugeBool(m.status.Running, nil)
	ch <- m.completed.GaugeBool(m.status.Completed, nil)
	ch <- m.pollsTotal.Counter(float64(m.polls), nil)
	ch <- m.pollFailuresTotal.Counter(float64(m.pollFailures), nil)
	ch <- m.consecutiveFailed.Gauge(float64(m.consecutiveFailures), nil)
	if !m.lastPoll.IsZero() {
		ch <- m.lastPollTime.Gauge(float64(m.lastPoll.Unix()), nil)
	}
	ch <- m.startRequestsTotal.Counter(float64(m.startRequests), nil)
	ch <- m.startFailuresTotal.Counter(float64(m.startFailures), nil)
}

func (m *metrics) update(status JobStatus) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.status = status
}

func (m *metrics) polled(now time.Time, err error, consecutiveFailures int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.polls++
	m.lastPoll = now
	if err != nil {
		m.pollFailures++
	}
	m.consecutiveFailures = consecutiveFailures
}

func (m *metrics) startRequested(err error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.startRequests++
	if err != nil {
		m.startFailures++
	}
}

func (m *metrics) snapshot() (polls int64, pollFailures int64, startRequests int64) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	return m.polls, m.pollFailures, m.startRequests
}
