// Package metrics exports pool activity as prometheus collectors.
package metrics

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jzx17/stealpool/pkg/types"
)

// Observer implements types.Observer and counts task lifecycle events
// per worker. Plug it into pool.Config.Observer.
type Observer struct {
	tasks    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
	clock    types.Clock

	// one slot per worker; a worker runs one task at a time, so each
	// slot has a single writer
	starts []atomic.Int64
}

// NewObserver creates a prometheus-backed observer for a pool with the
// given worker count and registers its collectors. When the pool runs on
// an injected clock, pass that clock via WithClock as well so duration
// measurements agree with the pool's timeline.
func NewObserver(workers int, opts ...Option) (*Observer, error) {
	o := newOptions(opts...)

	obs := &Observer{
		tasks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: o.Namespace,
				Name:      "tasks_total",
				Help:      "Task lifecycle events, partitioned by worker and event",
			},
			[]string{"worker", "event"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: o.Namespace,
				Name:      "task_duration_seconds",
				Help:      "Task execution time in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"worker"},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: o.Namespace,
				Name:      "tasks_inflight",
				Help:      "Tasks currently executing",
			},
		),
		clock:  o.Clock,
		starts: make([]atomic.Int64, workers),
	}

	collectors := append([]prometheus.Collector{obs.tasks, obs.duration, obs.inflight}, o.Others...)
	for _, c := range collectors {
		if err := o.Registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return obs, nil
}

// OnTaskEvent records a task lifecycle event.
func (o *Observer) OnTaskEvent(event types.TaskEvent, workerID int, err error) {
	worker := strconv.Itoa(workerID)
	o.tasks.WithLabelValues(worker, event.String()).Inc()

	switch event {
	case types.TaskStarted:
		o.inflight.Inc()
		if workerID >= 0 && workerID < len(o.starts) {
			o.starts[workerID].Store(o.clock.Now().UnixNano())
		}
	case types.TaskCompleted, types.TaskFailed:
		o.inflight.Dec()
		if workerID >= 0 && workerID < len(o.starts) {
			if start := o.starts[workerID].Load(); start > 0 {
				elapsed := o.clock.Now().UnixNano() - start
				o.duration.WithLabelValues(worker).Observe(time.Duration(elapsed).Seconds())
			}
		}
	}
}
