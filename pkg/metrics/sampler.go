package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jzx17/stealpool/pkg/pool"
	"github.com/jzx17/stealpool/pkg/types"
)

// StatsSource yields pool-wide statistics snapshots. *pool.Pool
// satisfies it.
type StatsSource interface {
	Stats() pool.PoolStats
}

// Sampler periodically polls a StatsSource and exports the snapshot as
// prometheus gauges.
type Sampler struct {
	source   StatsSource
	interval time.Duration
	clock    types.Clock

	queueDepth prometheus.Gauge
	idle       prometheus.Gauge
	spawned    prometheus.Gauge
	processed  prometheus.Gauge
	failed     prometheus.Gauge
	stolen     prometheus.Gauge
	parks      prometheus.Gauge

	stopOnce sync.Once
	done     chan struct{}
}

// NewSampler creates a sampler polling source every interval. Call
// Start to begin collection and Stop to end it.
func NewSampler(source StatsSource, interval time.Duration, opts ...Option) (*Sampler, error) {
	o := newOptions(opts...)

	s := &Sampler{
		source:   source,
		interval: interval,
		clock:    o.Clock,
		done:     make(chan struct{}),
	}

	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: o.Namespace,
			Name:      name,
			Help:      help,
		})
	}
	s.queueDepth = gauge("queue_depth", "Tasks waiting in the shared injector queue")
	s.idle = gauge("workers_idle", "Parked workers")
	s.spawned = gauge("workers_spawned", "Workers currently running")
	s.processed = gauge("tasks_processed", "Successfully executed tasks")
	s.failed = gauge("tasks_failed", "Failed tasks")
	s.stolen = gauge("tasks_stolen", "Tasks moved between workers by steals")
	s.parks = gauge("worker_parks", "Worker park transitions")

	for _, c := range []prometheus.Collector{
		s.queueDepth, s.idle, s.spawned, s.processed, s.failed, s.stolen, s.parks,
	} {
		if err := o.Registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Start launches the polling goroutine.
func (s *Sampler) Start() {
	go s.loop()
}

// Stop ends collection. Safe to call more than once.
func (s *Sampler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

func (s *Sampler) loop() {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C():
			s.sample()
		}
	}
}

func (s *Sampler) sample() {
	stats := s.source.Stats()
	s.queueDepth.Set(float64(stats.QueueDepth))
	s.idle.Set(float64(stats.Idle))
	s.spawned.Set(float64(stats.Spawned))
	s.processed.Set(float64(stats.TotalProcessed))
	s.failed.Set(float64(stats.TotalFailed))
	s.stolen.Set(float64(stats.TotalStolen))
	s.parks.Set(float64(stats.TotalParks))
}
