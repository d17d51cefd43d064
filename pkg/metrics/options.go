package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jzx17/stealpool/pkg/types"
)

// Options configures metric collection.
type Options struct {
	Namespace  string
	Registerer prometheus.Registerer
	Clock      types.Clock

	// self define collectors registered alongside ours
	Others []prometheus.Collector
}

// Option mutates Options.
type Option func(o *Options)

// Namespace sets the metric namespace prefix.
func Namespace(n string) Option {
	return func(o *Options) {
		o.Namespace = n
	}
}

// Registerer sets the prometheus registerer, defaulting to
// prometheus.DefaultRegisterer.
func Registerer(r prometheus.Registerer) Option {
	return func(o *Options) {
		o.Registerer = r
	}
}

// WithClock sets the clock used for task duration measurement. Pass the
// same clock as pool.Config.Clock; durations are computed from the
// observer's clock alone, so injecting a mock into only one of the two
// skews the recorded values.
func WithClock(c types.Clock) Option {
	return func(o *Options) {
		o.Clock = c
	}
}

// AddCollector registers an extra collector with the same registerer.
func AddCollector(c prometheus.Collector) Option {
	return func(o *Options) {
		o.Others = append(o.Others, c)
	}
}

func newOptions(opts ...Option) Options {
	o := Options{
		Registerer: prometheus.DefaultRegisterer,
		Clock:      types.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
