package ipactivity

import (
	"log/slog"
	"time"

	"github.com/hupe1980/ipactivity/resource"
)

const (
	// DefaultConfigName is the configuration blob read when none is given.
	DefaultConfigName = "config.yaml"
	// DefaultFilename is the dataset and bitmap base name used when none is
	// given.
	DefaultFilename = "bitmap"
)

type options struct {
	dataset          string
	configName       string
	filename         string
	metricsCollector MetricsCollector
	logger           *Logger
	clock            func() time.Time
	location         *time.Location
	resources        *resource.Controller
}

// Option configures Engine behavior.
type Option func(*options)

// WithDataset selects the configuration entry to serve. It defaults to the
// bitmap base name.
func WithDataset(dataset string) Option {
	return func(o *options) {
		o.dataset = dataset
	}
}

// WithConfigName sets the name of the configuration blob.
// The default is "config.yaml".
func WithConfigName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.configName = name
		}
	}
}

// WithFilename sets the bitmap base name. Bitmap blobs are named
// "<filename>_<kind>.bmap". The default is "bitmap".
func WithFilename(filename string) Option {
	return func(o *options) {
		if filename != "" {
			o.filename = filename
		}
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &ipactivity.BasicMetricsCollector{}
//	e, _ := ipactivity.Open(ctx, store, ipactivity.WithMetricsCollector(metrics))
//	// ... use e ...
//	stats := metrics.GetStats()
//	fmt.Printf("Reads: %d, no data: %d\n", stats.ReadCount, stats.ReadNoData)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithClock replaces time.Now. Online datasets derive their number of
// recorded intervals from it.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithLocation sets the zone for configuration timestamps that carry
// none. The default is time.Local, the zone the producer writes in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

// WithResourceController bounds memory and I/O of bitmap reads.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		configName:       DefaultConfigName,
		filename:         DefaultFilename,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		clock:            time.Now,
		location:         time.Local,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.dataset == "" {
		o.dataset = o.filename
	}
	return o
}
