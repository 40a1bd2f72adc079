package bytepress

import (
	"go.uber.org/zap"

	"github.com/bytepress/bytepress/internal/stats"
	"github.com/bytepress/bytepress/registry"
)

// Option configures a Manager.
type Option interface {
	apply(*options)
}

// options holds the manager configuration.
type options struct {
	registry    *registry.Registry
	hostVersion string
	logger      *zap.Logger
	stats       stats.Collector
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		hostVersion: Version,
		logger:      zap.NewNop(),
		stats:       stats.NewNoop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithRegistry sets the algorithm registry the manager owns and shares with
// plugins. If not set, a fresh registry is created.
func WithRegistry(r *registry.Registry) Option {
	return optionFunc(func(o *options) {
		o.registry = r
	})
}

// WithHostVersion overrides the host version plugins are checked against.
// Default is the library's own Version.
func WithHostVersion(v string) Option {
	return optionFunc(func(o *options) {
		o.hostVersion = v
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}
