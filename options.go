package cachesim

import (
	"go.uber.org/zap"

	"github.com/discochess/cachesim/internal/setstore"
	"github.com/discochess/cachesim/internal/setstore/linkedlru"
	"github.com/discochess/cachesim/internal/stats"
)

// Option configures a Simulator.
type Option interface {
	apply(*options)
}

// options holds the simulator configuration.
type options struct {
	keying   Keying
	newStore setstore.Factory
	stats    stats.Collector
	logger   *zap.Logger
}

// defaultOptions returns the default configuration.
func defaultOptions() options {
	return options{
		keying:   KeyByTag,
		newStore: linkedlru.Factory,
		stats:    stats.NewNoop(),
		logger:   zap.NewNop(),
	}
}

// optionFunc wraps a function to implement Option.
type optionFunc func(*options)

// Compile-time check that optionFunc implements Option.
var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithKeying selects how lines are identified within a set.
// If not set, lines are keyed by tag.
func WithKeying(k Keying) Option {
	return optionFunc(func(o *options) {
		o.keying = k
	})
}

// WithSetStore sets the constructor used for each set's line table.
// If not set, the linked-list LRU is used.
func WithSetStore(f setstore.Factory) Option {
	return optionFunc(func(o *options) {
		o.newStore = f
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}
