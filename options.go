package biscuitdl

import (
	"github.com/rs/zerolog"

	"github.com/biscuit-core/biscuitdl/datalog"
)

// authorizeOptions holds the optional collaborators an authorization can
// be run with; all of them default to harmless no-ops, so Authorize is
// usable as an embedded library with zero ambient output.
type authorizeOptions struct {
	logger  zerolog.Logger
	metrics *datalog.Metrics
}

func defaultAuthorizeOptions() authorizeOptions {
	return authorizeOptions{logger: zerolog.Nop()}
}

// Option configures one call to Authorize.
type Option func(*authorizeOptions)

// WithLogger attaches a structured logger. Authorize emits one debug
// event per state transition (authority loaded, authority evaluated,
// each block evaluated, classification) carrying block, fact and
// failed-check counts -- never raw fact contents, since those may carry sensitive
// claims. Logging never changes control flow.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *authorizeOptions) { o.logger = logger }
}

// WithMetrics attaches a metrics sink observed once per fixpoint round
// across every world the authorization runs (authority phase and every
// block phase). It is a pure side channel: Limits alone bounds
// termination.
func WithMetrics(m *datalog.Metrics) Option {
	return func(o *authorizeOptions) { o.metrics = m }
}
