package delegate

import "go.uber.org/zap"

// Option configures an Event or a Pool.
type Option func(*settings)

// PanicHandler is called with a recovered panic value.
// Events pass their sender when a listener panics during Send; pools pass themselves
// when a release panics during Dispose.
type PanicHandler func(sender Sender, recovered any)

type settings struct {
	name         string
	logger       *zap.Logger
	metrics      *Metrics
	panicHandler PanicHandler
}

func newSettings(defaultName string, opts []Option) settings {
	s := settings{
		name:   defaultName,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithName sets the name used in log fields and metric labels.
// Empty names are ignored.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records sends, invocations, panics and hook counts into m.
func WithMetrics(m *Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// WithPanicHandler isolates listeners from each other during Send.
// A panicking listener is recovered, reported to handler, and the remaining listeners
// still run. Without a handler, panics propagate to the caller of Send.
// On a Pool, handler is told about releases that panicked during Dispose; those are
// recovered whether or not a handler is set.
func WithPanicHandler(handler PanicHandler) Option {
	return func(s *settings) {
		s.panicHandler = handler
	}
}
