package services

import (
	"log/slog"

	"github.com/dukex/trainflow/pkg/eventbus"
	"github.com/dukex/trainflow/pkg/graph"
	"github.com/dukex/trainflow/pkg/log"
	"github.com/dukex/trainflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	logger     *slog.Logger
	tracer     trace.Tracer
	publisher  eventbus.EventPublisher
	positioner graph.Positioner
}

// Option configures a service.
type Option func(*options)

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithTracer sets the tracer spans are started with.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithPublisher sets where workflow events go. Without one no events are published.
func WithPublisher(publisher eventbus.EventPublisher) Option {
	return func(o *options) {
		o.publisher = publisher
	}
}

// WithPositioner overrides where the editor places added nodes.
func WithPositioner(positioner graph.Positioner) Option {
	return func(o *options) {
		o.positioner = positioner
	}
}

func newOptions(module string, opts []Option) options {
	o := options{
		logger:     slog.Default(),
		tracer:     otelhelper.NoopTracer(),
		positioner: graph.RandomPosition,
	}

	for _, opt := range opts {
		opt(&o)
	}

	o.logger = o.logger.With(log.ModuleKey, module)

	return o
}
