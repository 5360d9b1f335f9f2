package otelhelper

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	ErrorTypeKey = "trainflow.error.type"
	RejectedKey  = "trainflow.rejected"
)

// SetError marks the span as failed and records err, its Go type and attrs on
// the exception event.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	attrs = append(attrs, attribute.String(ErrorTypeKey, fmt.Sprintf("%T", err)))

	span.RecordError(err, trace.WithAttributes(attrs...))
	span.SetStatus(codes.Error, err.Error())
}

// SetRejected records a request the service refused, such as a graph rule
// violation or a save that is not ready. The span status is left unset.
func SetRejected(span trace.Span, err error, attrs ...attribute.KeyValue) {
	attrs = append(attrs, attribute.String("reason", err.Error()))

	span.SetAttributes(attribute.Bool(RejectedKey, true))
	span.AddEvent("request_rejected", trace.WithAttributes(attrs...))
}
