package telemetry

import (
	"context"

	"go.trai.ch/permc/internal/core/ports"
)

// NoOpTracer discards every span. Compiles that run without a progress view or exporter use it.
type NoOpTracer struct{}

// NewNoOpTracer returns a tracer that records nothing.
func NewNoOpTracer() NoOpTracer { return NoOpTracer{} }

// Start returns ctx unchanged together with a span that ignores every call.
func (NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, discardSpan{}
}

func (NoOpTracer) EmitPlan(context.Context, []string) {}

type discardSpan struct{}

func (discardSpan) End()                     {}
func (discardSpan) RecordError(error)        {}
func (discardSpan) SetAttribute(string, any) {}
