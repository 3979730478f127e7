package telemetry

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// PermutationKey is the span attribute holding the permutation a step belongs to.
const PermutationKey = "permutation"

// Sender delivers messages to a Bubble Tea program.
type Sender interface {
	Send(msg tea.Msg)
}

// TUIBridge implements sdktrace.SpanProcessor to bridge pipeline step spans to Bubble Tea
// messages. Spans without a permutation attribute are ignored.
type TUIBridge struct {
	program Sender
}

// NewTUIBridge returns a new TUIBridge.
func NewTUIBridge(program Sender) *TUIBridge {
	return &TUIBridge{
		program: program,
	}
}

// NewProvider returns a tracer provider that reports every span to bridge.
func NewProvider(bridge *TUIBridge) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(bridge))
}

// OnStart is called when a span starts.
func (b *TUIBridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	id, ok := permutationOf(s.Attributes())
	if b.program == nil || !ok {
		return
	}

	b.program.Send(MsgStepStart{
		Permutation: id,
		Step:        s.Name(),
		StartTime:   s.StartTime(),
	})
}

// OnEnd is called when a span ends.
func (b *TUIBridge) OnEnd(s sdktrace.ReadOnlySpan) {
	id, ok := permutationOf(s.Attributes())
	if b.program == nil || !ok {
		return
	}

	var err error
	if s.Status().Code == codes.Error {
		desc := s.Status().Description
		if desc == "" {
			desc = "step failed"
		}
		err = errors.New(desc)
	}

	b.program.Send(MsgStepComplete{
		Permutation: id,
		Step:        s.Name(),
		Duration:    s.EndTime().Sub(s.StartTime()),
		Err:         err,
	})
}

// ForceFlush does nothing.
func (b *TUIBridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *TUIBridge) Shutdown(_ context.Context) error {
	return nil
}

func permutationOf(attrs []attribute.KeyValue) (int, bool) {
	for _, kv := range attrs {
		if string(kv.Key) == PermutationKey && kv.Value.Type() == attribute.INT64 {
			return int(kv.Value.AsInt64()), true
		}
	}
	return 0, false
}
