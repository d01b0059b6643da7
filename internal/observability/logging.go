package observability

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel/trace"
)

// LogSource tags every protocol log record so operators can filter them.
const LogSource = "channel3"

type traceAwareHandler struct {
	next slog.Handler
}

// WrapSlogHandler adds trace and request context fields to structured logs.
func WrapSlogHandler(next slog.Handler) slog.Handler {
	if next == nil {
		next = slog.NewTextHandler(io.Discard, nil)
	}
	return &traceAwareHandler{next: next}
}

func (h *traceAwareHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *traceAwareHandler) Handle(ctx context.Context, record slog.Record) error {
	if requestID, ok := RequestIDFromContext(ctx); ok {
		record.AddAttrs(slog.String("request_id", requestID))
	}
	if route, ok := RouteFromContext(ctx); ok {
		record.AddAttrs(slog.String("route", route))
	}

	span := trace.SpanFromContext(ctx)
	if span != nil {
		sc := span.SpanContext()
		if sc.IsValid() {
			record.AddAttrs(
				slog.String("trace_id", sc.TraceID().String()),
				slog.String("span_id", sc.SpanID().String()),
			)
		}
	}

	return h.next.Handle(ctx, record)
}

func (h *traceAwareHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceAwareHandler{next: h.next.WithAttrs(attrs)}
}

func (h *traceAwareHandler) WithGroup(name string) slog.Handler {
	return &traceAwareHandler{next: h.next.WithGroup(name)}
}

// DebugSwitch is the runtime toggle behind the "debug log" setting.
type DebugSwitch struct {
	enabled atomic.Bool
}

// NewDebugSwitch returns a switch in the given state.
func NewDebugSwitch(enabled bool) *DebugSwitch {
	s := &DebugSwitch{}
	s.enabled.Store(enabled)
	return s
}

// Set flips the switch.
func (s *DebugSwitch) Set(enabled bool) {
	if s == nil {
		return
	}
	s.enabled.Store(enabled)
}

// Enabled reports the current state. A nil switch is off.
func (s *DebugSwitch) Enabled() bool {
	return s != nil && s.enabled.Load()
}

type debugGateHandler struct {
	next slog.Handler
	gate *DebugSwitch
}

// NewDebugLogger returns a logger tagged with source=channel3 that only emits
// while the switch is on. Errors are always emitted.
func NewDebugLogger(base *slog.Logger, gate *DebugSwitch) *slog.Logger {
	if base == nil {
		base = slog.Default()
	}
	handler := &debugGateHandler{next: base.Handler(), gate: gate}
	return slog.New(handler).With(slog.String("source", LogSource))
}

func (h *debugGateHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < slog.LevelError && !h.gate.Enabled() {
		return false
	}
	return h.next.Enabled(ctx, level)
}

func (h *debugGateHandler) Handle(ctx context.Context, record slog.Record) error {
	return h.next.Handle(ctx, record)
}

func (h *debugGateHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &debugGateHandler{next: h.next.WithAttrs(attrs), gate: h.gate}
}

func (h *debugGateHandler) WithGroup(name string) slog.Handler {
	return &debugGateHandler{next: h.next.WithGroup(name), gate: h.gate}
}
