package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/felixgeelhaar/opsched/scheduler"

// StartCommandSpan creates a span for a CLI command execution
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer(tracerName).Start(ctx, "command."+cmdName)
	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)
	return ctx, span
}

// StartRunSpan creates the root span of one scheduling session.
//
// Usage:
//
//	ctx, span := telemetry.StartRunSpan(ctx, sessionID, len(items), len(levels))
//	defer span.End()
func StartRunSpan(ctx context.Context, sessionID string, items, levels int) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer(tracerName).Start(ctx, "scheduler.run")
	span.SetAttributes(
		attribute.String("session_id", sessionID),
		attribute.Int("items", items),
		attribute.Int("levels", levels),
	)
	return ctx, span
}

// StartLevelSpan creates a span covering one level from dispatch to barrier
func StartLevelSpan(ctx context.Context, level, width int) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer(tracerName).Start(ctx, "scheduler.level")
	span.SetAttributes(
		attribute.Int("level", level),
		attribute.Int("width", width),
	)
	return ctx, span
}

// StartItemSpan creates a span for one agent invocation
func StartItemSpan(ctx context.Context, itemID, capability string) (context.Context, trace.Span) {
	ctx, span := GetTracerProvider().Tracer(tracerName).Start(ctx, "scheduler.item")
	span.SetAttributes(
		attribute.String("item_id", itemID),
		attribute.String("capability", capability),
	)
	return ctx, span
}

// RecordSuccess marks a span as successful with optional result attributes
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records an error in a span and sets error status.
// A nil error is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(attribute.Bool("error", true))
}

// RecordDuration records the duration of an operation as a span attribute
func RecordDuration(span trace.Span, name string, duration time.Duration) {
	span.SetAttributes(attribute.Int64(name+"_ms", duration.Milliseconds()))
}
