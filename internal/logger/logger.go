// Package logger is the structured logger of the advisor. Every helper takes the context first
// so run ids and OpenTelemetry span ids follow a batch through its collaborators.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "stock-advisor"

var (
	globalLogger    = slog.Default()
	detailedLogging bool
	tracingEnabled  bool
	tracer          trace.Tracer
	tracerProvider  *sdktrace.TracerProvider
)

// settings are read from LOG_LEVEL, LOG_FORMAT, LOG_DETAILED and LOG_TRACING_ENABLED.
type settings struct {
	level    slog.Level
	json     bool
	detailed bool
	tracing  bool
}

func settingsFromEnv() settings {
	return settings{
		level:    parseLogLevel(os.Getenv("LOG_LEVEL")),
		json:     !strings.EqualFold(os.Getenv("LOG_FORMAT"), "text"),
		detailed: os.Getenv("LOG_DETAILED") == "true",
		tracing:  os.Getenv("LOG_TRACING_ENABLED") == "true",
	}
}

// Init configures the global logger from the environment. Logs go to stderr so the
// tables printed on stdout stay readable.
func Init() error {
	return setup(settingsFromEnv(), os.Stderr)
}

func setup(s settings, w io.Writer) error {
	detailedLogging = s.detailed
	tracingEnabled = s.tracing

	// source is added by logWithTrace so wrappers report their caller
	opts := &slog.HandlerOptions{Level: s.level}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if s.json {
		handler = slog.NewJSONHandler(w, opts)
	}
	globalLogger = slog.New(handler)
	slog.SetDefault(globalLogger)

	if tracingEnabled {
		if err := initTracer(); err != nil {
			globalLogger.Warn("Tracing disabled", "error", err)
			tracingEnabled = false
		}
	}
	return nil
}

func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return err
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return err
	}
	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = otel.Tracer(serviceName)
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	if tracerProvider == nil {
		return nil
	}
	return tracerProvider.Shutdown(ctx)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type runIDKey struct{}

// WithRunID tags every log line written with the returned context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, runID)
}

// RunID returns the run id stored by WithRunID, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func Debug(ctx context.Context, msg string, args ...any) {
	if detailedLogging {
		logWithTrace(ctx, slog.LevelDebug, msg, 2, args...)
	}
}

func Info(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, 2, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelWarn, msg, 2, args...)
}

func Error(ctx context.Context, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelError, msg, 2, args...)
}

// ErrorWithErr logs err and marks the active span as failed.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	logWithTrace(ctx, slog.LevelError, msg, 2, append([]any{"error", err}, args...)...)
}

// InfoSkip logs on behalf of a caller further up the stack.
// Wrappers pass skip=1 for each layer between them and the real caller.
func InfoSkip(ctx context.Context, skip int, msg string, args ...any) {
	logWithTrace(ctx, slog.LevelInfo, msg, 2+skip, args...)
}

func DebugSkip(ctx context.Context, skip int, msg string, args ...any) {
	if detailedLogging {
		logWithTrace(ctx, slog.LevelDebug, msg, 2+skip, args...)
	}
}

func ErrorWithErrSkip(ctx context.Context, skip int, msg string, err error, args ...any) {
	recordSpanError(ctx, err)
	logWithTrace(ctx, slog.LevelError, msg, 2+skip, append([]any{"error", err}, args...)...)
}

// Decision logs the final action of one symbol in a run.
func Decision(ctx context.Context, symbol, action string, confidence float64, reason string, fields ...any) {
	spanEvent(ctx, "trading_decision",
		attribute.String("symbol", symbol),
		attribute.String("action", action),
		attribute.Float64("confidence", confidence),
		attribute.String("reason", reason),
	)
	head := []any{"type", "DECISION", "symbol", symbol, "action", action, "confidence", confidence, "reason", reason}
	logWithTrace(ctx, slog.LevelInfo, "Trading decision made", 2, append(head, fields...)...)
}

// Ledger logs a position lifecycle event (opened, closed).
func Ledger(ctx context.Context, symbol, event string, fields ...any) {
	spanEvent(ctx, "ledger_event", attribute.String("symbol", symbol), attribute.String("event", event))
	head := []any{"type", "LEDGER", "symbol", symbol, "event", event}
	logWithTrace(ctx, slog.LevelInfo, "Ledger event", 2, append(head, fields...)...)
}

// logWithTrace prefixes the run id and span ids and, with detailed logging, the caller found
// skip frames up.
func logWithTrace(ctx context.Context, level slog.Level, msg string, skip int, args ...any) {
	if sc := trace.SpanFromContext(ctx).SpanContext(); tracingEnabled && sc.IsValid() {
		args = append([]any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}, args...)
	}
	if id := RunID(ctx); id != "" {
		args = append([]any{"run_id", id}, args...)
	}
	if detailedLogging {
		if pc, file, line, ok := runtime.Caller(skip); ok {
			if fn := runtime.FuncForPC(pc); fn != nil {
				args = append(args, "source", slog.GroupValue(
					slog.String("function", fn.Name()),
					slog.String("file", file),
					slog.Int("line", line),
				))
			}
		}
	}
	globalLogger.Log(ctx, level, msg, args...)
}

func activeSpan(ctx context.Context) (trace.Span, bool) {
	if !tracingEnabled {
		return nil, false
	}
	span := trace.SpanFromContext(ctx)
	return span, span.SpanContext().IsValid()
}

func recordSpanError(ctx context.Context, err error) {
	if span, ok := activeSpan(ctx); ok {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

func spanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	if span, ok := activeSpan(ctx); ok {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// spanAttrs converts key/value pairs to span attributes; unsupported values are dropped.
func spanAttrs(fields []any) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		switch v := fields[i+1].(type) {
		case string:
			attrs = append(attrs, attribute.String(key, v))
		case int:
			attrs = append(attrs, attribute.Int(key, v))
		case int64:
			attrs = append(attrs, attribute.Int64(key, v))
		case float64:
			attrs = append(attrs, attribute.Float64(key, v))
		case bool:
			attrs = append(attrs, attribute.Bool(key, v))
		}
	}
	return attrs
}

// OperationTimer spans and times one collaborator call.
type OperationTimer struct {
	ctx    context.Context
	span   trace.Span
	start  time.Time
	fields []any
}

func StartOperation(ctx context.Context, operation string, fields ...any) *OperationTimer {
	var span trace.Span
	if tracingEnabled && tracer != nil {
		ctx, span = tracer.Start(ctx, operation, trace.WithAttributes(spanAttrs(fields)...))
	}
	Debug(ctx, "Operation started", append([]any{"operation", operation}, fields...)...)
	return &OperationTimer{ctx: ctx, span: span, start: time.Now(), fields: fields}
}

func (ot *OperationTimer) End(additionalFields ...any) {
	elapsed := time.Since(ot.start).Milliseconds()
	if ot.span != nil {
		ot.span.SetAttributes(attribute.Int64("duration_ms", elapsed))
		ot.span.SetAttributes(spanAttrs(additionalFields)...)
		ot.span.SetStatus(codes.Ok, "completed")
		ot.span.End()
	}
	Debug(ot.ctx, "Operation completed", ot.withFields(elapsed, additionalFields)...)
}

func (ot *OperationTimer) EndWithError(err error, additionalFields ...any) {
	elapsed := time.Since(ot.start).Milliseconds()
	if ot.span != nil {
		ot.span.SetAttributes(attribute.Int64("duration_ms", elapsed))
		ot.span.RecordError(err)
		ot.span.SetStatus(codes.Error, err.Error())
		ot.span.End()
	}
	Error(ot.ctx, "Operation failed", ot.withFields(elapsed, append([]any{"error", err}, additionalFields...))...)
}

func (ot *OperationTimer) withFields(elapsedMS int64, extra []any) []any {
	out := make([]any, 0, len(ot.fields)+2+len(extra))
	out = append(out, ot.fields...)
	out = append(out, "duration_ms", elapsedMS)
	return append(out, extra...)
}

// GetContext returns the context carrying the operation span.
func (ot *OperationTimer) GetContext() context.Context {
	return ot.ctx
}
