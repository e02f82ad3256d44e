package observability

import (
	"context"
	"fmt"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
}

// LogSpanExporter writes every finished span as one structured log line.
type LogSpanExporter struct {
	logger Logger
}

func NewLogSpanExporter(log Logger) *LogSpanExporter {
	return &LogSpanExporter{logger: log}
}

func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		fields := map[string]interface{}{
			"span":        s.Name(),
			"traceId":     s.SpanContext().TraceID().String(),
			"spanId":      s.SpanContext().SpanID().String(),
			"duration_ms": s.EndTime().Sub(s.StartTime()).Milliseconds(),
			"status":      s.Status().Code.String(),
		}
		if s.Parent().IsValid() {
			fields["parentSpanId"] = s.Parent().SpanID().String()
		}
		if s.Status().Description != "" {
			fields["statusDescription"] = s.Status().Description
		}
		for _, kv := range s.Attributes() {
			fields[string(kv.Key)] = kv.Value.AsInterface()
		}
		e.logger.Info("span finished", fields)
	}
	return nil
}

func (e *LogSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// SpanProcessorFor builds the processor for a configured exporter name.
// "none" and "" return a nil processor.
func SpanProcessorFor(exporter string, log Logger) (sdktrace.SpanProcessor, error) {
	switch exporter {
	case "", "none":
		return nil, nil
	case "log":
		return sdktrace.NewBatchSpanProcessor(NewLogSpanExporter(log)), nil
	default:
		return nil, fmt.Errorf("unsupported trace exporter %q", exporter)
	}
}
