package observability

import (
	"context"
	"log"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	outcomes       otelmetric.Int64Counter
	streamDuration otelmetric.Float64Histogram
}

type options struct {
	registerer     promclient.Registerer
	spanProcessors []sdktrace.SpanProcessor
	sampler        sdktrace.Sampler
	global         bool
}

type Option func(*options)

// WithRegisterer sends exported metrics to reg instead of the default registry.
func WithRegisterer(reg promclient.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithSpanProcessor attaches a span processor, such as an exporter or a
// recorder in tests.
func WithSpanProcessor(sp sdktrace.SpanProcessor) Option {
	return func(o *options) { o.spanProcessors = append(o.spanProcessors, sp) }
}

// WithSampleRatio samples root spans at ratio and follows the parent decision
// for child spans.
func WithSampleRatio(ratio float64) Option {
	return func(o *options) {
		o.sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

// WithoutGlobal keeps the providers out of the otel globals.
func WithoutGlobal() Option {
	return func(o *options) { o.global = false }
}

func New(serviceName string, opts ...Option) *Observability {
	cfg := options{global: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	var tpOpts []sdktrace.TracerProviderOption
	for _, sp := range cfg.spanProcessors {
		if sp != nil {
			tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(sp))
		}
	}
	if cfg.sampler != nil {
		tpOpts = append(tpOpts, sdktrace.WithSampler(cfg.sampler))
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)
	if cfg.global {
		otel.SetTracerProvider(tracerProvider)
	}

	o := &Observability{
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
	}

	var exporterOpts []prometheus.Option
	if cfg.registerer != nil {
		exporterOpts = append(exporterOpts, prometheus.WithRegisterer(cfg.registerer))
	}
	exporter, err := prometheus.New(exporterOpts...)
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	if cfg.global {
		otel.SetMeterProvider(provider)
	}

	meter := provider.Meter(serviceName)

	outcomes, _ := meter.Int64Counter(
		"chat.pipeline.outcomes",
		otelmetric.WithDescription("Chat pipeline outcomes"),
	)

	streamDuration, _ := meter.Float64Histogram(
		"chat.stream.duration",
		otelmetric.WithDescription("Streamed answer duration"),
		otelmetric.WithUnit("ms"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.outcomes = outcomes
	o.streamDuration = streamDuration
	return o
}

// StartSpan opens a span on the service tracer. The zero Observability
// falls back to the global tracer.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := o.tracer
	if tracer == nil {
		tracer = otel.Tracer("pawsense")
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) RecordOutcome(ctx context.Context, outcome string) {
	if o.outcomes != nil {
		o.outcomes.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) RecordStreamDuration(ctx context.Context, duration time.Duration, intent, state string) {
	if o.streamDuration != nil {
		o.streamDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("intent", intent),
			attribute.String("state", state),
		))
	}
}

func (o *Observability) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
