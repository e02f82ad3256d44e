// Package streamorchestrator drives one streamed generation per request,
// retrying rate-limited attempts from scratch with exponential backoff.
package streamorchestrator

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"pawsense/internal/chat/generator"
	referencecatalog "pawsense/internal/chat/reference-catalog"
	commonerrors "pawsense/internal/common/errors"
	"pawsense/internal/common/metrics"
	"pawsense/internal/common/observability"
	"pawsense/internal/models"
	"pawsense/pkg/lexicon"
)

var (
	ErrEmptyAnswer = errors.New("GENERATION_EMPTY_ANSWER")
	ErrCanceled    = errors.New("REQUEST_CANCELED")
)

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// EmitFunc forwards text to the caller. An error means the caller is gone.
type EmitFunc func(text string) error

type Config struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxJitter      time.Duration
	ReferenceCount int
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		MaxJitter:      500 * time.Millisecond,
		ReferenceCount: 4,
	}
}

// Deps are built once per process. Generator is nil when the backend could
// not be constructed, in which case InitErr says why.
type Deps struct {
	Generator     generator.Generator
	InitErr       error
	Catalog       *referencecatalog.Catalog
	Messages      lexicon.Messages
	Logger        Logger
	Observability *observability.Observability
}

type Option func(*Orchestrator)

func WithClock(c Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

func WithJitter(j JitterFunc) Option {
	return func(o *Orchestrator) { o.jitter = j }
}

type Orchestrator struct {
	config   Config
	gen      generator.Generator
	initErr  error
	catalog  *referencecatalog.Catalog
	messages lexicon.Messages
	logger   Logger
	obs      *observability.Observability
	clock    Clock
	jitter   JitterFunc
}

// Result describes how a stream ended.
type Result struct {
	State        State
	Attempts     int
	EmittedBytes int
	Delays       []time.Duration
	// Err is the last failure, if any. Failures already rendered in-band
	// are reported here and not returned from Stream.
	Err error
}

func New(config Config, deps Deps, opts ...Option) *Orchestrator {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	o := &Orchestrator{
		config:   config,
		gen:      deps.Generator,
		initErr:  deps.InitErr,
		catalog:  deps.Catalog,
		messages: deps.Messages,
		logger:   deps.Logger,
		obs:      deps.Observability,
		clock:    realClock{},
		jitter:   RandomJitter,
	}
	if o.logger == nil {
		o.logger = nopLogger{}
	}
	if o.obs == nil {
		o.obs = &observability.Observability{}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Ready fails fast when the backend cannot serve: a missing credential is a
// configuration error, any other construction failure means unavailable.
func (o *Orchestrator) Ready() error {
	if o.gen != nil {
		return nil
	}
	if o.initErr == nil || errors.Is(o.initErr, generator.ErrMissingAPIKey) {
		return commonerrors.NewConfigurationError("Generation API key not configured.", errString(o.initErr))
	}
	return commonerrors.NewServiceUnavailableError("AI Service not initialized.", o.initErr)
}

// Provider names the configured backend, or "none".
func (o *Orchestrator) Provider() string {
	if o.gen == nil {
		return "none"
	}
	return o.gen.Name()
}

// Stream runs the generation for turns and forwards every increment to emit.
// The returned error is non-nil only when nothing was emitted and the
// failure should be answered at the protocol level.
func (o *Orchestrator) Stream(ctx context.Context, intent models.Intent, turns []models.ConversationTurn, emit EmitFunc) (*Result, error) {
	res := &Result{State: StatePreparing}
	if err := o.Ready(); err != nil {
		res.State = StateFailed
		res.Err = err
		return res, err
	}

	start := time.Now()
	metrics.ChatStreamsActive.Inc()
	defer func() {
		metrics.ChatStreamsActive.Dec()
		elapsed := time.Since(start)
		metrics.ChatStreamDuration.WithLabelValues(string(intent), string(res.State)).Observe(elapsed.Seconds())
		o.obs.RecordStreamDuration(ctx, elapsed, string(intent), string(res.State))
	}()

	rs := &RetryState{MaxAttempts: o.config.MaxAttempts, BaseDelay: o.config.BaseDelay}

	for ; rs.Attempt < rs.MaxAttempts; rs.Attempt++ {
		res.State = StateStreaming
		res.Attempts = rs.Attempt + 1

		err := o.attempt(ctx, rs, turns, emit)
		res.EmittedBytes = rs.Emitted

		switch {
		case err == nil:
			if rs.Emitted == 0 {
				res.Err = ErrEmptyAnswer
				o.fail(res, rs, emit)
				return res, nil
			}
			o.complete(intent, res, rs, emit)
			return res, nil

		case isSinkError(err) || ctx.Err() != nil:
			res.State = StateFailed
			res.Err = errors.Join(ErrCanceled, err)
			o.logger.Info("stream canceled by caller", map[string]interface{}{
				"attempt": res.Attempts,
				"emitted": rs.Emitted,
			})
			return res, nil

		case generator.IsRateLimit(err):
			res.Err = err
			if !rs.HasAttemptsLeft() {
				return o.rateLimited(res, rs, emit)
			}
			delay := rs.Backoff(o.config.MaxJitter, o.jitter)
			res.Delays = append(res.Delays, delay)
			o.logger.Warn("generation rate limited, backing off", map[string]interface{}{
				"attempt":  res.Attempts,
				"delay_ms": delay.Milliseconds(),
				"error":    err,
			})
			select {
			case <-o.clock.After(delay):
			case <-ctx.Done():
				res.State = StateFailed
				res.Err = errors.Join(ErrCanceled, ctx.Err())
				return res, nil
			}

		default:
			res.Err = commonerrors.NewUpstreamError(o.gen.Name(), err).WithMetadata("attempt", res.Attempts)
			o.logger.Error("generation failed", map[string]interface{}{
				"attempt": res.Attempts,
				"error":   err,
			})
			o.fail(res, rs, emit)
			return res, nil
		}
	}

	// Unreachable with MaxAttempts >= 1.
	res.State = StateFailed
	return res, res.Err
}

func (o *Orchestrator) attempt(ctx context.Context, rs *RetryState, turns []models.ConversationTurn, emit EmitFunc) error {
	ctx, span := o.obs.StartSpan(ctx, "chat.generate.attempt",
		attribute.Int("attempt", rs.Attempt+1),
		attribute.String("provider", o.gen.Name()),
	)
	defer span.End()

	started := false
	err := o.gen.StreamChat(ctx, turns, func(text string) error {
		if text == "" {
			return nil
		}
		if !started && rs.Attempt > 0 && rs.Emitted > 0 {
			if err := o.forward(rs, emit, o.messages.RetrySeparator); err != nil {
				return err
			}
		}
		started = true
		return o.forward(rs, emit, text)
	})

	result := "success"
	switch {
	case err == nil:
	case isSinkError(err) || ctx.Err() != nil:
		result = "canceled"
	case generator.IsRateLimit(err):
		result = "rate_limited"
	default:
		result = "error"
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	metrics.ChatGenerationAttempts.WithLabelValues(o.gen.Name(), result).Inc()
	return err
}

func (o *Orchestrator) forward(rs *RetryState, emit EmitFunc, text string) error {
	if err := emit(text); err != nil {
		return &sinkError{err: err}
	}
	rs.Emitted += len(text)
	return nil
}

func (o *Orchestrator) complete(intent models.Intent, res *Result, rs *RetryState, emit EmitFunc) {
	res.State = StateCompleted
	if !intent.Sourced() || o.catalog == nil {
		return
	}
	refs := o.catalog.GetReferences(intent, o.config.ReferenceCount)
	if refs == "" {
		return
	}
	if err := o.forward(rs, emit, "\n\n"+refs); err != nil {
		res.Err = err
	}
	res.EmittedBytes = rs.Emitted
}

// rateLimited ends an exhausted retry loop. Before any output the caller can
// still answer 429; afterwards the overload notice goes in-band.
func (o *Orchestrator) rateLimited(res *Result, rs *RetryState, emit EmitFunc) (*Result, error) {
	res.State = StateRateLimited
	o.logger.Warn("generation rate limited, retries exhausted", map[string]interface{}{
		"attempts": res.Attempts,
		"emitted":  rs.Emitted,
	})
	if rs.Emitted == 0 {
		return res, commonerrors.NewRateLimitError(o.messages.RateLimited, res.Attempts)
	}
	_ = o.forward(rs, emit, "\n\n"+o.messages.RateLimited)
	res.EmittedBytes = rs.Emitted
	return res, nil
}

func (o *Orchestrator) fail(res *Result, rs *RetryState, emit EmitFunc) {
	res.State = StateFailed
	msg := o.messages.SystemError
	if rs.Emitted > 0 {
		msg = "\n\n" + msg
	}
	_ = o.forward(rs, emit, msg)
	res.EmittedBytes = rs.Emitted
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

type sinkError struct {
	err error
}

func (e *sinkError) Error() string { return "emit: " + e.err.Error() }

func (e *sinkError) Unwrap() error { return e.err }

func isSinkError(err error) bool {
	var se *sinkError
	return errors.As(err, &se)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
