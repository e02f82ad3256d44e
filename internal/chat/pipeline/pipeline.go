// Package pipeline wires the answering stages together: domain gate,
// intent classification, emergency triage, prompt building and the
// streamed generation.
package pipeline

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	domaingate "pawsense/internal/chat/domain-gate"
	emergencydetector "pawsense/internal/chat/emergency-detector"
	intentclassifier "pawsense/internal/chat/intent-classifier"
	promptbuilder "pawsense/internal/chat/prompt-builder"
	referencecatalog "pawsense/internal/chat/reference-catalog"
	streamorchestrator "pawsense/internal/chat/stream-orchestrator"
	commonerrors "pawsense/internal/common/errors"
	"pawsense/internal/common/logger"
	"pawsense/internal/common/metrics"
	"pawsense/internal/common/observability"
	"pawsense/internal/models"
	"pawsense/pkg/lexicon"
)

const questionLogLimit = 50

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

type Kind string

const (
	KindRejected    Kind = "rejected"
	KindOutOfDomain Kind = "out_of_domain"
	KindEmergency   Kind = "emergency"
	KindGenerated   Kind = "generated"
)

// Outcome summarizes one answered request.
type Outcome struct {
	Kind   Kind
	Intent models.Intent
	// Stream is set only for generated answers.
	Stream *streamorchestrator.Result
}

// Label is the outcome name used for metrics.
func (o *Outcome) Label() string {
	if o.Kind == KindGenerated && o.Stream != nil {
		return string(o.Stream.State)
	}
	return string(o.Kind)
}

type Config struct {
	EmergencyReferenceCount int
	Prompt                  *promptbuilder.Config
}

type Pipeline struct {
	config       Config
	gate         *domaingate.Gate
	classifier   *intentclassifier.Classifier
	detector     *emergencydetector.Detector
	builder      *promptbuilder.Builder
	catalog      *referencecatalog.Catalog
	orchestrator *streamorchestrator.Orchestrator
	messages     lexicon.Messages
	logger       Logger
	obs          *observability.Observability
}

func New(config Config, lex *lexicon.Lexicon, orchestrator *streamorchestrator.Orchestrator, log Logger, obs *observability.Observability) *Pipeline {
	if config.EmergencyReferenceCount <= 0 {
		config.EmergencyReferenceCount = 3
	}
	if obs == nil {
		obs = &observability.Observability{}
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Pipeline{
		config:       config,
		gate:         domaingate.New(lex),
		classifier:   intentclassifier.New(lex),
		detector:     emergencydetector.New(lex),
		builder:      promptbuilder.New(config.Prompt, lex),
		catalog:      referencecatalog.New(lex),
		orchestrator: orchestrator,
		messages:     lex.Messages,
		logger:       log,
		obs:          obs,
	}
}

// Validate runs the checks that must fail before any output is written:
// backend readiness first, then the question itself.
func (p *Pipeline) Validate(req models.ChatRequest) error {
	if err := p.orchestrator.Ready(); err != nil {
		return err
	}
	if req.Normalized().Question == "" {
		return commonerrors.NewValidationError("Question cannot be empty.", "question")
	}
	return nil
}

// Answer streams the reply for req through emit. A non-nil error means
// nothing was emitted and the caller should answer with a protocol error.
func (p *Pipeline) Answer(ctx context.Context, req models.ChatRequest, emit streamorchestrator.EmitFunc) (*Outcome, error) {
	req = req.Normalized()
	outcome := &Outcome{Kind: KindRejected}
	defer func() {
		metrics.ChatRequests.WithLabelValues(outcome.Label()).Inc()
		p.obs.RecordOutcome(ctx, outcome.Label())
	}()

	if err := p.Validate(req); err != nil {
		return outcome, err
	}

	ctx, span := p.obs.StartSpan(ctx, "chat.ask")
	defer span.End()

	fields := map[string]interface{}{
		"question": logger.Truncate(req.Question, questionLogLimit),
		"history":  len(req.History),
	}

	if !p.gate.IsInDomain(req.Question, req.Context) {
		outcome.Kind = KindOutOfDomain
		span.SetAttributes(attribute.String("chat.outcome", string(outcome.Kind)))
		p.logger.Info("question outside dog domain", fields)
		p.write(emit, p.messages.OutOfDomain)
		return outcome, nil
	}

	outcome.Intent = p.classifier.DetectIntent(req.Question, req.Context)
	fields["intent"] = string(outcome.Intent)
	span.SetAttributes(attribute.String("chat.intent", string(outcome.Intent)))

	if p.detector.IsEmergency(req.Question, req.Context) {
		outcome.Kind = KindEmergency
		span.SetAttributes(attribute.String("chat.outcome", string(outcome.Kind)))
		fields["term"] = p.detector.Match(req.Question, req.Context)
		p.logger.Warn("emergency detected, skipping generation", fields)
		p.write(emit, p.emergencyMessage())
		return outcome, nil
	}

	p.logger.Info("answering question", fields)

	outcome.Kind = KindGenerated
	turns := p.builder.BuildConversation(outcome.Intent, req)
	res, err := p.orchestrator.Stream(ctx, outcome.Intent, turns, emit)
	outcome.Stream = res
	span.SetAttributes(
		attribute.String("chat.outcome", string(res.State)),
		attribute.Int("chat.attempts", res.Attempts),
	)
	if err != nil {
		return outcome, err
	}
	if res.Err != nil {
		fields["state"] = string(res.State)
		fields["attempts"] = res.Attempts
		fields["error"] = res.Err
		if se := commonerrors.AsStandardError(res.Err); se.Code != commonerrors.ErrCodeInternal {
			fields["errorCode"] = string(se.Code)
			fields["retryable"] = commonerrors.IsRetryableErrorCode(se.Code)
		}
		p.logger.Warn("answer ended with in-band failure", fields)
	}
	return outcome, nil
}

func (p *Pipeline) emergencyMessage() string {
	msg := p.messages.Emergency
	if refs := p.catalog.GetReferences(models.IntentMedical, p.config.EmergencyReferenceCount); refs != "" {
		msg += "\n\n" + refs
	}
	return msg
}

func (p *Pipeline) write(emit streamorchestrator.EmitFunc, text string) {
	if err := emit(text); err != nil {
		p.logger.Info("client went away before canned reply", map[string]interface{}{"error": err})
	}
}
