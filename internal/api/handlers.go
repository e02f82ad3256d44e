package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pawsense/internal/chat/pipeline"
	streamorchestrator "pawsense/internal/chat/stream-orchestrator"
	commonerrors "pawsense/internal/common/errors"
	"pawsense/internal/common/validation"
	"pawsense/internal/models"
)

const maxBodyBytes = 1 << 20

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Answerer streams a reply for a chat request.
type Answerer interface {
	Answer(ctx context.Context, req models.ChatRequest, emit streamorchestrator.EmitFunc) (*pipeline.Outcome, error)
}

type BreedLookup interface {
	Lookup(ctx context.Context, name string) (*models.DogInfo, error)
}

// ReadinessCheck returns nil when the named dependency is usable.
type ReadinessCheck func(ctx context.Context) error

type ChatHandler struct {
	answerer Answerer
	breeds   BreedLookup
	errors   *commonerrors.ErrorHandler
	logger   Logger
}

func NewChatHandler(answerer Answerer, breeds BreedLookup, log Logger) *ChatHandler {
	return &ChatHandler{
		answerer: answerer,
		breeds:   breeds,
		errors:   commonerrors.NewErrorHandler(log),
		logger:   log,
	}
}

// Ask handles POST /chat/ask.
func (h *ChatHandler) Ask(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		h.errors.Respond(c, commonerrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	if result := validation.ChatRequest().ValidateJSON(body); !result.Valid {
		h.errors.Respond(c, bodyError(result))
		return
	}

	var req models.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.errors.Respond(c, commonerrors.NewValidationError("Invalid request body", err.Error()))
		return
	}

	w := newStreamWriter(c)
	outcome, err := h.answerer.Answer(c.Request.Context(), req, w.Write)
	if err != nil {
		if !w.Committed() {
			h.errors.Respond(c, err)
			return
		}
		h.logger.Error("answer failed after stream start", map[string]interface{}{"error": err})
		return
	}

	if !w.Committed() {
		// Every successful path writes text; an empty 200 would look like
		// a truncated reply.
		h.errors.Respond(c, commonerrors.NewInternalError(nil))
		return
	}

	if outcome != nil {
		c.Set(chatOutcomeKey, outcome.Label())
	}
}

func bodyError(result *validation.ValidationResult) *commonerrors.StandardError {
	message := "Invalid request body"
	if result.HasErrors("body") {
		message = "Request body must be a JSON object with a question"
	}
	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	return commonerrors.NewValidationError(message, strings.Join(result.GetErrorMessages(), "; ")).
		WithMetadata("fields", fields)
}

// Info handles GET /chat/info?breed_name=.
func (h *ChatHandler) Info(c *gin.Context) {
	name := strings.TrimSpace(c.Query("breed_name"))
	if name == "" {
		h.errors.Respond(c, commonerrors.NewValidationError("breed_name is required", "breed_name"))
		return
	}

	info, err := h.breeds.Lookup(c.Request.Context(), name)
	if err != nil {
		h.errors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

type HealthHandler struct {
	service string
	version string
	checks  map[string]ReadinessCheck
}

func NewHealthHandler(service, version string, checks map[string]ReadinessCheck) *HealthHandler {
	return &HealthHandler{service: service, version: version, checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
		"version": h.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	c.JSON(status, gin.H{
		"status": state,
		"checks": results,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
