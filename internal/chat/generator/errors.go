package generator

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// StatusError is a non-success answer from a REST backend.
type StatusError struct {
	Provider   string
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("%s: HTTP %d %s: %s", e.Provider, e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}

var rateLimitIndicators = []string{"429", "resource_exhausted", "too many requests", "quota"}

// IsRateLimit reports whether err means the backend is throttling us. Typed
// status codes are checked first, then the message is scanned for the
// usual throttling wording.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if code := StatusCode(err); code == http.StatusTooManyRequests {
		return true
	}

	var se *StatusError
	if errors.As(err, &se) && strings.EqualFold(se.Status, "RESOURCE_EXHAUSTED") {
		return true
	}

	// Anthropic answers 529 when the platform as a whole is saturated.
	var ae *anthropic.Error
	if errors.As(err, &ae) && ae.StatusCode == 529 {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, indicator := range rateLimitIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// StatusCode extracts the HTTP status carried by a backend error, or 0.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	var oe *openai.Error
	if errors.As(err, &oe) {
		return oe.StatusCode
	}
	var ae *anthropic.Error
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	var le api.StatusError
	if errors.As(err, &le) {
		return le.StatusCode
	}
	return 0
}
