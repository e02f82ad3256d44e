package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
)

func TestIsRateLimit(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"typed 429", &StatusError{Provider: "gemini", StatusCode: 429}, true},
		{"resource exhausted status", &StatusError{Provider: "gemini", StatusCode: 400, Status: "RESOURCE_EXHAUSTED"}, true},
		{"wrapped typed 429", fmt.Errorf("attempt 1: %w", &StatusError{StatusCode: 429}), true},
		{"ollama status error", fmt.Errorf("ollama stream: %w", api.StatusError{StatusCode: 429, ErrorMessage: "busy"}), true},
		{"quota wording", errors.New("Quota exceeded for metric generate_content_requests"), true},
		{"too many requests wording", errors.New("Too Many Requests"), true},
		{"server error", &StatusError{Provider: "gemini", StatusCode: 500, Status: "INTERNAL", Message: "boom"}, false},
		{"bad request", &StatusError{Provider: "gemini", StatusCode: 400, Status: "INVALID_ARGUMENT", Message: "bad turn"}, false},
		{"cancellation", context.Canceled, false},
		{"plain error", errors.New("connection reset by peer"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRateLimit(tt.err))
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 503, StatusCode(fmt.Errorf("x: %w", &StatusError{StatusCode: 503})))
	assert.Equal(t, 404, StatusCode(api.StatusError{StatusCode: 404}))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
}

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{Provider: "gemini", StatusCode: 429, Status: "RESOURCE_EXHAUSTED", Message: "slow down"}
	assert.Equal(t, "gemini: HTTP 429 RESOURCE_EXHAUSTED: slow down", err.Error())

	err = &StatusError{Provider: "gemini", StatusCode: 502, Message: "bad gateway"}
	assert.Equal(t, "gemini: HTTP 502: bad gateway", err.Error())
}
