package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_HTTPStatus(t *testing.T) {
	tests := []struct {
		err  *StandardError
		want int
	}{
		{NewValidationError("Question cannot be empty.", ""), http.StatusBadRequest},
		{NewConfigurationError("Google API Key not configured.", ""), http.StatusInternalServerError},
		{NewServiceUnavailableError("AI Service not initialized.", errors.New("dial")), http.StatusServiceUnavailable},
		{NewRateLimitError("saturado", 3), http.StatusTooManyRequests},
		{NewUpstreamError("thedogapi", errors.New("503")), http.StatusBadGateway},
		{NewBreedLookupFailedError(errors.New("timeout")), http.StatusBadGateway},
		{NewInternalError(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.HTTPStatus())
		})
	}
}

func TestAsStandardError(t *testing.T) {
	assert.Nil(t, AsStandardError(nil))

	orig := NewValidationError("bad", "")
	wrapped := fmt.Errorf("handler: %w", orig)
	assert.Same(t, orig, AsStandardError(wrapped))

	plain := AsStandardError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestNewRateLimitError(t *testing.T) {
	err := NewRateLimitError("saturado", 3).WithMetadata("provider", "gemini")

	assert.Equal(t, "StandardError[RATE_LIMITED]: saturado", err.Error())
	assert.Equal(t, 3, err.Metadata["attempts"])
	assert.Equal(t, "gemini", err.Metadata["provider"])
	assert.True(t, err.Retryable)
}

func TestErrorCategories(t *testing.T) {
	assert.Equal(t, "CONFIGURATION", GetErrorCategory(ErrCodeConfiguration))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidation))
	assert.Equal(t, "CAPACITY", GetErrorCategory(ErrCodeRateLimited))
	assert.Equal(t, "CAPACITY", GetErrorCategory(ErrCodeServiceUnavailable))
	assert.Equal(t, "UPSTREAM", GetErrorCategory(ErrCodeBreedLookupFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))

	assert.True(t, IsRetryableErrorCode(ErrCodeRateLimited))
	assert.False(t, IsRetryableErrorCode(ErrCodeValidation))
}

func TestNewUpstreamError_KeepsCause(t *testing.T) {
	cause := errors.New("stream reset")
	err := NewUpstreamError("gemini", cause).WithMetadata("attempt", 2)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "stream reset", err.Details)
	assert.Equal(t, 2, err.Metadata["attempt"])
	assert.True(t, IsRetryableErrorCode(err.Code))

	var target *StandardError
	require.ErrorAs(t, fmt.Errorf("answer: %w", err), &target)
	assert.Equal(t, ErrCodeUpstream, target.Code)
}

type recordingLogger struct {
	errors []string
	warns  []string
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Warn(msg string, fields map[string]interface{}) {
	l.warns = append(l.warns, msg)
}

func TestErrorHandler_Respond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
		wantDetail string
		wantErrLog bool
	}{
		{"validation", NewValidationError("Question cannot be empty.", ""), 400, ErrCodeValidation, "Question cannot be empty.", false},
		{"rate limited", NewRateLimitError("saturado", 3), 429, ErrCodeRateLimited, "saturado", false},
		{"config", NewConfigurationError("Google API Key not configured.", ""), 500, ErrCodeConfiguration, "Google API Key not configured.", true},
		{"unknown", errors.New("boom"), 500, ErrCodeInternal, "Unexpected error", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			h := NewErrorHandler(log)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/chat/ask", nil)

			h.Respond(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.True(t, c.IsAborted())
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantDetail, body.Detail)
			assert.Equal(t, tt.wantErrLog, len(log.errors) == 1)
			assert.Equal(t, !tt.wantErrLog, len(log.warns) == 1)
		})
	}
}
