package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiChunk(text string) string {
	return fmt.Sprintf(`data: {"candidates":[{"content":{"role":"model","parts":[{"text":%q}]}}]}`+"\n\n", text)
}

func TestGeminiGenerator_StreamChat(t *testing.T) {
	var gotBody geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-test:streamGenerateContent", r.URL.Path)
		assert.Equal(t, "sse", r.URL.Query().Get("alt"))
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, geminiChunk("Un beagle "))
		fmt.Fprint(w, ": keep-alive\n\n")
		fmt.Fprint(w, geminiChunk("necesita una hora."))
		fmt.Fprint(w, `data: {"candidates":[{"content":{"parts":[]},"finishReason":"STOP"}]}`+"\n\n")
	}))
	defer server.Close()

	gen, err := NewGeminiGenerator(server.URL, "secret", "gemini-test", server.Client())
	require.NoError(t, err)

	chunks, onChunk := collect()
	err = gen.StreamChat(context.Background(), testTurns, onChunk)

	require.NoError(t, err)
	assert.Equal(t, []string{"Un beagle ", "necesita una hora."}, *chunks)
	require.Len(t, gotBody.Contents, 3)
	assert.Equal(t, "user", gotBody.Contents[0].Role)
	assert.Equal(t, "model", gotBody.Contents[1].Role)
	assert.Equal(t, "¿Cuánto pasea un beagle?", gotBody.Contents[2].Parts[0].Text)
}

func TestGeminiGenerator_Errors(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		body          string
		wantRateLimit bool
		wantStatus    string
	}{
		{
			name:          "quota exhausted",
			status:        http.StatusTooManyRequests,
			body:          `{"error":{"code":429,"message":"Resource has been exhausted (e.g. check quota).","status":"RESOURCE_EXHAUSTED"}}`,
			wantRateLimit: true,
			wantStatus:    "RESOURCE_EXHAUSTED",
		},
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       `{"error":{"code":500,"message":"Internal error encountered.","status":"INTERNAL"}}`,
			wantStatus: "INTERNAL",
		},
		{
			name:   "non json body",
			status: http.StatusBadGateway,
			body:   "upstream unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			gen, err := NewGeminiGenerator(server.URL, "secret", "gemini-test", server.Client())
			require.NoError(t, err)

			chunks, onChunk := collect()
			err = gen.StreamChat(context.Background(), testTurns, onChunk)

			require.Error(t, err)
			assert.Empty(t, *chunks)
			assert.Equal(t, tt.wantRateLimit, IsRateLimit(err))

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.wantStatus, se.Status)
		})
	}
}

func TestGeminiGenerator_InStreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiChunk("Hola"))
		fmt.Fprint(w, `data: {"error":{"code":429,"message":"Too many requests","status":"RESOURCE_EXHAUSTED"}}`+"\n\n")
	}))
	defer server.Close()

	gen, err := NewGeminiGenerator(server.URL, "secret", "", server.Client())
	require.NoError(t, err)

	chunks, onChunk := collect()
	err = gen.StreamChat(context.Background(), testTurns, onChunk)

	assert.True(t, IsRateLimit(err))
	assert.Equal(t, []string{"Hola"}, *chunks)
}

func TestGeminiGenerator_MalformedChunk(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: {not json\n\n")
	}))
	defer server.Close()

	gen, err := NewGeminiGenerator(server.URL, "secret", "", server.Client())
	require.NoError(t, err)

	err = gen.StreamChat(context.Background(), testTurns, func(string) error { return nil })
	assert.True(t, errors.Is(err, ErrMalformedStream))
	assert.False(t, IsRateLimit(err))
}

func TestGeminiGenerator_CallbackErrorStopsStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiChunk("uno"))
		fmt.Fprint(w, geminiChunk("dos"))
	}))
	defer server.Close()

	gen, err := NewGeminiGenerator(server.URL, "secret", "", server.Client())
	require.NoError(t, err)

	errGone := errors.New("client gone")
	calls := 0
	err = gen.StreamChat(context.Background(), testTurns, func(string) error {
		calls++
		return errGone
	})

	assert.True(t, errors.Is(err, errGone))
	assert.Equal(t, 1, calls)
}

func TestGeminiGenerator_CanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiChunk("never"))
	}))
	defer server.Close()

	gen, err := NewGeminiGenerator(server.URL, "secret", "", server.Client())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunks, onChunk := collect()
	err = gen.StreamChat(ctx, testTurns, onChunk)

	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, *chunks)
}

func TestNewGeminiGenerator_RequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator("", "  ", "", nil)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}
