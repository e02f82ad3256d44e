package generator

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pawsense/internal/models"
)

var testTurns = []models.ConversationTurn{
	{Role: models.TurnUser, Text: "instrucciones"},
	{Role: models.TurnModel, Text: "Entendido."},
	{Role: models.TurnUser, Text: "¿Cuánto pasea un beagle?"},
}

func collect() (*[]string, ChunkFunc) {
	var chunks []string
	return &chunks, func(text string) error {
		chunks = append(chunks, text)
		return nil
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantErr  error
	}{
		{"default provider is gemini", Config{APIKey: "k"}, ProviderGemini, nil},
		{"openai", Config{Provider: ProviderOpenAI, APIKey: "k"}, ProviderOpenAI, nil},
		{"anthropic", Config{Provider: ProviderAnthropic, APIKey: "k"}, ProviderAnthropic, nil},
		{"ollama needs no key", Config{Provider: ProviderOllama}, ProviderOllama, nil},
		{"missing key", Config{Provider: ProviderGemini}, "", ErrMissingAPIKey},
		{"unknown provider", Config{Provider: "palm", APIKey: "k"}, "", ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen, err := New(tt.cfg)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.Nil(t, gen)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, gen.Name())
		})
	}
}

func TestNew_InvalidOllamaURL(t *testing.T) {
	gen, err := New(Config{Provider: ProviderOllama, BaseURL: "http://[::1"})
	assert.Error(t, err)
	assert.True(t, gen == nil, "failed construction must yield a nil interface")
}

func TestRequiresAPIKey(t *testing.T) {
	assert.True(t, RequiresAPIKey(ProviderGemini))
	assert.True(t, RequiresAPIKey(ProviderOpenAI))
	assert.True(t, RequiresAPIKey(ProviderAnthropic))
	assert.False(t, RequiresAPIKey(ProviderOllama))
}

func TestNewStreamingHTTPClient_HasNoOverallTimeout(t *testing.T) {
	c := newStreamingHTTPClient(0)

	assert.Zero(t, c.Timeout)
	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Greater(t, tr.ResponseHeaderTimeout.Seconds(), 0.0)
}
