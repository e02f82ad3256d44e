// Package generator streams answers from a remote language model. Each
// backend forwards text increments through a callback as they arrive and
// leaves retrying to the caller.
package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"pawsense/internal/models"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
)

var (
	ErrMissingAPIKey   = errors.New("GENERATION_API_KEY_MISSING")
	ErrUnknownProvider = errors.New("GENERATION_PROVIDER_UNKNOWN")
	ErrMalformedStream = errors.New("GENERATION_STREAM_MALFORMED")
)

// ChunkFunc receives each text increment. Returning an error aborts the
// stream and the error is handed back to the caller of StreamChat.
type ChunkFunc func(text string) error

type Generator interface {
	// StreamChat sends turns, whose last entry is the question, and calls
	// onChunk for every text increment until the answer is complete.
	StreamChat(ctx context.Context, turns []models.ConversationTurn, onChunk ChunkFunc) error
	Name() string
}

type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	// HeaderTimeout bounds the wait for response headers. The body of a
	// stream is not bounded.
	HeaderTimeout time.Duration
	HTTPClient    *http.Client
}

// RequiresAPIKey reports whether provider authenticates with an API key.
func RequiresAPIKey(provider string) bool {
	return provider != ProviderOllama
}

// New builds the backend selected by cfg.Provider. An empty provider means
// Gemini.
func New(cfg Config) (Generator, error) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}
	if RequiresAPIKey(cfg.Provider) && cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: provider %s", ErrMissingAPIKey, cfg.Provider)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = newStreamingHTTPClient(cfg.HeaderTimeout)
	}

	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case ProviderGemini:
		gen, err = asGenerator(NewGeminiGenerator(cfg.BaseURL, cfg.APIKey, cfg.Model, httpClient))
	case ProviderOpenAI:
		gen, err = asGenerator(NewOpenAIGenerator(cfg.BaseURL, cfg.APIKey, cfg.Model, httpClient))
	case ProviderAnthropic:
		gen, err = asGenerator(NewAnthropicGenerator(cfg.BaseURL, cfg.APIKey, cfg.Model, cfg.MaxTokens, httpClient))
	case ProviderOllama:
		gen, err = asGenerator(NewOllamaGenerator(cfg.BaseURL, cfg.Model, httpClient))
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return gen, nil
}

// asGenerator drops the concrete pointer on error so callers never see a
// non-nil interface holding a nil backend.
func asGenerator[T Generator](g T, err error) (Generator, error) {
	if err != nil {
		return nil, err
	}
	return g, nil
}

func newStreamingHTTPClient(headerTimeout time.Duration) *http.Client {
	if headerTimeout <= 0 {
		headerTimeout = 30 * time.Second
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = headerTimeout
	return &http.Client{Transport: transport}
}
