package generator

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"

	"pawsense/internal/models"
)

// OllamaGenerator targets a self-hosted Ollama server. It needs no API key.
type OllamaGenerator struct {
	client *api.Client
	model  string
}

func NewOllamaGenerator(baseURL, model string, httpClient *http.Client) (*OllamaGenerator, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:latest"
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OllamaGenerator{
		client: api.NewClient(parsedURL, httpClient),
		model:  model,
	}, nil
}

func (g *OllamaGenerator) Name() string { return ProviderOllama }

func (g *OllamaGenerator) StreamChat(ctx context.Context, turns []models.ConversationTurn, onChunk ChunkFunc) error {
	messages := make([]api.Message, 0, len(turns))
	for _, t := range turns {
		role := "user"
		if t.Role == models.TurnModel {
			role = "assistant"
		}
		messages = append(messages, api.Message{Role: role, Content: t.Text})
	}

	stream := true
	req := &api.ChatRequest{
		Model:    g.model,
		Messages: messages,
		Stream:   &stream,
	}

	err := g.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if resp.Message.Content == "" {
			return nil
		}
		return onChunk(resp.Message.Content)
	})
	if err != nil {
		return fmt.Errorf("ollama stream: %w", err)
	}
	return nil
}
