package generator

import (
	"context"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"pawsense/internal/models"
)

const defaultAnthropicMaxTokens = 2048

type AnthropicGenerator struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

func NewAnthropicGenerator(baseURL, apiKey, model string, maxTokens int, httpClient *http.Client) (*AnthropicGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: provider %s", ErrMissingAPIKey, ProviderAnthropic)
	}
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	anthropicModel := anthropic.ModelClaudeSonnet4_5_20250929
	if model != "" {
		anthropicModel = anthropic.Model(model)
	}
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &AnthropicGenerator{
		client:    anthropic.NewClient(opts...),
		model:     anthropicModel,
		maxTokens: int64(maxTokens),
	}, nil
}

func (g *AnthropicGenerator) Name() string { return ProviderAnthropic }

func (g *AnthropicGenerator) StreamChat(ctx context.Context, turns []models.ConversationTurn, onChunk ChunkFunc) error {
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(t.Text)
		if t.Role == models.TurnModel {
			messages = append(messages, anthropic.NewAssistantMessage(block))
		} else {
			messages = append(messages, anthropic.NewUserMessage(block))
		}
	}

	stream := g.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		Messages:  messages,
		MaxTokens: g.maxTokens,
	})
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				if err := onChunk(delta.Text); err != nil {
					return err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("anthropic stream: %w", err)
	}
	return nil
}
