package generator

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pawsense/internal/models"
)

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultGeminiModel   = "gemini-2.5-pro"
	maxSSELineBytes      = 1 << 20
)

// GeminiGenerator talks to the Generative Language REST API using
// server-sent events.
type GeminiGenerator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewGeminiGenerator(baseURL, apiKey, model string, httpClient *http.Client) (*GeminiGenerator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: provider %s", ErrMissingAPIKey, ProviderGemini)
	}
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if httpClient == nil {
		httpClient = newStreamingHTTPClient(0)
	}
	return &GeminiGenerator{
		apiKey:     apiKey,
		model:      strings.TrimSpace(model),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

func (g *GeminiGenerator) Name() string { return ProviderGemini }

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

func (r *geminiResponse) text() string {
	var sb strings.Builder
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func (g *GeminiGenerator) StreamChat(ctx context.Context, turns []models.ConversationTurn, onChunk ChunkFunc) error {
	reqBody := geminiRequest{Contents: make([]geminiContent, 0, len(turns))}
	for _, t := range turns {
		reqBody.Contents = append(reqBody.Contents, geminiContent{
			Role:  string(t.Role),
			Parts: []geminiPart{{Text: t.Text}},
		})
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return g.statusError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}

		var chunk geminiResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedStream, err)
		}
		if chunk.Error != nil {
			return &StatusError{
				Provider:   ProviderGemini,
				StatusCode: chunk.Error.Code,
				Status:     chunk.Error.Status,
				Message:    chunk.Error.Message,
			}
		}
		if text := chunk.text(); text != "" {
			if err := onChunk(text); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("gemini stream: %w", err)
	}
	return nil
}

func (g *GeminiGenerator) statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	se := &StatusError{
		Provider:   ProviderGemini,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}

	var envelope struct {
		Error *geminiError `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		se.Status = envelope.Error.Status
		se.Message = envelope.Error.Message
	}
	return se
}
