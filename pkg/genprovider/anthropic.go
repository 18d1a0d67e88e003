package genprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	httputil "github.com/pep-pro/server/pkg/infrastructure/http"
)

const (
	anthropicBaseURL = "https://api.anthropic.com"
	anthropicModel   = "claude-3-opus-20240229"
	anthropicVersion = "2023-06-01"
)

// AnthropicProvider generates proposals through the Anthropic Messages API.
type AnthropicProvider struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewAnthropicProvider(apiKey string) *AnthropicProvider {
	return &AnthropicProvider{
		APIKey:  apiKey,
		BaseURL: anthropicBaseURL,
		Client:  newHTTPClient(),
	}
}

func (p *AnthropicProvider) Name() string {
	return string(KindClaude)
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(anthropicRequest{
		Model:       anthropicModel,
		MaxTokens:   2000,
		Temperature: 0.3,
		System:      SystemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", p.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := httputil.ParseErrorResponse(resp); err != nil {
		return "", err
	}

	var parsed anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("anthropic response has no content blocks")
	}
	return parsed.Content[0].Text, nil
}
