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
	openAIBaseURL = "https://api.openai.com"
	openAIModel   = "gpt-4"
)

// OpenAIProvider generates proposals through the OpenAI Chat Completions API.
type OpenAIProvider struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{
		APIKey:  apiKey,
		BaseURL: openAIBaseURL,
		Client:  newHTTPClient(),
	}
}

func (p *OpenAIProvider) Name() string {
	return string(KindOpenAI)
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(openAIRequest{
		Model: openAIModel,
		Messages: []openAIMessage{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.3,
		MaxTokens:   2000,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := httputil.ParseErrorResponse(resp); err != nil {
		return "", err
	}

	var parsed openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode openai response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
