package genprovider

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiModel = "gemini-2.0-flash"

// GeminiProvider generates proposals through Google Gemini. The client is
// created per call so the API key never outlives an invocation.
type GeminiProvider struct {
	APIKey string
}

func NewGeminiProvider(apiKey string) *GeminiProvider {
	return &GeminiProvider{APIKey: apiKey}
}

func (p *GeminiProvider) Name() string {
	return string(KindGemini)
}

func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(p.APIKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(geminiModel)
	model.SetTemperature(0.3)
	model.SetMaxOutputTokens(2000)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	rawOutput := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			rawOutput += string(text)
		}
	}
	return rawOutput, nil
}
