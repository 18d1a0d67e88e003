// Package genprovider abstracts the external text-generation backends that
// produce exercise proposals. Implementations differ only in transport;
// prompt construction and response parsing are shared.
package genprovider

import (
	"context"
	"net/http"
	"time"

	shared "github.com/pep-pro/server/pkg"
	"github.com/pep-pro/server/pkg/apperrors"
	"github.com/pep-pro/server/pkg/types"
)

// Kind selects a generation backend.
type Kind string

const (
	KindClaude Kind = "claude"
	KindOpenAI Kind = "openai"
	KindGemini Kind = "gemini"
)

// ParseKind resolves the provider tag from a request. Empty defaults to
// claude; the single-letter aliases predate the named tags.
func ParseKind(tag string) (Kind, error) {
	switch tag {
	case "", "claude", "A":
		return KindClaude, nil
	case "openai", "B":
		return KindOpenAI, nil
	case "gemini":
		return KindGemini, nil
	default:
		return "", apperrors.NewValidation("unknown llm provider %q", tag)
	}
}

// SecretName returns the Secret Manager id holding this backend's API key.
func (k Kind) SecretName() string {
	switch k {
	case KindOpenAI:
		return shared.SecretOpenAIAPIKey
	case KindGemini:
		return shared.SecretGeminiAPIKey
	default:
		return shared.SecretAnthropicAPIKey
	}
}

// Provider sends a prompt to a text-generation backend and returns the raw
// model output. Proposal extraction happens above this boundary so parsing
// failures stay distinguishable from transport failures.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Outbound calls are bounded; a timeout surfaces as a GenerationError like
// any other transport failure.
const requestTimeout = 60 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// New builds the provider for a kind. The API key is fetched fresh per
// invocation by the caller, never cached here.
func New(kind Kind, apiKey string) Provider {
	switch kind {
	case KindOpenAI:
		return NewOpenAIProvider(apiKey)
	case KindGemini:
		return NewGeminiProvider(apiKey)
	default:
		return NewAnthropicProvider(apiKey)
	}
}

// GenerateProposals runs the full contract: render the profile prompt, call
// the backend, extract 3-5 proposals. Transport and parse failures both
// surface as GenerationError; the parse cause stays reachable via
// errors.As for targeted handling.
func GenerateProposals(ctx context.Context, p Provider, profile *types.Patient) ([]*Proposal, error) {
	raw, err := p.Complete(ctx, BuildPrompt(profile))
	if err != nil {
		return nil, &apperrors.GenerationError{Provider: p.Name(), Err: err}
	}

	proposals, err := ExtractProposals(raw)
	if err != nil {
		return nil, &apperrors.GenerationError{Provider: p.Name(), Err: err}
	}
	return proposals, nil
}

// GenerateSingle produces one proposal for a named exercise, used by the
// clinician custom-exercise path.
func GenerateSingle(ctx context.Context, p Provider, exerciseName, voiceInstructions string) (*Proposal, error) {
	raw, err := p.Complete(ctx, BuildSinglePrompt(exerciseName, voiceInstructions))
	if err != nil {
		return nil, &apperrors.GenerationError{Provider: p.Name(), Err: err}
	}

	proposals, err := ExtractProposals(raw)
	if err != nil {
		return nil, &apperrors.GenerationError{Provider: p.Name(), Err: err}
	}
	return proposals[0], nil
}
