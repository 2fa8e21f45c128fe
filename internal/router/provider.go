// Package router selects a generation provider for a request and
// drives retries and failover across the configured backends.
package router

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmarchetti/responsa/internal/model"
)

// Provider defines the interface for generation backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Generate produces an answer for the request
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)

	// IsAvailable checks if the provider is properly configured and reachable
	IsAvailable(ctx context.Context) bool
}

// GenerateRequest contains the input for one generation call
type GenerateRequest struct {
	// System is the system prompt (if empty, the fiscal assistant default)
	System string

	// Prompt is the full user prompt, context already merged in
	Prompt string

	// Model overrides the provider's configured model
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling; zero uses the provider default
	Temperature float64
}

// GenerateResponse contains a provider's answer
type GenerateResponse struct {
	// Text is the generated answer
	Text string

	// Citations are the URLs the provider actually cited
	Citations []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// defaultSystemPrompt frames every generation as Italian fiscal
// assistance grounded in the supplied context.
const defaultSystemPrompt = "Sei un assistente fiscale italiano. Rispondi in modo preciso e conciso " +
	"basandoti esclusivamente sul contesto fornito. Se il contesto non basta, dillo esplicitamente."

// NewProvider creates a generation provider from its configuration
func NewProvider(cfg model.ProviderConfig) (Provider, error) {
	switch strings.ToLower(cfg.Name) {
	case "openai":
		return NewOpenAIProvider(cfg)

	case "anthropic", "claude":
		return NewAnthropicProvider(cfg)

	case "ollama":
		return NewOllamaProvider(cfg)

	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: openai, anthropic, ollama)", cfg.Name)
	}
}

// extractCitations extracts all URLs from generated text
func extractCitations(text string) []string {
	urlPattern := regexp.MustCompile(`https?://[^\s\)]+`)
	matches := urlPattern.FindAllString(text, -1)

	seen := make(map[string]bool)
	var unique []string
	for _, url := range matches {
		url = strings.TrimRight(url, ".,;:!?")
		if !seen[url] {
			seen[url] = true
			unique = append(unique, url)
		}
	}

	return unique
}
