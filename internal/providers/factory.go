package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// Default models per provider.
const (
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultOpenAIModel    = "gpt-4o-mini"
	defaultAnthropicModel = "claude-3-5-sonnet-latest"
)

// NewGateway creates an engine.Gateway for the named provider. The model is
// resolved from the provider's env var, then the configured override, then
// the built-in default; credentials come from the environment. Gemini is
// the default backend.
func NewGateway(ctx context.Context, provider, modelOverride string, log zerolog.Logger) (engine.Gateway, string, error) {
	if provider == "" {
		provider = "gemini"
	}

	switch provider {
	case "gemini":
		model := resolveModel("GEMINI_MODEL", modelOverride, defaultGeminiModel)
		gw, err := NewGeminiGateway(ctx, os.Getenv("GEMINI_API_KEY"), model, log)
		if err != nil {
			return nil, "", err
		}
		return gw, model, nil

	case "openai":
		model := resolveModel("OPENAI_MODEL", modelOverride, defaultOpenAIModel)
		gw, err := NewOpenAIGateway(os.Getenv("OPENAI_API_KEY"), model, os.Getenv("OPENAI_BASE_URL"), log)
		if err != nil {
			return nil, "", err
		}
		return gw, model, nil

	case "anthropic":
		model := resolveModel("ANTHROPIC_MODEL", modelOverride, defaultAnthropicModel)
		gw, err := NewAnthropicGateway(os.Getenv("ANTHROPIC_API_KEY"), model, log)
		if err != nil {
			return nil, "", err
		}
		return gw, model, nil

	default:
		return nil, "", engine.NewGatewayError(engine.KindFatalConfig, nil,
			fmt.Sprintf("unknown llm provider %q", provider))
	}
}

func resolveModel(envKey, override, fallback string) string {
	if model := os.Getenv(envKey); model != "" {
		return model
	}
	if override != "" {
		return override
	}
	return fallback
}
