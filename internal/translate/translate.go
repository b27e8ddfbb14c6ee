// Package translate renders user-visible website text into another
// language through the model gateway.
package translate

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// Languages the translator accepts. Requests outside this set are
// rejected before any model call is made.
var supported = map[string]bool{
	"english":  true,
	"spanish":  true,
	"french":   true,
	"german":   true,
	"hindi":    true,
	"japanese": true,
}

// Supported returns the accepted language names, sorted.
func Supported() []string {
	out := make([]string, 0, len(supported))
	for l := range supported {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Translator performs single-shot translations via a model gateway.
type Translator struct {
	gateway engine.Gateway
}

func New(gateway engine.Gateway) *Translator {
	return &Translator{gateway: gateway}
}

const systemPrompt = "You are a translator. Translate the user's text into the requested " +
	"language. Preserve HTML tags, placeholders and formatting exactly. " +
	"Respond with the translated text only, no commentary."

// Translate returns text rendered in the target language.
func (t *Translator) Translate(ctx context.Context, text, language string) (string, error) {
	lang := strings.ToLower(strings.TrimSpace(language))
	if !supported[lang] {
		return "", fmt.Errorf("unsupported language %q, supported: %s", language, strings.Join(Supported(), ", "))
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("nothing to translate")
	}

	turns := []engine.Turn{
		engine.UserTurn(fmt.Sprintf("Translate into %s:\n\n%s", lang, text)),
	}
	out, err := t.gateway.Generate(ctx, turns, systemPrompt, nil, engine.GenParams{Temperature: 0.2})
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if out.Kind != engine.OutcomeText || strings.TrimSpace(out.Text) == "" {
		return "", fmt.Errorf("model returned no translation")
	}
	return strings.TrimSpace(out.Text), nil
}
