package tools

import (
	"context"
	"strings"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/translate"
)

// NewTranslateTextTool translates website copy into a supported language.
func NewTranslateTextTool(translator TextTranslator) engine.Tool {
	languages := strings.Join(translate.Supported(), ", ")
	return engine.Tool{
		Name:        "translate_text",
		Description: "Translates text into another language. Supported languages: " + languages + ".",
		SchemaJSON: `{"type":"object","properties":{` +
			`"text":{"type":"string","description":"Text to translate"},` +
			`"language":{"type":"string","description":"Target language name, e.g. spanish"}},` +
			`"required":["text","language"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			text, err := stringArg(args, "text")
			if err != nil {
				return "", err
			}
			language, err := stringArg(args, "language")
			if err != nil {
				return "", err
			}

			translated, err := translator.Translate(ctx, text, language)
			if err != nil {
				return "", err
			}
			return jsonResult(map[string]any{
				"language":   strings.ToLower(language),
				"translated": translated,
			})
		},
	}
}
