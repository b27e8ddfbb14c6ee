package prompts

import (
	"fmt"
	"strings"
)

// PromptBuilder composes a registered prompt with extra fragments and
// {{variable}} substitutions.
type PromptBuilder struct {
	fragments []string
	variables map[string]string
}

// NewPromptBuilder starts a builder from a registered prompt.
func NewPromptBuilder(registry *PromptRegistry, id string, version PromptVersion) (*PromptBuilder, error) {
	base, err := registry.Get(id, version)
	if err != nil {
		return nil, fmt.Errorf("failed to get base prompt: %w", err)
	}
	return &PromptBuilder{
		fragments: []string{base.Content},
		variables: make(map[string]string),
	}, nil
}

// AddFragment appends a block of text to the prompt.
func (b *PromptBuilder) AddFragment(text string) *PromptBuilder {
	b.fragments = append(b.fragments, text)
	return b
}

// SetVariable sets a value substituted for {{key}} in the final prompt.
func (b *PromptBuilder) SetVariable(key, value string) *PromptBuilder {
	b.variables[key] = value
	return b
}

// Build renders the prompt.
func (b *PromptBuilder) Build() string {
	out := strings.Join(b.fragments, "\n\n")
	for key, value := range b.variables {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}
