package prompts

import (
	"fmt"
	"sync"
)

// PromptRegistry manages versioned prompts.
type PromptRegistry struct {
	mu      sync.RWMutex
	prompts map[string]map[PromptVersion]*Prompt
}

var defaultRegistry *PromptRegistry
var defaultRegistryOnce sync.Once

// DefaultRegistry returns the process-wide prompt registry.
func DefaultRegistry() *PromptRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewPromptRegistry()
	})
	return defaultRegistry
}

// NewPromptRegistry creates an empty registry.
func NewPromptRegistry() *PromptRegistry {
	return &PromptRegistry{
		prompts: make(map[string]map[PromptVersion]*Prompt),
	}
}

// Register adds a prompt, replacing any existing same ID and version.
func (r *PromptRegistry) Register(p *Prompt) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.prompts[p.ID] == nil {
		r.prompts[p.ID] = make(map[PromptVersion]*Prompt)
	}
	r.prompts[p.ID][p.Version] = p
}

// Get retrieves a specific version of a prompt.
func (r *PromptRegistry) Get(id string, version PromptVersion) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", id)
	}
	prompt, ok := versions[version]
	if !ok {
		return nil, fmt.Errorf("prompt %s version %s not found", id, version)
	}
	return prompt, nil
}

// GetLatest retrieves the highest non-deprecated version of a prompt,
// or the highest version if all are deprecated.
func (r *PromptRegistry) GetLatest(id string) (*Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.prompts[id]
	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", id)
	}

	pick := func(includeDeprecated bool) *Prompt {
		var latest *Prompt
		for _, prompt := range versions {
			if prompt.Deprecated && !includeDeprecated {
				continue
			}
			if latest == nil || prompt.Version > latest.Version {
				latest = prompt
			}
		}
		return latest
	}

	latest := pick(false)
	if latest == nil {
		latest = pick(true)
	}
	if latest == nil {
		return nil, fmt.Errorf("no versions found for prompt: %s", id)
	}
	return latest, nil
}
