package mcp

import (
	"fmt"
	"sync"

	internalerrors "github.com/mcpkit/mcpcore/internal/errors"
)

// promptRegistry implements PromptRegistry with thread-safe access.
type promptRegistry struct {
	mu      sync.RWMutex
	prompts map[string]Prompt
}

// NewPromptRegistry creates a new thread-safe prompt registry.
func NewPromptRegistry() PromptRegistry {
	return &promptRegistry{
		prompts: make(map[string]Prompt),
	}
}

// RegisterPrompt registers a prompt under the given name.
func (r *promptRegistry) RegisterPrompt(name string, prompt Prompt) error {
	if name == "" {
		return internalerrors.New("mcp", "RegisterPrompt", internalerrors.ErrBadRequest, fmt.Errorf("prompt name cannot be empty"))
	}
	if prompt == nil {
		return internalerrors.New("mcp", "RegisterPrompt", internalerrors.ErrBadRequest, fmt.Errorf("prompt cannot be nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.prompts[name]; exists {
		return internalerrors.New("mcp", "RegisterPrompt", internalerrors.ErrBadRequest, ErrPromptAlreadyRegistered).
			WithContext("prompt_name", name)
	}

	r.prompts[name] = prompt
	return nil
}

// GetPrompt retrieves a prompt by name.
func (r *promptRegistry) GetPrompt(name string) (Prompt, error) {
	if name == "" {
		return nil, internalerrors.New("mcp", "GetPrompt", internalerrors.ErrBadRequest, fmt.Errorf("prompt name cannot be empty"))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	prompt, exists := r.prompts[name]
	if !exists {
		return nil, internalerrors.New("mcp", "GetPrompt", internalerrors.ErrNotFound, ErrPromptNotFound).
			WithContext("prompt_name", name)
	}
	return prompt, nil
}

// ListPrompts returns one page of prompt definitions starting at cursor.
func (r *promptRegistry) ListPrompts(cursor string) ([]PromptDefinition, string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.prompts))
	for name := range r.prompts {
		names = append(names, name)
	}

	page, next, err := paginate(names, cursor)
	if err != nil {
		return nil, ""
	}

	definitions := make([]PromptDefinition, 0, len(page))
	for _, name := range page {
		definitions = append(definitions, r.prompts[name].Definition())
	}
	return definitions, next
}
