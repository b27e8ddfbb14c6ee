package engine

import (
	"context"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// ToolFunc executes one tool invocation. The result string is echoed back
// to the model verbatim, so handlers return compact JSON. The acting user,
// when set, is available via ActingUser(ctx).
type ToolFunc func(ctx context.Context, args map[string]any) (string, error)

// Tool binds a declaration to its executable handler.
type Tool struct {
	Name        string
	Description string
	SchemaJSON  string
	Fn          ToolFunc
}

// ValidateArgs validates the provided arguments against the tool's JSON
// schema.
func (t Tool) ValidateArgs(args map[string]any) error {
	schemaLoader := gojsonschema.NewStringLoader(t.SchemaJSON)
	documentLoader := gojsonschema.NewGoLoader(args)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			problems = append(problems, verr.String())
		}
		return &ToolValidationError{ToolName: t.Name, Problems: problems}
	}

	return nil
}

// Registry is the immutable catalog of callable tools. All declarations
// happen at startup; the registry is read-only afterwards and concurrent
// mutation is not supported.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Declare registers a tool under its name. Names are unique; redeclaring
// one fails with ErrDuplicateTool.
func (r *Registry) Declare(t Tool) error {
	if t.Name == "" {
		return fmt.Errorf("tool name must not be empty")
	}
	if _, exists := r.tools[t.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, t.Name)
	}
	r.tools[t.Name] = t
	r.order = append(r.order, t.Name)
	return nil
}

// Resolve returns the tool registered under name. For calls that originated
// from the model's own catalog a miss signals catalog/handler drift and is
// classified as a fatal configuration error.
func (r *Registry) Resolve(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return Tool{}, NewGatewayError(KindFatalConfig,
			fmt.Errorf("%w: %s", ErrUnknownTool, name),
			fmt.Sprintf("tool %q is declared nowhere in the catalog", name))
	}
	return t, nil
}

// Catalog returns the declaration list for inclusion in a generation
// request, stable in declaration order across the process lifetime.
func (r *Registry) Catalog() []Schema {
	catalog := make([]Schema, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		catalog = append(catalog, Schema{
			Name:        t.Name,
			Description: t.Description,
			JSONSchema:  t.SchemaJSON,
		})
	}
	return catalog
}

// Len returns the number of declared tools.
func (r *Registry) Len() int { return len(r.order) }
