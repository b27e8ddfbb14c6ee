package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// GeminiGateway implements engine.Gateway on the Gemini API. This is the
// primary backend: its function-calling protocol is single-step, so when a
// response carries several calls only the first is honored and the rest
// are logged and dropped.
type GeminiGateway struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewGeminiGateway creates a Gemini-backed gateway. A missing API key is a
// configuration failure, not something a retry can fix.
func NewGeminiGateway(ctx context.Context, apiKey, model string, log zerolog.Logger) (*GeminiGateway, error) {
	if apiKey == "" {
		return nil, engine.NewGatewayError(engine.KindFatalConfig, nil, "GEMINI_API_KEY is not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, engine.NewGatewayError(engine.KindFatalConfig, err, "failed to create Gemini client")
	}

	return &GeminiGateway{client: client, model: model, log: log}, nil
}

// Generate implements engine.Gateway.
func (g *GeminiGateway) Generate(ctx context.Context, turns []engine.Turn, system string, catalog []engine.Schema, params engine.GenParams) (engine.Outcome, error) {
	contents := convertTurnsToGemini(turns)

	config := &genai.GenerateContentConfig{}
	if params.Temperature > 0 {
		temp := params.Temperature
		config.Temperature = &temp
	}
	if params.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(params.MaxOutputTokens)
	}
	if system != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}
	if len(catalog) > 0 {
		decls, err := convertCatalogToGemini(catalog)
		if err != nil {
			return engine.Outcome{}, engine.NewGatewayError(engine.KindFatalConfig, err, "invalid tool catalog")
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return engine.Outcome{}, classifyGeminiError(err)
	}
	if result == nil {
		return engine.Outcome{}, engine.NewGatewayError(engine.KindProvider, nil, "empty response from Gemini")
	}

	if len(result.Candidates) > 0 &&
		result.Candidates[0].FinishReason == genai.FinishReasonMalformedFunctionCall {
		return engine.Outcome{}, engine.NewGatewayError(engine.KindMalformedCall, nil,
			"backend could not form a valid function call")
	}

	if calls := result.FunctionCalls(); len(calls) > 0 {
		if len(calls) > 1 {
			for _, extra := range calls[1:] {
				g.log.Warn().Str("tool", extra.Name).
					Msg("dropping extra simultaneous function call; single-step protocol honors the first only")
			}
		}
		args := calls[0].Args
		if args == nil {
			args = make(map[string]any)
		}
		return engine.Outcome{
			Kind: engine.OutcomeToolCall,
			Call: engine.ToolCall{Name: calls[0].Name, Args: args},
		}, nil
	}

	return engine.Outcome{Kind: engine.OutcomeText, Text: extractGeminiText(result)}, nil
}

// convertTurnsToGemini maps the engine's turn model onto Gemini contents.
// Tool calls travel as model-role function-call parts and tool results as
// user-role function-response parts.
func convertTurnsToGemini(turns []engine.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(turns))
	for i := range turns {
		t := &turns[i]

		var role string
		switch t.Role {
		case engine.RoleModel:
			role = "model"
		default:
			role = "user"
		}

		var parts []*genai.Part
		switch {
		case t.ToolCall != nil:
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					Name: t.ToolCall.Name,
					Args: t.ToolCall.Args,
				},
			})
		case t.ToolResult != nil:
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					Name: t.ToolResult.Name,
					Response: map[string]any{
						"content":  t.ToolResult.Content,
						"is_error": t.ToolResult.IsError,
					},
				},
			})
		default:
			parts = append(parts, &genai.Part{Text: t.Content})
		}

		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}
	return contents
}

// extractGeminiText pulls the answer text out of a response, handling the
// three shapes the backend produces: plain text parts, a structured
// candidate, and a truncated or empty candidate. The last case degrades to
// an empty string; an unhelpful answer is still a legitimate terminal state.
func extractGeminiText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 {
		return ""
	}
	cand := result.Candidates[0]
	if cand.Content == nil || len(cand.Content.Parts) == 0 {
		return ""
	}
	var text string
	for _, part := range cand.Content.Parts {
		if part != nil {
			text += part.Text
		}
	}
	return text
}

// classifyGeminiError prefers the structured APIError; status-code
// sniffing on the message is the fallback for wrapped transport errors.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, err)
	}
	return classifyStatus(extractHTTPStatus(err), err)
}

// geminiSchema mirrors the subset of JSON schema the tool catalog uses.
type geminiSchema struct {
	Type        string                   `json:"type"`
	Description string                   `json:"description,omitempty"`
	Properties  map[string]*geminiSchema `json:"properties,omitempty"`
	Items       *geminiSchema            `json:"items,omitempty"`
	Required    []string                 `json:"required,omitempty"`
	Enum        []string                 `json:"enum,omitempty"`
}

// convertCatalogToGemini converts the registry's JSON schemas into Gemini
// function declarations.
func convertCatalogToGemini(catalog []engine.Schema) ([]*genai.FunctionDeclaration, error) {
	decls := make([]*genai.FunctionDeclaration, 0, len(catalog))
	for _, s := range catalog {
		var schema geminiSchema
		if err := json.Unmarshal([]byte(s.JSONSchema), &schema); err != nil {
			return nil, fmt.Errorf("invalid tool schema JSON for %s: %w", s.Name, err)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        s.Name,
			Description: s.Description,
			Parameters:  convertSchema(&schema),
		})
	}
	return decls, nil
}

func convertSchema(s *geminiSchema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{Description: s.Description}
	switch s.Type {
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
		out.Items = convertSchema(s.Items)
	case "object":
		out.Type = genai.TypeObject
		if len(s.Properties) > 0 {
			out.Properties = make(map[string]*genai.Schema, len(s.Properties))
			for name, child := range s.Properties {
				out.Properties[name] = convertSchema(child)
			}
		}
		out.Required = s.Required
	default:
		out.Type = genai.TypeString
	}
	if len(s.Enum) > 0 {
		out.Enum = s.Enum
	}
	return out
}
