package providers

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
	"github.com/rs/zerolog"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// OpenAIGateway implements engine.Gateway against any OpenAI-compatible
// chat completion endpoint (OpenAI itself, or Gemini's and Kimi's
// compatibility surfaces via baseURL).
type OpenAIGateway struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

// NewOpenAIGateway creates an OpenAI-compatible gateway. baseURL may be
// empty for the default endpoint.
func NewOpenAIGateway(apiKey, model, baseURL string, log zerolog.Logger) (*OpenAIGateway, error) {
	if apiKey == "" {
		return nil, engine.NewGatewayError(engine.KindFatalConfig, nil, "OPENAI_API_KEY is not set")
	}

	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIGateway{client: openai.NewClientWithConfig(config), model: model, log: log}, nil
}

// Generate implements engine.Gateway.
func (c *OpenAIGateway) Generate(ctx context.Context, turns []engine.Turn, system string, catalog []engine.Schema, params engine.GenParams) (engine.Outcome, error) {
	msgs := convertTurnsToOpenAI(turns, system)

	var tools []openai.Tool
	for _, ts := range catalog {
		var schemaObj map[string]any
		if err := json.Unmarshal([]byte(ts.JSONSchema), &schemaObj); err != nil {
			return engine.Outcome{}, engine.NewGatewayError(engine.KindFatalConfig, err,
				fmt.Sprintf("invalid tool schema JSON for %s", ts.Name))
		}
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        ts.Name,
				Description: ts.Description,
				Parameters:  schemaObj,
			},
		})
	}

	req := openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	}
	if len(tools) > 0 {
		req.Tools = tools
		req.ToolChoice = "auto"
	}
	if params.MaxOutputTokens > 0 {
		req.MaxTokens = params.MaxOutputTokens
	}
	if params.Temperature > 0 {
		req.Temperature = &params.Temperature
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return engine.Outcome{}, classifyStatus(extractHTTPStatus(err), err)
	}
	if len(resp.Choices) == 0 {
		return engine.Outcome{}, engine.NewGatewayError(engine.KindProvider, nil, "empty response from backend")
	}

	choice := resp.Choices[0]
	if len(choice.Message.ToolCalls) > 0 {
		if len(choice.Message.ToolCalls) > 1 {
			for _, extra := range choice.Message.ToolCalls[1:] {
				c.log.Warn().Str("tool", extra.Function.Name).
					Msg("dropping extra simultaneous tool call; single-step protocol honors the first only")
			}
		}
		tc := choice.Message.ToolCalls[0]
		var args map[string]any
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				// The model produced syntactically broken arguments; the
				// loop recovers this with a corrective turn.
				return engine.Outcome{}, engine.NewGatewayError(engine.KindMalformedCall, err,
					fmt.Sprintf("tool call %s carried invalid JSON arguments", tc.Function.Name))
			}
		}
		if args == nil {
			args = make(map[string]any)
		}
		return engine.Outcome{
			Kind: engine.OutcomeToolCall,
			Call: engine.ToolCall{Name: tc.Function.Name, Args: args},
		}, nil
	}

	// Length-truncated responses legitimately terminate with whatever text
	// was produced, possibly none.
	return engine.Outcome{Kind: engine.OutcomeText, Text: choice.Message.Content}, nil
}

// convertTurnsToOpenAI maps turns onto chat completion messages. The wire
// protocol matches tool results to calls by ID; the turn model has none,
// so deterministic IDs are synthesized from the call's position, which is
// sound because the pairing invariant keeps each result adjacent to its
// call.
func convertTurnsToOpenAI(turns []engine.Turn, system string) []openai.ChatCompletionMessage {
	msgs := make([]openai.ChatCompletionMessage, 0, len(turns)+1)
	if system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}

	lastCallID := ""
	for i := range turns {
		t := &turns[i]
		switch {
		case t.ToolCall != nil:
			lastCallID = fmt.Sprintf("call_%d", i)
			argsJSON, _ := json.Marshal(t.ToolCall.Args)
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				// A single space avoids null-content serialization issues.
				Content: " ",
				ToolCalls: []openai.ToolCall{{
					ID:   lastCallID,
					Type: "function",
					Function: openai.FunctionCall{
						Name:      t.ToolCall.Name,
						Arguments: string(argsJSON),
					},
				}},
			})
		case t.ToolResult != nil:
			if lastCallID == "" {
				continue
			}
			content := t.ToolResult.Content
			if content == "" {
				content = "{}"
			}
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				ToolCallID: lastCallID,
				Content:    content,
			})
			lastCallID = ""
		case t.Role == engine.RoleModel:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: t.Content,
			})
		default:
			msgs = append(msgs, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: t.Content,
			})
		}
	}
	return msgs
}
