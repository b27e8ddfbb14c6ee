package providers

import (
	"context"
	"encoding/json"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"
	"github.com/rs/zerolog"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// AnthropicGateway implements engine.Gateway on the Anthropic Messages
// API. Anthropic signals overload with its own 529 status, which maps to
// the transient marker like Gemini's 503.
type AnthropicGateway struct {
	client *anthropic.Client
	model  string
	log    zerolog.Logger
}

// NewAnthropicGateway creates an Anthropic-backed gateway.
func NewAnthropicGateway(apiKey, model string, log zerolog.Logger) (*AnthropicGateway, error) {
	if apiKey == "" {
		return nil, engine.NewGatewayError(engine.KindFatalConfig, nil, "ANTHROPIC_API_KEY is not set")
	}
	return &AnthropicGateway{client: anthropic.NewClient(apiKey), model: model, log: log}, nil
}

// Generate implements engine.Gateway.
func (c *AnthropicGateway) Generate(ctx context.Context, turns []engine.Turn, system string, catalog []engine.Schema, params engine.GenParams) (engine.Outcome, error) {
	msgs := convertTurnsToAnthropic(turns)

	var toolDefs []anthropic.ToolDefinition
	for _, ts := range catalog {
		var schemaObj map[string]any
		if err := json.Unmarshal([]byte(ts.JSONSchema), &schemaObj); err != nil {
			return engine.Outcome{}, engine.NewGatewayError(engine.KindFatalConfig, err,
				fmt.Sprintf("invalid tool schema JSON for %s", ts.Name))
		}
		toolDefs = append(toolDefs, anthropic.ToolDefinition{
			Name:        ts.Name,
			Description: ts.Description,
			InputSchema: schemaObj,
		})
	}

	maxTokens := 4096
	if params.MaxOutputTokens > 0 {
		maxTokens = params.MaxOutputTokens
	}

	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		Messages:  msgs,
		MaxTokens: maxTokens,
	}
	if params.Temperature > 0 {
		temp := params.Temperature
		req.Temperature = &temp
	}
	if system != "" {
		req.MultiSystem = []anthropic.MessageSystemPart{{Type: "text", Text: system}}
	}
	if len(toolDefs) > 0 {
		req.Tools = toolDefs
	}

	resp, err := c.client.CreateMessages(ctx, req)
	if err != nil {
		return engine.Outcome{}, classifyStatus(extractHTTPStatus(err), err)
	}

	var text string
	var calls []engine.ToolCall
	for _, block := range resp.Content {
		switch block.Type {
		case anthropic.MessagesContentTypeText:
			if block.Text != nil {
				text += *block.Text
			}
		case "tool_use":
			use := block.MessageContentToolUse
			if use == nil || use.Name == "" {
				continue
			}
			args := make(map[string]any)
			if len(use.Input) > 0 {
				if err := json.Unmarshal(use.Input, &args); err != nil {
					return engine.Outcome{}, engine.NewGatewayError(engine.KindMalformedCall, err,
						fmt.Sprintf("tool call %s carried invalid JSON input", use.Name))
				}
			}
			calls = append(calls, engine.ToolCall{Name: use.Name, Args: args})
		}
	}

	if len(calls) > 0 {
		if len(calls) > 1 {
			for _, extra := range calls[1:] {
				c.log.Warn().Str("tool", extra.Name).
					Msg("dropping extra simultaneous tool call; single-step protocol honors the first only")
			}
		}
		return engine.Outcome{Kind: engine.OutcomeToolCall, Call: calls[0]}, nil
	}
	return engine.Outcome{Kind: engine.OutcomeText, Text: text}, nil
}

// convertTurnsToAnthropic maps turns onto Anthropic messages. Tool results
// become tool_result user blocks whose tool_use_id is synthesized the same
// way as the preceding call's, relying on the pairing invariant.
func convertTurnsToAnthropic(turns []engine.Turn) []anthropic.Message {
	msgs := make([]anthropic.Message, 0, len(turns))

	lastCallID := ""
	for i := range turns {
		t := &turns[i]
		switch {
		case t.ToolCall != nil:
			lastCallID = fmt.Sprintf("toolu_%d", i)
			argsJSON, _ := json.Marshal(t.ToolCall.Args)
			msgs = append(msgs, anthropic.Message{
				Role: anthropic.RoleAssistant,
				Content: []anthropic.MessageContent{
					anthropic.NewToolUseMessageContent(lastCallID, t.ToolCall.Name, json.RawMessage(argsJSON)),
				},
			})
		case t.ToolResult != nil:
			if lastCallID == "" {
				continue
			}
			content := t.ToolResult.Content
			if content == "" {
				content = "{}"
			}
			msgs = append(msgs, anthropic.Message{
				Role: anthropic.RoleUser,
				Content: []anthropic.MessageContent{
					anthropic.NewToolResultMessageContent(lastCallID, content, t.ToolResult.IsError),
				},
			})
			lastCallID = ""
		case t.Role == engine.RoleModel:
			msgs = append(msgs, anthropic.Message{
				Role:    anthropic.RoleAssistant,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(t.Content)},
			})
		default:
			msgs = append(msgs, anthropic.Message{
				Role:    anthropic.RoleUser,
				Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(t.Content)},
			})
		}
	}
	return msgs
}
