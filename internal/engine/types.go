package engine

import (
	"context"
	"fmt"
)

// Role identifies the author of a conversation turn. The generative backend
// only understands two roles, so tool results are carried on user turns.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one entry in a project's conversation history. Exactly one of
// Content, ToolCall or ToolResult is meaningful: plain text turns carry
// Content, a model turn that requested a tool carries ToolCall, and the
// user turn that answers it carries ToolResult.
type Turn struct {
	Role       Role        `json:"role"`
	Content    string      `json:"content,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`
}

// UserTurn builds a plain-text user turn.
func UserTurn(text string) Turn {
	return Turn{Role: RoleUser, Content: text}
}

// ModelTurn builds a plain-text model turn.
func ModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Content: text}
}

// ToolCallTurn records a tool invocation requested by the model.
func ToolCallTurn(call ToolCall) Turn {
	return Turn{Role: RoleModel, ToolCall: &call}
}

// ToolResultTurn records the observation fed back for a tool call.
func ToolResultTurn(result ToolResult) Turn {
	return Turn{Role: RoleUser, ToolResult: &result}
}

// Validate checks the structural shape of a turn.
func (t Turn) Validate() error {
	switch t.Role {
	case RoleUser, RoleModel:
	default:
		return fmt.Errorf("invalid turn role: %s", t.Role)
	}
	if t.ToolCall != nil && t.Role != RoleModel {
		return fmt.Errorf("tool call turns must use the model role")
	}
	if t.ToolResult != nil && t.Role != RoleUser {
		return fmt.Errorf("tool result turns must use the user role")
	}
	return nil
}

// ToolCall is a tool invocation produced by the model. Arguments are only
// schema-shape checked here; semantic validation belongs to the handler.
type ToolCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// ToolResult is the observation echoed back into the conversation after a
// tool handler ran. Handler failures are carried in-band with IsError set
// and a "Error: ..." content, never as loop failures.
type ToolResult struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	IsError bool   `json:"is_error,omitempty"`
}

// Mode governs the tool-usage policy for a single loop run. It is supplied
// by the caller per invocation and never persisted.
type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// OutcomeKind categorizes what the gateway returned.
type OutcomeKind int

const (
	// OutcomeText is a terminal plain-text answer.
	OutcomeText OutcomeKind = iota
	// OutcomeToolCall means the model selected exactly one tool to run next.
	OutcomeToolCall
)

// Outcome is the normalized result of one generation request.
type Outcome struct {
	Kind OutcomeKind
	Text string   // valid when Kind == OutcomeText
	Call ToolCall // valid when Kind == OutcomeToolCall
}

// GenParams carries the generation knobs forwarded to the backend.
type GenParams struct {
	Temperature     float32
	MaxOutputTokens int
}

// Schema is a tool declaration as offered to the model: name, description
// and the raw JSON schema of its parameters.
type Schema struct {
	Name        string
	Description string
	JSONSchema  string
}

// Gateway sends a conversation to the generative backend and returns either
// a text answer or a single requested tool call. Implementations classify
// backend failures with the error kinds in errors.go.
type Gateway interface {
	Generate(ctx context.Context, turns []Turn, system string, catalog []Schema, params GenParams) (Outcome, error)
}

// HistoryStore is what the loop needs from the conversation store: keyed
// ordered histories plus per-project mutual exclusion so concurrent runs
// for the same project cannot interleave turns.
type HistoryStore interface {
	History(projectID string) []Turn
	SetHistory(projectID string, turns []Turn)
	LockProject(projectID string) (unlock func())
}

// ProjectReader is the slice of the file store used for update-mode
// seeding. Read failures are treated as missing context, not fatal.
type ProjectReader interface {
	ReadAllFiles(ctx context.Context, owner, project string) (map[string]string, error)
}

type actingUserKey struct{}

// WithActingUser scopes the calling user's identity into the context handed
// to tool handlers.
func WithActingUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actingUserKey{}, userID)
}

// ActingUser returns the identity set by WithActingUser, or "".
func ActingUser(ctx context.Context) string {
	id, _ := ctx.Value(actingUserKey{}).(string)
	return id
}
