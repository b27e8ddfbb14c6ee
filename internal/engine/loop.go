package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// The three files every generated site is made of. Update-mode seeding
// reports which of them exist and inlines the stylesheet.
const (
	FileIndex  = "index.html"
	FileStyle  = "style.css"
	FileScript = "script.js"
)

// UpdatePolicy names the tools permitted while Mode is ModeUpdate. Any
// other request is rejected with a corrective turn and the handler is
// never executed.
type UpdatePolicy struct {
	CreateTool string   // the file-creation tool, explicitly called out in corrections
	UpdateTool string   // the tool corrections steer the model towards
	Allowed    []string // full allow list for update mode
}

func (p UpdatePolicy) allows(name string) bool {
	for _, n := range p.Allowed {
		if n == name {
			return true
		}
	}
	return false
}

// LoopConfig carries the per-process knobs of the loop.
type LoopConfig struct {
	SystemPrompt   func(mode Mode) string
	Params         GenParams
	Retry          RetryPolicy
	Policy         UpdatePolicy
	MaxSteps       int // guard against a model that never answers in text
	MaxCorrections int // budget for malformed-call and policy corrections
}

const (
	defaultMaxSteps       = 32
	defaultMaxCorrections = 4
)

// Loop is the orchestration state machine. One Run drives
// Seeding -> Generating -> (ToolDispatch -> Generating)* -> Done, with a
// corrective self-loop on malformed tool calls and policy violations.
type Loop struct {
	gateway  Gateway
	registry *Registry
	store    HistoryStore
	files    ProjectReader
	cfg      LoopConfig
	log      zerolog.Logger
}

// NewLoop wires the loop to its collaborators. files may be nil when no
// update-mode context enrichment is available.
func NewLoop(gateway Gateway, registry *Registry, store HistoryStore, files ProjectReader, cfg LoopConfig, log zerolog.Logger) *Loop {
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	if cfg.MaxCorrections <= 0 {
		cfg.MaxCorrections = defaultMaxCorrections
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	return &Loop{
		gateway:  gateway,
		registry: registry,
		store:    store,
		files:    files,
		cfg:      cfg,
		log:      log,
	}
}

// Run executes one orchestration for the given user problem. The project's
// history is locked for the duration of the run, extended strictly
// append-only, and persisted once the model produces a final text answer.
// Failures other than transient exhaustion and configuration defects are
// recovered in-loop; see errors.go for the taxonomy.
func (l *Loop) Run(ctx context.Context, problem, projectID string, mode Mode, userID string) (string, error) {
	key := historyKey(projectID, userID)

	unlock := l.store.LockProject(key)
	defer unlock()

	history := l.store.History(key)

	if mode == ModeUpdate {
		history = append(history, l.seedUpdateContext(ctx, projectID, userID)...)
	}
	history = append(history, UserTurn(problem))

	system := ""
	if l.cfg.SystemPrompt != nil {
		system = l.cfg.SystemPrompt(mode)
	}
	catalog := l.registry.Catalog()

	corrections := 0
	for step := 0; step < l.cfg.MaxSteps; step++ {
		out, err := RetryWithPolicy(ctx, l.cfg.Retry,
			func(ctx context.Context) (Outcome, error) {
				return l.gateway.Generate(ctx, history, system, catalog, l.cfg.Params)
			},
			func(attempt int, delay time.Duration, retryErr error) {
				l.log.Warn().
					Str("project", key).
					Int("attempt", attempt).
					Dur("delay", delay).
					Err(retryErr).
					Msg("backend overloaded, retrying generation")
			},
		)
		if err != nil {
			if IsMalformedCall(err) {
				corrections++
				if corrections > l.cfg.MaxCorrections {
					return "", fmt.Errorf("%w after %d corrective turns: %v",
						ErrCorrectionsExhausted, corrections-1, err)
				}
				l.log.Debug().Str("project", key).Int("corrections", corrections).
					Msg("malformed tool call, injecting corrective turn")
				history = append(history, UserTurn(malformedCallCorrection(catalog)))
				continue
			}
			return "", err
		}

		if out.Kind == OutcomeText {
			history = append(history, ModelTurn(out.Text))
			l.store.SetHistory(key, history)
			l.log.Info().Str("project", key).Int("steps", step+1).Msg("run complete")
			return out.Text, nil
		}

		call := out.Call
		if mode == ModeUpdate && !l.cfg.Policy.allows(call.Name) {
			corrections++
			if corrections > l.cfg.MaxCorrections {
				return "", fmt.Errorf("%w after %d corrective turns: tool %s disallowed in update mode",
					ErrCorrectionsExhausted, corrections-1, call.Name)
			}
			l.log.Debug().Str("project", key).Str("tool", call.Name).
				Msg("tool disallowed in update mode, injecting corrective turn")
			history = append(history, UserTurn(l.policyCorrection(call.Name)))
			continue
		}

		tool, err := l.registry.Resolve(call.Name)
		if err != nil {
			// Catalog/handler drift; abort rather than correct in-band.
			return "", err
		}

		result := l.dispatch(ctx, tool, call, userID)
		history = append(history, ToolCallTurn(call), ToolResultTurn(result))
	}

	return "", fmt.Errorf("%w (%d)", ErrMaxSteps, l.cfg.MaxSteps)
}

// dispatch validates and runs one tool call. Handler failures become
// in-band observations the model is expected to react to.
func (l *Loop) dispatch(ctx context.Context, tool Tool, call ToolCall, userID string) ToolResult {
	toolCtx := ctx
	if userID != "" {
		toolCtx = WithActingUser(ctx, userID)
	}

	started := time.Now()
	content, err := executeTool(toolCtx, tool, call)
	elapsed := time.Since(started)

	if err != nil {
		l.log.Warn().Str("tool", call.Name).Dur("took", elapsed).Err(err).Msg("tool failed")
		return ToolResult{Name: call.Name, Content: "Error: " + err.Error(), IsError: true}
	}
	l.log.Debug().Str("tool", call.Name).Dur("took", elapsed).Msg("tool complete")
	return ToolResult{Name: call.Name, Content: content}
}

func executeTool(ctx context.Context, tool Tool, call ToolCall) (string, error) {
	if err := tool.ValidateArgs(call.Args); err != nil {
		return "", err
	}
	return tool.Fn(ctx, call.Args)
}

// seedUpdateContext enriches an update run with the project's current
// state: which of the expected files exist, plus the literal stylesheet so
// the model can change only what was asked. Context enrichment is an
// optimization, so read failures are logged and swallowed.
func (l *Loop) seedUpdateContext(ctx context.Context, projectID, userID string) []Turn {
	if l.files == nil || projectID == "" {
		return nil
	}

	files, err := l.files.ReadAllFiles(ctx, userID, projectID)
	if err != nil {
		l.log.Warn().Str("project", projectID).Err(err).
			Msg("could not read existing files for update seeding")
		return nil
	}
	if len(files) == 0 {
		return nil
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "The project %q already exists. Current files:\n", projectID)
	for _, name := range []string{FileIndex, FileStyle, FileScript} {
		if _, ok := files[name]; ok {
			fmt.Fprintf(&summary, "- %s: present\n", name)
		} else {
			fmt.Fprintf(&summary, "- %s: missing\n", name)
		}
	}
	fmt.Fprintf(&summary,
		"You MUST use the %s tool to change this project. Do not call %s.",
		l.cfg.Policy.UpdateTool, l.cfg.Policy.CreateTool)

	turns := []Turn{UserTurn(summary.String())}

	if style, ok := files[FileStyle]; ok {
		turns = append(turns, UserTurn(fmt.Sprintf(
			"Current content of %s:\n```css\n%s\n```\nOnly change what the user asks for and keep everything else identical.",
			FileStyle, style)))
	}
	return turns
}

// policyCorrection is the corrective turn for a tool disallowed in update
// mode.
func (l *Loop) policyCorrection(rejected string) string {
	if rejected == l.cfg.Policy.CreateTool {
		return fmt.Sprintf(
			"The project already exists, so %s must not be used. Call %s instead to modify the existing files.",
			l.cfg.Policy.CreateTool, l.cfg.Policy.UpdateTool)
	}
	return fmt.Sprintf(
		"The tool %s is not allowed while updating an existing project. Use only: %s.",
		rejected, strings.Join(l.cfg.Policy.Allowed, ", "))
}

// malformedCallCorrection spells out the exact required call shape, tool
// names and parameter names included, so the model can retry the call.
func malformedCallCorrection(catalog []Schema) string {
	var b strings.Builder
	b.WriteString("Your last tool call was malformed. Call exactly one tool with valid JSON arguments. Available tools and their parameters:\n")
	for _, s := range catalog {
		fmt.Fprintf(&b, "- %s(%s)\n", s.Name, strings.Join(schemaParamNames(s.JSONSchema), ", "))
	}
	return b.String()
}

// schemaParamNames extracts the top-level parameter names from a JSON
// schema, sorted for a deterministic correction text.
func schemaParamNames(schemaJSON string) []string {
	var schema struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal([]byte(schemaJSON), &schema); err != nil {
		return nil
	}
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// historyKey scopes unnamed conversations to the acting user so that a nil
// project identifier still yields a continuable history.
func historyKey(projectID, userID string) string {
	if projectID != "" {
		return projectID
	}
	if userID != "" {
		return "user:" + userID
	}
	return "user:anonymous"
}
