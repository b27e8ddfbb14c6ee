package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/session"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/storage"
)

// scriptedGateway returns queued outcomes, one per Generate call.
type scriptedGateway struct {
	outcomes []engine.Outcome
	errs     []error
	calls    int
}

func (g *scriptedGateway) Generate(ctx context.Context, turns []engine.Turn, system string, catalog []engine.Schema, params engine.GenParams) (engine.Outcome, error) {
	i := g.calls
	g.calls++
	if i < len(g.errs) && g.errs[i] != nil {
		return engine.Outcome{}, g.errs[i]
	}
	if i < len(g.outcomes) {
		return g.outcomes[i], nil
	}
	return engine.Outcome{}, errors.New("gateway script exhausted")
}

func newTestServer(t *testing.T, gw engine.Gateway) (*Server, *storage.Store, *session.Store) {
	t.Helper()

	files, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { files.Close() })

	sessions := session.NewStore()

	reg := engine.NewRegistry()
	loop := engine.NewLoop(gw, reg, sessions, files, engine.LoopConfig{
		Retry: engine.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond},
		Policy: engine.UpdatePolicy{
			CreateTool: "create_website_files",
			UpdateTool: "update_website_files",
			Allowed:    []string{"update_website_files", "read_website_files", "list_projects"},
		},
	}, zerolog.Nop())

	return New(loop, gw, files, sessions, zerolog.Nop()), files, sessions
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t, &scriptedGateway{})
	rec := doJSON(t, srv.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGenerate_HappyPath(t *testing.T) {
	gw := &scriptedGateway{outcomes: []engine.Outcome{
		{Kind: engine.OutcomeText, Text: "built your site"},
	}}
	srv, _, _ := newTestServer(t, gw)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/generate",
		`{"problem":"build me a bakery site","project_id":"bakery","user_id":"u1"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "built your site", resp.Answer)
}

func TestGenerate_ValidatesInput(t *testing.T) {
	srv, _, _ := newTestServer(t, &scriptedGateway{})
	h := srv.Handler()

	rec := doJSON(t, h, http.MethodPost, "/api/generate", `{"problem":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/generate", `{"problem":"x","mode":"destroy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/generate", `{"problem":"x","mode":"update"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "update mode requires a project_id")

	rec = doJSON(t, h, http.MethodPost, "/api/generate", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerate_OverloadMapsTo503(t *testing.T) {
	overloaded := engine.NewGatewayError(engine.KindTransient, nil, "model overloaded")
	gw := &scriptedGateway{errs: []error{overloaded, overloaded, overloaded}}
	srv, _, _ := newTestServer(t, gw)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/generate",
		`{"problem":"build","project_id":"p1"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "overloaded")
}

func TestChat_ShowListsProjects(t *testing.T) {
	srv, files, _ := newTestServer(t, &scriptedGateway{})
	require.NoError(t, files.SaveFile(context.Background(), "u1", "bakery", "index.html", "x"))

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/chat",
		`{"message":"show me my projects","user_id":"u1"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "show", resp.Action)
	assert.Equal(t, []string{"bakery"}, resp.Projects)
	assert.Contains(t, resp.Reply, "bakery")
}

func TestChat_UpdateWithoutProjectAsksBack(t *testing.T) {
	srv, _, _ := newTestServer(t, &scriptedGateway{})

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/chat",
		`{"message":"change it up a bit","user_id":"u1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "update", resp.Action)
	assert.Contains(t, resp.Reply, "Which project")
}

func TestChat_GeneralGoesToModelAndRecordsTranscript(t *testing.T) {
	gw := &scriptedGateway{outcomes: []engine.Outcome{
		{Kind: engine.OutcomeText, Text: "I can build websites for you."},
	}}
	srv, _, sessions := newTestServer(t, gw)

	rec := doJSON(t, srv.Handler(), http.MethodPost, "/api/chat",
		`{"message":"what can you do?","user_id":"u1"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "general", resp.Action)
	assert.Equal(t, "I can build websites for you.", resp.Reply)

	transcript := sessions.FormatChat("u1")
	assert.Contains(t, transcript, "User: what can you do?")
	assert.Contains(t, transcript, "Assistant: I can build websites for you.")
}

func TestDeleteProject(t *testing.T) {
	srv, files, sessions := newTestServer(t, &scriptedGateway{})
	require.NoError(t, files.SaveFile(context.Background(), "u1", "bakery", "index.html", "x"))
	sessions.SetHistory("bakery", []engine.Turn{engine.UserTurn("hi")})

	rec := doJSON(t, srv.Handler(), http.MethodDelete, "/api/projects/bakery?user_id=u1", "")
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	exists, err := files.Exists(context.Background(), "u1", "bakery")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Empty(t, sessions.History("bakery"), "conversation history is purged with the project")

	rec = doJSON(t, srv.Handler(), http.MethodDelete, "/api/projects/bakery?user_id=u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserMessage_Taxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"retries exhausted", &engine.RetriesExhaustedError{Err: errors.New("overloaded"), Attempts: 3}, http.StatusServiceUnavailable},
		{"transient", engine.NewGatewayError(engine.KindTransient, nil, "overloaded"), http.StatusServiceUnavailable},
		{"corrections exhausted", engine.ErrCorrectionsExhausted, http.StatusUnprocessableEntity},
		{"max steps", engine.ErrMaxSteps, http.StatusUnprocessableEntity},
		{"quota", engine.NewGatewayError(engine.KindQuota, nil, "limit"), http.StatusTooManyRequests},
		{"fatal config", engine.NewGatewayError(engine.KindFatalConfig, nil, "no key"), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := userMessage(tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.NotEmpty(t, msg)
			// User messages never leak internal detail.
			assert.NotContains(t, msg, "boom")
		})
	}
}
