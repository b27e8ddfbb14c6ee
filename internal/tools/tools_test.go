package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/deploy"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/sandbox"
)

// fakeFileStore keys files by owner/project/name in memory.
type fakeFileStore struct {
	files map[string]map[string]string // owner/project -> name -> content
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[string]map[string]string)}
}

func (f *fakeFileStore) key(owner, project string) string { return owner + "/" + project }

func (f *fakeFileStore) SaveFile(ctx context.Context, owner, project, name, content string) error {
	k := f.key(owner, project)
	if f.files[k] == nil {
		f.files[k] = make(map[string]string)
	}
	f.files[k][name] = content
	return nil
}

func (f *fakeFileStore) ReadAllFiles(ctx context.Context, owner, project string) (map[string]string, error) {
	out := make(map[string]string)
	for name, content := range f.files[f.key(owner, project)] {
		out[name] = content
	}
	return out, nil
}

func (f *fakeFileStore) Exists(ctx context.Context, owner, project string) (bool, error) {
	return len(f.files[f.key(owner, project)]) > 0, nil
}

func (f *fakeFileStore) DeleteProject(ctx context.Context, owner, project string) error {
	k := f.key(owner, project)
	if len(f.files[k]) == 0 {
		return fmt.Errorf("project not found: %s", project)
	}
	delete(f.files, k)
	return nil
}

func (f *fakeFileStore) List(ctx context.Context, owner string) ([]string, error) {
	var projects []string
	prefix := owner + "/"
	for k, files := range f.files {
		if len(files) > 0 && len(k) > len(prefix) && k[:len(prefix)] == prefix {
			projects = append(projects, k[len(prefix):])
		}
	}
	return projects, nil
}

type fakePurger struct{ purged []string }

func (f *fakePurger) DeleteHistory(projectID string) { f.purged = append(f.purged, projectID) }

type fakeDeployer struct {
	lastProject string
	lastFiles   map[string]string
	err         error
}

func (f *fakeDeployer) Deploy(ctx context.Context, project string, files map[string]string) (*deploy.Deployment, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastProject = project
	f.lastFiles = files
	return &deploy.Deployment{ID: "dep-1", URL: "https://" + project + ".example.net"}, nil
}

type fakeTranslator struct{}

func (fakeTranslator) Translate(ctx context.Context, text, language string) (string, error) {
	return "[" + language + "] " + text, nil
}

type fakeShell struct{ lastArgs []string }

func (f *fakeShell) RunCmd(ctx context.Context, workDir, name string, args []string, timeout time.Duration) (sandbox.Result, error) {
	f.lastArgs = append([]string{name}, args...)
	return sandbox.Result{Stdout: "hello\n", Code: 0}, nil
}

func userCtx(id string) context.Context {
	return engine.WithActingUser(context.Background(), id)
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestBuildRegistry_DeclaresFullCatalogInOrder(t *testing.T) {
	reg, err := BuildRegistry(Deps{
		Files:      newFakeFileStore(),
		Histories:  &fakePurger{},
		Deployer:   &fakeDeployer{},
		Translator: fakeTranslator{},
		Shell:      &fakeShell{},
	})
	require.NoError(t, err)

	want := []string{
		"create_website_files",
		"update_website_files",
		"read_website_files",
		"list_projects",
		"delete_project",
		"deploy_website",
		"translate_text",
		"run_shell_command",
	}
	catalog := reg.Catalog()
	require.Len(t, catalog, len(want))
	for i, schema := range catalog {
		assert.Equal(t, want[i], schema.Name)
		assert.NotEmpty(t, schema.Description)
		assert.NotEmpty(t, schema.JSONSchema)
	}
}

func TestCreateWebsiteFiles(t *testing.T) {
	store := newFakeFileStore()
	tool := NewCreateWebsiteFilesTool(store)

	args := map[string]any{
		"project_name": "bakery",
		"index_html":   "<html></html>",
		"style_css":    "body{}",
		"script_js":    "console.log(1)",
	}
	require.NoError(t, tool.ValidateArgs(args))

	raw, err := tool.Fn(userCtx("u1"), args)
	require.NoError(t, err)

	result := decode(t, raw)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, "bakery", result["project"])

	files, _ := store.ReadAllFiles(context.Background(), "u1", "bakery")
	assert.Equal(t, "<html></html>", files[engine.FileIndex])
	assert.Equal(t, "body{}", files[engine.FileStyle])
	assert.Equal(t, "console.log(1)", files[engine.FileScript])
}

func TestCreateWebsiteFiles_SchemaRequiresAllThreeFiles(t *testing.T) {
	tool := NewCreateWebsiteFilesTool(newFakeFileStore())
	err := tool.ValidateArgs(map[string]any{
		"project_name": "bakery",
		"index_html":   "<html></html>",
	})
	assert.Error(t, err)
}

func TestUpdateWebsiteFiles(t *testing.T) {
	store := newFakeFileStore()
	ctx := userCtx("u1")
	_ = store.SaveFile(ctx, "u1", "bakery", engine.FileIndex, "old")
	_ = store.SaveFile(ctx, "u1", "bakery", engine.FileStyle, "old-css")

	tool := NewUpdateWebsiteFilesTool(store)
	raw, err := tool.Fn(ctx, map[string]any{
		"project_name": "bakery",
		"style_css":    "new-css",
	})
	require.NoError(t, err)

	result := decode(t, raw)
	assert.ElementsMatch(t, []any{engine.FileStyle}, result["updated"])

	files, _ := store.ReadAllFiles(ctx, "u1", "bakery")
	assert.Equal(t, "old", files[engine.FileIndex], "untouched files keep their content")
	assert.Equal(t, "new-css", files[engine.FileStyle])
}

func TestUpdateWebsiteFiles_MissingProject(t *testing.T) {
	tool := NewUpdateWebsiteFilesTool(newFakeFileStore())
	_, err := tool.Fn(userCtx("u1"), map[string]any{
		"project_name": "ghost",
		"style_css":    "x",
	})
	assert.ErrorContains(t, err, "does not exist")
}

func TestUpdateWebsiteFiles_NoFilesProvided(t *testing.T) {
	store := newFakeFileStore()
	ctx := userCtx("u1")
	_ = store.SaveFile(ctx, "u1", "bakery", engine.FileIndex, "x")

	tool := NewUpdateWebsiteFilesTool(store)
	_, err := tool.Fn(ctx, map[string]any{"project_name": "bakery"})
	assert.ErrorContains(t, err, "no files")
}

func TestReadWebsiteFiles(t *testing.T) {
	store := newFakeFileStore()
	ctx := userCtx("u1")
	_ = store.SaveFile(ctx, "u1", "bakery", engine.FileIndex, "<html></html>")

	tool := NewReadWebsiteFilesTool(store)
	raw, err := tool.Fn(ctx, map[string]any{"project_name": "bakery"})
	require.NoError(t, err)

	result := decode(t, raw)
	files := result["files"].(map[string]any)
	assert.Equal(t, "<html></html>", files[engine.FileIndex])

	_, err = tool.Fn(ctx, map[string]any{"project_name": "ghost"})
	assert.ErrorContains(t, err, "does not exist")
}

func TestListProjects_OwnerScoped(t *testing.T) {
	store := newFakeFileStore()
	_ = store.SaveFile(context.Background(), "u1", "bakery", engine.FileIndex, "x")
	_ = store.SaveFile(context.Background(), "u2", "other", engine.FileIndex, "x")

	tool := NewListProjectsTool(store)
	raw, err := tool.Fn(userCtx("u1"), map[string]any{})
	require.NoError(t, err)

	result := decode(t, raw)
	assert.Equal(t, float64(1), result["count"])
	assert.ElementsMatch(t, []any{"bakery"}, result["projects"])
}

func TestDeleteProject_PurgesHistory(t *testing.T) {
	store := newFakeFileStore()
	purger := &fakePurger{}
	ctx := userCtx("u1")
	_ = store.SaveFile(ctx, "u1", "bakery", engine.FileIndex, "x")

	tool := NewDeleteProjectTool(store, purger)
	raw, err := tool.Fn(ctx, map[string]any{"project_name": "bakery"})
	require.NoError(t, err)

	result := decode(t, raw)
	assert.Equal(t, true, result["deleted"])
	assert.Equal(t, []string{"bakery"}, purger.purged)

	exists, _ := store.Exists(ctx, "u1", "bakery")
	assert.False(t, exists)
}

func TestDeleteProject_MissingProjectKeepsHistory(t *testing.T) {
	purger := &fakePurger{}
	tool := NewDeleteProjectTool(newFakeFileStore(), purger)

	_, err := tool.Fn(userCtx("u1"), map[string]any{"project_name": "ghost"})
	assert.Error(t, err)
	assert.Empty(t, purger.purged)
}

func TestDeployWebsite(t *testing.T) {
	store := newFakeFileStore()
	deployer := &fakeDeployer{}
	ctx := userCtx("u1")
	_ = store.SaveFile(ctx, "u1", "bakery", engine.FileIndex, "<html></html>")

	tool := NewDeployWebsiteTool(store, deployer)
	raw, err := tool.Fn(ctx, map[string]any{"project_name": "bakery"})
	require.NoError(t, err)

	result := decode(t, raw)
	assert.Equal(t, "https://bakery.example.net", result["url"])
	assert.Equal(t, "dep-1", result["deployment_id"])
	assert.Equal(t, "bakery", deployer.lastProject)
	assert.Contains(t, deployer.lastFiles, engine.FileIndex)
}

func TestDeployWebsite_FailurePropagates(t *testing.T) {
	store := newFakeFileStore()
	ctx := userCtx("u1")
	_ = store.SaveFile(ctx, "u1", "bakery", engine.FileIndex, "x")

	tool := NewDeployWebsiteTool(store, &fakeDeployer{err: errors.New("provider down")})
	_, err := tool.Fn(ctx, map[string]any{"project_name": "bakery"})
	assert.ErrorContains(t, err, "provider down")
}

func TestTranslateText(t *testing.T) {
	tool := NewTranslateTextTool(fakeTranslator{})
	raw, err := tool.Fn(context.Background(), map[string]any{
		"text":     "Welcome",
		"language": "Spanish",
	})
	require.NoError(t, err)

	result := decode(t, raw)
	assert.Equal(t, "spanish", result["language"])
	assert.Equal(t, "[Spanish] Welcome", result["translated"])
}

func TestRunShellCommand(t *testing.T) {
	shell := &fakeShell{}
	tool := NewRunShellCommandTool(shell)

	raw, err := tool.Fn(context.Background(), map[string]any{"command": "echo hello"})
	require.NoError(t, err)

	result := decode(t, raw)
	assert.Equal(t, "hello\n", result["stdout"])
	assert.Equal(t, float64(0), result["exit_code"])

	// The command line goes through sh -c verbatim.
	assert.Equal(t, []string{"sh", "-c", "echo hello"}, shell.lastArgs)
}
