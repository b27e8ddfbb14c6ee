package tools

import (
	"context"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// NewListProjectsTool returns the caller's project names.
func NewListProjectsTool(files FileStore) engine.Tool {
	return engine.Tool{
		Name:        "list_projects",
		Description: "Lists the names of all website projects the user has.",
		SchemaJSON:  `{"type":"object","properties":{}}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			owner := engine.ActingUser(ctx)
			projects, err := files.List(ctx, owner)
			if err != nil {
				return "", err
			}
			if projects == nil {
				projects = []string{}
			}
			return jsonResult(map[string]any{
				"projects": projects,
				"count":    len(projects),
			})
		},
	}
}

// NewDeleteProjectTool removes a project's files and its conversation
// history in one step, so a later project of the same name starts clean.
func NewDeleteProjectTool(files FileStore, histories HistoryPurger) engine.Tool {
	return engine.Tool{
		Name:        "delete_project",
		Description: "Permanently deletes a website project and all of its files.",
		SchemaJSON: `{"type":"object","properties":{` +
			`"project_name":{"type":"string","description":"Name of the project to delete"}},` +
			`"required":["project_name"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			project, err := stringArg(args, "project_name")
			if err != nil {
				return "", err
			}
			owner := engine.ActingUser(ctx)

			if err := files.DeleteProject(ctx, owner, project); err != nil {
				return "", err
			}
			histories.DeleteHistory(project)

			return jsonResult(map[string]any{
				"project": project,
				"deleted": true,
			})
		},
	}
}
