package tools

import (
	"context"
	"fmt"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// NewDeployWebsiteTool publishes a project through the hosting provider.
func NewDeployWebsiteTool(files FileStore, deployer Deployer) engine.Tool {
	return engine.Tool{
		Name:        "deploy_website",
		Description: "Deploys a website project to public hosting and returns its live URL.",
		SchemaJSON: `{"type":"object","properties":{` +
			`"project_name":{"type":"string","description":"Name of the project to deploy"}},` +
			`"required":["project_name"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			project, err := stringArg(args, "project_name")
			if err != nil {
				return "", err
			}
			owner := engine.ActingUser(ctx)

			contents, err := files.ReadAllFiles(ctx, owner, project)
			if err != nil {
				return "", err
			}
			if len(contents) == 0 {
				return "", fmt.Errorf("project %s does not exist", project)
			}

			dep, err := deployer.Deploy(ctx, project, contents)
			if err != nil {
				return "", err
			}
			return jsonResult(map[string]any{
				"project":       project,
				"url":           dep.URL,
				"deployment_id": dep.ID,
			})
		},
	}
}
