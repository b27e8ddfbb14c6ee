package tools

import (
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// BuildRegistry declares the full tool catalog in its fixed order. The
// catalog is read-only after startup; declaration order is the order the
// model sees the tools in.
func BuildRegistry(deps Deps) (*engine.Registry, error) {
	reg := engine.NewRegistry()

	declarations := []engine.Tool{
		NewCreateWebsiteFilesTool(deps.Files),
		NewUpdateWebsiteFilesTool(deps.Files),
		NewReadWebsiteFilesTool(deps.Files),
		NewListProjectsTool(deps.Files),
		NewDeleteProjectTool(deps.Files, deps.Histories),
		NewDeployWebsiteTool(deps.Files, deps.Deployer),
		NewTranslateTextTool(deps.Translator),
		NewRunShellCommandTool(deps.Shell),
	}

	for _, tool := range declarations {
		if err := reg.Declare(tool); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
