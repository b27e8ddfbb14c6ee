package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// NewCreateWebsiteFilesTool writes a fresh project: all three site files
// in one call.
func NewCreateWebsiteFilesTool(files FileStore) engine.Tool {
	return engine.Tool{
		Name: "create_website_files",
		Description: "Creates a new website project with its three files. " +
			"All of index_html, style_css and script_js must be complete file contents.",
		SchemaJSON: `{"type":"object","properties":{` +
			`"project_name":{"type":"string","description":"Unique project name, lowercase with hyphens"},` +
			`"index_html":{"type":"string","description":"Full content of index.html"},` +
			`"style_css":{"type":"string","description":"Full content of style.css"},` +
			`"script_js":{"type":"string","description":"Full content of script.js"}},` +
			`"required":["project_name","index_html","style_css","script_js"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			project, err := stringArg(args, "project_name")
			if err != nil {
				return "", err
			}
			owner := engine.ActingUser(ctx)

			index, err := stringArg(args, "index_html")
			if err != nil {
				return "", err
			}
			style, err := stringArg(args, "style_css")
			if err != nil {
				return "", err
			}
			script, err := stringArg(args, "script_js")
			if err != nil {
				return "", err
			}

			contents := map[string]string{
				engine.FileIndex:  index,
				engine.FileStyle:  style,
				engine.FileScript: script,
			}
			for name, content := range contents {
				if err := files.SaveFile(ctx, owner, project, name, content); err != nil {
					return "", err
				}
			}

			return jsonResult(map[string]any{
				"project": project,
				"files":   []string{engine.FileIndex, engine.FileStyle, engine.FileScript},
				"success": true,
			})
		},
	}
}

// NewUpdateWebsiteFilesTool overwrites a subset of an existing project's
// files. Each provided file replaces the stored one entirely.
func NewUpdateWebsiteFilesTool(files FileStore) engine.Tool {
	return engine.Tool{
		Name: "update_website_files",
		Description: "Updates files of an existing website project. Send only the files " +
			"that changed, each as its FULL new content.",
		SchemaJSON: `{"type":"object","properties":{` +
			`"project_name":{"type":"string","description":"Name of the existing project"},` +
			`"index_html":{"type":"string","description":"Full new content of index.html, if changed"},` +
			`"style_css":{"type":"string","description":"Full new content of style.css, if changed"},` +
			`"script_js":{"type":"string","description":"Full new content of script.js, if changed"}},` +
			`"required":["project_name"]}`,
		Fn: func(ctx context.Context, args map[string]any) (string, error) {
			project, err := stringArg(args, "project_name")
			if err != nil {
				return "", err
			}
			owner := engine.ActingUser(ctx)

			exists, err := files.Exists(ctx, owner, project)
			if err != nil {
				return "", err
			}
			if !exists {
				return "", fmt.Errorf("project %s does not exist", project)
			}

			updated := []string{}
			for argName, fileName := range map[string]string{
				"index_html": engine.FileIndex,
				"style_css":  engine.FileStyle,
				"script_js":  engine.FileScript,
			} {
				content, ok := args[argName].(string)
				if !ok {
					continue
				}
				if err := files.SaveFile(ctx, owner, project, fileName, content); err != nil {
					return "", err
				}
				updated = append(updated, fileName)
			}
			if len(updated) == 0 {
				return "", fmt.Errorf("no files provided to update")
			}

			return jsonResult(map[string]any{
				"project": project,
				"updated": updated,
				"success": true,
			})
		},
	}
}

// NewReadWebsiteFilesTool returns the current contents of a project.
func NewReadWebsiteFilesTool(files FileStore) engine.Tool {
	return engine.Tool{
		Name:        "read_website_files",
		Description: "Reads all files of a website project and returns their contents.",
		SchemaJSON: `{"type":"object","properties":{` +
			`"project_name":{"type":"string","description":"Name of the project to read"}},` +
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
			return jsonResult(map[string]any{
				"project": project,
				"files":   contents,
			})
		},
	}
}

func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%s must be a non-empty string", key)
	}
	return v, nil
}

func jsonResult(v map[string]any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
