// Package tools declares the fixed catalog of capabilities the model may
// invoke and binds each to its handler. Handlers return JSON strings; a
// handler error is fed back to the model as an observation, not thrown.
package tools

import (
	"context"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/deploy"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/sandbox"
)

// FileStore is the persistence surface the website tools need.
type FileStore interface {
	SaveFile(ctx context.Context, owner, project, name, content string) error
	ReadAllFiles(ctx context.Context, owner, project string) (map[string]string, error)
	Exists(ctx context.Context, owner, project string) (bool, error)
	DeleteProject(ctx context.Context, owner, project string) error
	List(ctx context.Context, owner string) ([]string, error)
}

// HistoryPurger forgets a project's conversation when the project goes away.
type HistoryPurger interface {
	DeleteHistory(projectID string)
}

// Deployer publishes a project's files.
type Deployer interface {
	Deploy(ctx context.Context, project string, files map[string]string) (*deploy.Deployment, error)
}

// TextTranslator renders text into a target language.
type TextTranslator interface {
	Translate(ctx context.Context, text, language string) (string, error)
}

// Deps carries everything the tool handlers close over.
type Deps struct {
	Files      FileStore
	Histories  HistoryPurger
	Deployer   Deployer
	Translator TextTranslator
	Shell      sandbox.Runner
}
