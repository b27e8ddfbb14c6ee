package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/config"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/deploy"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/prompts"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/providers"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/sandbox"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/server"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/session"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/storage"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/tools"
	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/translate"
)

func main() {
	// Load .env if present, real environment wins.
	_ = godotenv.Load()

	manager, err := config.NewManager()
	if err != nil {
		bootFail("failed to locate config", err)
	}
	cfg, err := manager.Load()
	if err != nil {
		bootFail("failed to load config", err)
	}

	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	gateway, model, err := providers.NewGateway(ctx, cfg.LLMProvider, cfg.Model, log)
	if err != nil {
		return err
	}
	log.Info().Str("provider", cfg.LLMProvider).Str("model", model).Msg("gateway ready")

	files, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer files.Close()

	sessions := session.NewStore()

	if cfg.SandboxMode != "" && os.Getenv("NEXO_SANDBOX_MODE") == "" {
		os.Setenv("NEXO_SANDBOX_MODE", cfg.SandboxMode)
	}
	runner := sandbox.NewDefaultRunner(log)

	registry, err := tools.BuildRegistry(tools.Deps{
		Files:      files,
		Histories:  sessions,
		Deployer:   deploy.NewClient(cfg.DeployBaseURL, cfg.DeployToken),
		Translator: translate.New(gateway),
		Shell:      runner,
	})
	if err != nil {
		return err
	}

	loop := engine.NewLoop(gateway, registry, sessions, files, engine.LoopConfig{
		SystemPrompt: prompts.System,
		Params:       engine.GenParams{Temperature: 0.7},
		Policy: engine.UpdatePolicy{
			CreateTool: "create_website_files",
			UpdateTool: "update_website_files",
			Allowed:    []string{"update_website_files", "read_website_files", "list_projects"},
		},
		MaxSteps:       cfg.MaxSteps,
		MaxCorrections: cfg.MaxCorrections,
	}, log)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(loop, gateway, files, sessions, log).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Str("provider", cfg.LLMProvider).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Logger()
}

func bootFail(msg string, err error) {
	l := zerolog.New(os.Stderr).With().Timestamp().Logger()
	l.Fatal().Err(err).Msg(msg)
}
