package sandbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Mode represents the sandbox execution mode.
type Mode string

const (
	// ModeDocker uses Docker containers for isolation.
	ModeDocker Mode = "docker"
	// ModeHost runs commands directly on the host (no isolation).
	ModeHost Mode = "host"
	// ModeAuto selects Docker if available, otherwise falls back to host.
	ModeAuto Mode = "auto"
)

// defaultImage is used when no override is configured. Generated sites
// are plain HTML/CSS/JS, so a node image covers every tool the model
// tends to reach for.
const defaultImage = "node:alpine"

// Config holds configuration for sandbox execution.
type Config struct {
	Mode        Mode
	DockerImage string
	CPU         string
	Memory      string
	CmdTimeout  time.Duration
}

// ConfigFromEnv builds the configuration from environment variables.
func ConfigFromEnv(log zerolog.Logger) Config {
	modeStr := strings.ToLower(os.Getenv("NEXO_SANDBOX_MODE"))
	if modeStr == "" {
		modeStr = "auto"
	}

	var mode Mode
	switch Mode(modeStr) {
	case ModeDocker, ModeHost, ModeAuto:
		mode = Mode(modeStr)
	default:
		log.Warn().Str("value", modeStr).Msg("unknown NEXO_SANDBOX_MODE, defaulting to auto")
		mode = ModeAuto
	}

	cmdTimeout := 2 * time.Minute
	if timeoutStr := os.Getenv("NEXO_CMD_TIMEOUT"); timeoutStr != "" {
		if d, err := time.ParseDuration(timeoutStr); err == nil && d > 0 {
			cmdTimeout = d
		} else {
			log.Warn().Str("value", timeoutStr).Msg("invalid NEXO_CMD_TIMEOUT, using default 2m")
		}
	}

	return Config{
		Mode:        mode,
		DockerImage: getEnvOrDefault("NEXO_DOCKER_IMAGE", defaultImage),
		CPU:         getEnvOrDefault("NEXO_DOCKER_CPU", "2"),
		Memory:      getEnvOrDefault("NEXO_DOCKER_MEMORY", "1g"),
		CmdTimeout:  cmdTimeout,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// IsDockerAvailable checks if Docker is available and accessible.
func IsDockerAvailable(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "docker", "ps")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// NewDefaultRunner creates a runner based on configuration and Docker
// availability. Docker mode degrades to the host executor with a warning
// rather than refusing to start.
func NewDefaultRunner(log zerolog.Logger) Runner {
	config := ConfigFromEnv(log)
	ctx := context.Background()

	switch config.Mode {
	case ModeDocker, ModeAuto:
		if !IsDockerAvailable(ctx) {
			log.Warn().Msg("docker not available, using host executor (no sandboxing)")
			return &HostRunner{config: config}
		}
		dockerRunner, err := NewDockerRunner(config)
		if err != nil {
			log.Warn().Err(err).Msg("failed to create docker runner, falling back to host executor")
			return &HostRunner{config: config}
		}
		return dockerRunner

	case ModeHost:
		log.Warn().Msg("using host executor (no sandboxing), intended for development only")
		return &HostRunner{config: config}

	default:
		return &HostRunner{config: config}
	}
}

// NewRunner creates a specific runner implementation.
func NewRunner(mode Mode, config Config) (Runner, error) {
	switch mode {
	case ModeDocker:
		return NewDockerRunner(config)
	case ModeHost:
		return &HostRunner{config: config}, nil
	default:
		return nil, fmt.Errorf("unknown runner mode: %s", mode)
	}
}
