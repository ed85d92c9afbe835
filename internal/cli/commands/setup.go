package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/touchset-labs/sqltouch/internal/cli/config"
	"github.com/touchset-labs/sqltouch/pkg/analyzer"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Analyzer *analyzer.Analyzer
}

// NewCommandContext creates a CommandContext for the invoked command.
// The analyzer is shared by all statements of one invocation so repeated
// statements hit its cache.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Analyzer: analyzer.New(analyzer.WithLogger(logger)),
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	return &config.Config{
		Catalog: os.Getenv("SQLTOUCH_CATALOG"),
		Output:  getEnvOrDefault("SQLTOUCH_OUTPUT", config.DefaultOutput),
		Verbose: os.Getenv("SQLTOUCH_VERBOSE") == "true",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
