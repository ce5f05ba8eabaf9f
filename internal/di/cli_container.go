package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-clusterer/internal/config"
	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/mikey/inbox-clusterer/internal/logging"
	"github.com/mikey/inbox-clusterer/internal/ports"
)

// CLIFlags contains the command line flags shared by the CLI commands
type CLIFlags struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool

	// InputFile overrides the configured source with a JSON email file
	InputFile string
	// Provider overrides the configured summarizer provider
	Provider string
	// Ephemeral keeps users and clusters in memory instead of the configured store
	Ephemeral bool
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.NewFromFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Debug("Loaded configuration from file", zap.String("file", used))
		}
		applyFlags(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register user service
	if err := container.Provide(func(store ports.Store, logger *zap.Logger) *core.UserService {
		return core.NewUserService(store, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// applyFlags overrides configuration values with the command line flags that were set
func applyFlags(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()
	if flags.InputFile != "" {
		v.Set("source.type", "file")
		v.Set("source.file.path", flags.InputFile)
	}
	if flags.Provider != "" {
		v.Set("summarizer.provider", flags.Provider)
	}
	if flags.Ephemeral {
		v.Set("storage.type", "memory")
	}
	// The CLI never watches files
	v.Set("source.file.watch", false)
}
