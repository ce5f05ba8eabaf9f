package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/inbox-clusterer/internal/adapters/web"
	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/mikey/inbox-clusterer/internal/di"
	"github.com/mikey/inbox-clusterer/internal/factory"
	"github.com/mikey/inbox-clusterer/internal/ports"
	"github.com/mikey/inbox-clusterer/internal/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:          "inbox-clusterd",
		Short:        "Serve the inbox clustering web interface and scheduled runs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Build the dependency injection container
			container, err := di.BuildContainer(configFile)
			if err != nil {
				return fmt.Errorf("failed to build dependency container: %w", err)
			}
			return container.Invoke(run)
		},
	}
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	server *web.Server,
	sched *scheduler.Scheduler,
	src *factory.Source,
	store ports.Store,
	sessions ports.SessionStore,
	summarizer core.Summarizer,
) error {
	defer logger.Sync()

	servers := []ports.Server{server, sched}
	if src.Listener != nil {
		servers = append(servers, src.Listener)
	}

	var started []ports.Server
	defer func() {
		for i := len(started) - 1; i >= 0; i-- {
			if err := started[i].Stop(); err != nil {
				logger.Error("Failed to stop component", zap.Error(err))
			}
		}

		if closer, ok := summarizer.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close summarizer", zap.Error(err))
			}
		}

		// Stop the session cleanup if needed
		if stopper, ok := sessions.(interface{ Stop() }); ok {
			stopper.Stop()
		}

		if err := store.Close(); err != nil {
			logger.Error("Failed to close store", zap.Error(err))
		}
		logger.Info("Shutdown complete")
	}()

	for _, s := range servers {
		if err := s.Start(); err != nil {
			logger.Error("Failed to start component", zap.Error(err))
			return err
		}
		started = append(started, s)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if src.Watcher != nil {
		if err := src.Watcher.Watch(ctx, sched.Trigger); err != nil {
			logger.Error("Failed to watch email source", zap.Error(err))
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")
	return nil
}
