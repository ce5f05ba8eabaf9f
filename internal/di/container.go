package di

import (
	"context"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/inbox-clusterer/internal/adapters/session"
	"github.com/mikey/inbox-clusterer/internal/adapters/web"
	"github.com/mikey/inbox-clusterer/internal/config"
	"github.com/mikey/inbox-clusterer/internal/core"
	"github.com/mikey/inbox-clusterer/internal/factory"
	"github.com/mikey/inbox-clusterer/internal/logging"
	"github.com/mikey/inbox-clusterer/internal/ports"
	"github.com/mikey/inbox-clusterer/internal/scheduler"
	"github.com/mikey/inbox-clusterer/internal/utils"
)

// BuildContainer creates and configures a dependency injection container for
// the daemon. An empty configFile searches the default locations.
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.NewFromFile(configFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCommon(container); err != nil {
		return nil, err
	}

	// Register run notifier
	if err := container.Provide(func(f *factory.NotifierFactory) (core.Notifier, error) {
		return f.CreateNotifier()
	}); err != nil {
		return nil, err
	}

	// Register session store
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (ports.SessionStore, error) {
		serverCfg, err := cfg.GetServer()
		if err != nil {
			return nil, err
		}
		storageCfg, err := cfg.GetStorage()
		if err != nil {
			return nil, err
		}
		return session.NewMemoryStore(logger, serverCfg.SessionTTL, storageCfg.CleanupFrequency), nil
	}); err != nil {
		return nil, err
	}

	// Register user service
	if err := container.Provide(func(store ports.Store, logger *zap.Logger) *core.UserService {
		return core.NewUserService(store, logger)
	}); err != nil {
		return nil, err
	}

	// Register web server
	if err := container.Provide(func(
		cfg *config.Config,
		service *core.ClusteringService,
		users *core.UserService,
		store ports.Store,
		sessions ports.SessionStore,
		logger *zap.Logger,
	) (*web.Server, error) {
		serverCfg, err := cfg.GetServer()
		if err != nil {
			return nil, err
		}
		return web.NewServer(service, users, store, sessions, logger, serverCfg.ListenAddress, serverCfg.SessionTTL)
	}); err != nil {
		return nil, err
	}

	// Register scheduler
	if err := container.Provide(func(
		cfg *config.Config,
		service *core.ClusteringService,
		store ports.Store,
		notifier core.Notifier,
		logger *zap.Logger,
	) (*scheduler.Scheduler, error) {
		scheduleCfg, err := cfg.GetSchedule()
		if err != nil {
			return nil, err
		}
		return scheduler.New(service, store, notifier, logger.Named("scheduler"), scheduler.Options{
			Cron:      scheduleCfg.Cron,
			UserEmail: scheduleCfg.UserEmail,
			Lookback:  scheduleCfg.Lookback,
		})
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCommon registers the factories and pipeline shared by the daemon and the CLI
func provideCommon(container *dig.Container) error {
	// Register factories
	for _, constructor := range []interface{}{
		factory.NewStoreFactory,
		factory.NewSourceFactory,
		factory.NewSummarizerFactory,
		factory.NewNotifierFactory,
		factory.NewPipelineFactory,
		factory.NewTextProcessorFactory,
	} {
		if err := container.Provide(constructor); err != nil {
			return err
		}
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register email source
	if err := container.Provide(func(f *factory.SourceFactory) (*factory.Source, error) {
		return f.CreateSource()
	}); err != nil {
		return err
	}

	// Register store
	if err := container.Provide(func(f *factory.StoreFactory) (ports.Store, error) {
		return f.CreateStore()
	}); err != nil {
		return err
	}

	// Register summarizer
	if err := container.Provide(func(f *factory.SummarizerFactory) (core.Summarizer, error) {
		return f.CreateSummarizer(context.Background())
	}); err != nil {
		return err
	}

	// Register clustering service
	if err := container.Provide(func(
		f *factory.PipelineFactory,
		src *factory.Source,
		summarizer core.Summarizer,
		textProcessor *utils.TextProcessor,
		store ports.Store,
	) (*core.ClusteringService, error) {
		return f.CreateService(src, summarizer, textProcessor, store)
	}); err != nil {
		return err
	}

	return nil
}
