package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/inbox-clusterer/internal/adapters/store"
	"github.com/mikey/inbox-clusterer/internal/config"
	"github.com/mikey/inbox-clusterer/internal/ports"
	"go.uber.org/zap"
)

// StoreFactory creates cluster and user stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates a store based on the configuration
func (f *StoreFactory) CreateStore() (ports.Store, error) {
	storageCfg, err := f.cfg.GetStorage()
	if err != nil {
		return nil, err
	}

	switch storageCfg.Type {
	case "memory":
		return store.NewMemoryStore(f.logger, storageCfg.Retention, storageCfg.CleanupFrequency), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(storageCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(storageCfg.SQLitePath, f.logger, storageCfg.Retention, storageCfg.CleanupFrequency)
	case "mysql":
		return store.NewMySQLStore(storageCfg.MySQLDSN, f.logger, storageCfg.Retention, storageCfg.CleanupFrequency)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageCfg.Type)
	}
}
