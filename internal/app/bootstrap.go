package app

import (
	"errors"
	"io/fs"
	"log/slog"

	"pyth_index/internal/engine"
	"pyth_index/internal/infra"
	"pyth_index/internal/infra/accounts"
	"pyth_index/internal/infra/storage"
	"pyth_index/internal/registry"
	"pyth_index/internal/service"

	"github.com/joho/godotenv"
)

// DefaultConfigPath is where Initialize looks for the configuration file.
const DefaultConfigPath = "configs/config.yaml"

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config    *infra.Config
	Storage   *storage.Storage
	Accounts  *accounts.Store
	Registry  *registry.Registry
	Service   *service.OracleService
	Processor *engine.Processor
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, logger, DB, registry).
// A missing config file is not an error: defaults and environment overrides apply.
// Variables from a .env file in the working directory are loaded first.
func (b *Bootstrap) Initialize(configPath string) error {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	// 1. Load .env (existing environment wins), then Config
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	cfg, err := infra.LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		cfg, err = infra.ParseConfig(nil)
	}
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)
	slog.Debug("Bootstrapping", slog.String("app", cfg.App.Name), slog.String("config", configPath))

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store

	// 4. Restore Registry
	reg := registry.New(registry.Options{UniqueNames: cfg.Registry.UniqueNames})
	entries, nextID, err := store.LoadRegistry()
	if err != nil {
		store.Close()
		return err
	}
	reg.Restore(registry.State{Entries: entries, NextID: nextID})
	b.Registry = reg
	slog.Debug("Registry restored", slog.Int("indices", reg.Len()))

	// 5. Accounts, Service and Processor
	b.Accounts = accounts.NewDirStore(cfg.Accounts.Dir)
	b.Service = service.NewOracleService(b.Accounts, reg, service.Options{
		WindowLimit: cfg.Walker.WindowLimit,
		Logger:      logger,
		Metrics:     infra.GlobalMetrics,
		Repository:  store,
	})
	b.Processor = engine.NewProcessor(b.Service, 64, infra.GlobalMetrics)

	return nil
}

// Close releases the database connection.
func (b *Bootstrap) Close() error {
	if b.Storage == nil {
		return nil
	}
	return b.Storage.Close()
}
