// Package cmd provides the operator commands for the shade configurator.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	appconfigurator "github.com/shadecraft/backend/internal/application/configurator"
	domainstrategy "github.com/shadecraft/backend/internal/domain/shared/strategy"
	"github.com/shadecraft/backend/internal/infrastructure/cache"
	"github.com/shadecraft/backend/internal/infrastructure/catalog"
	"github.com/shadecraft/backend/internal/infrastructure/config"
	"github.com/shadecraft/backend/internal/infrastructure/logger"
	"github.com/shadecraft/backend/internal/infrastructure/persistence"
	"github.com/shadecraft/backend/internal/infrastructure/pricing"
)

var (
	cfgFile     string
	catalogFile string
	verbose     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "configurator",
	Short: "Operate the shade configurator catalog, prices and saved configurations",
	Long: `configurator works against the same catalog and configuration store as the
API server, using the same config.toml and SHADE_ environment variables.

Examples:
  configurator catalog list
  configurator quote cellular-shade --width 42 --height 60 --option "Control Type=Motorized"
  configurator configs list --product cellular-shade
  configurator configs delete 3f6c0a5e-...`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.toml)")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "catalog file (overrides catalog.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(quoteCmd)
	rootCmd.AddCommand(configsCmd)
}

// app holds the services a command works with
type app struct {
	catalog *catalog.MemoryCatalog
	pricing *appconfigurator.PricingService
	configs *appconfigurator.ConfigurationService
	close   func() error
}

// openApp builds the services from configuration. Tests replace it.
var openApp = func(ctx context.Context) (*app, error) {
	cfg, err := config.LoadFrom(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if catalogFile != "" {
		cfg.Catalog.Path = catalogFile
	}

	level := "warn"
	if verbose {
		level = "debug"
	}
	log, err := logger.New(&logger.Config{
		Level:      level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "15:04:05",
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	def, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	cat := catalog.NewMemoryCatalog(def.Products)

	var db *persistence.Database
	if cfg.Store.Backend == config.StoreBackendDatabase {
		db, err = persistence.NewDatabase(&cfg.Database, persistence.WithLogger(log, level, 0))
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
	}
	factoryOpts := []cache.StoreFactoryOption{cache.WithLogger(log)}
	if db != nil {
		factoryOpts = append(factoryOpts, cache.WithDatabase(db.DB))
	}
	stores := cache.NewStoreFactory(cfg, factoryOpts...)
	store, err := stores.ConfigurationStore(ctx)
	if err != nil {
		return nil, err
	}
	repo := persistence.NewKeyedConfigurationRepository(store, cfg.Store.Key, log)

	var localOpts []domainstrategy.LocalPricingOption
	if len(def.Surcharges) > 0 {
		localOpts = append(localOpts, domainstrategy.WithSurcharges(def.Surcharges))
	}
	local := domainstrategy.NewLocalPricingStrategy(localOpts...)

	var remote domainstrategy.PricingStrategy
	if cfg.Pricing.RemoteURL != "" {
		client, err := pricing.NewRemotePricingClient(cfg.Pricing.RemoteURL, cfg.Pricing.Timeout, pricing.WithLogger(log))
		if err != nil {
			return nil, err
		}
		remote = client
	}
	pricingService := appconfigurator.NewPricingService(cat, remote, local, log)

	return &app{
		catalog: cat,
		pricing: pricingService,
		configs: appconfigurator.NewConfigurationService(repo, cat, pricingService, log),
		close: func() error {
			defer func() { _ = log.Sync() }()
			if err := stores.Close(); err != nil {
				log.Warn("Error closing stores", zap.Error(err))
			}
			if db != nil {
				return db.Close()
			}
			return nil
		},
	}, nil
}

// withApp opens the services for the duration of fn
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if a.close != nil {
			_ = a.close()
		}
	}()
	return fn(a)
}
