package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/chiwei-platform/lifecycle-tracker/internal/adapter/fixture"
	"github.com/chiwei-platform/lifecycle-tracker/internal/adapter/flexera"
	"github.com/chiwei-platform/lifecycle-tracker/internal/adapter/repository"
	"github.com/chiwei-platform/lifecycle-tracker/internal/config"
	"github.com/chiwei-platform/lifecycle-tracker/internal/logging"
	"github.com/chiwei-platform/lifecycle-tracker/internal/metrics"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "lifecycle-tracker",
	Short: "Track end-of-life software across servers and applications",
	Long: `lifecycle-tracker keeps an inventory of technologies, servers, applications
and remediations, and reports which active servers still run end-of-life
software.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ./lifecycle-tracker.yaml)")
}

// app holds what every command needs, built once from the configuration.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	metrics *metrics.Metrics
	db      *gorm.DB
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: log, metrics: metrics.New()}, nil
}

// openStore returns the store selected by data_source.
func (a *app) openStore(ctx context.Context) (port.Store, error) {
	if a.cfg.DataSource == config.DataSourceFixture {
		data, err := fixture.LoadFromFile(a.cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		a.log.Info("serving fixture data",
			zap.String("path", a.cfg.FixturePath),
			zap.Int("technologies", len(data.Technologies)),
			zap.Int("servers", len(data.Servers)),
		)
		return fixture.NewStore(data)
	}
	db, err := a.openDB(ctx)
	if err != nil {
		return nil, err
	}
	return repository.NewStore(db), nil
}

func (a *app) openDB(ctx context.Context) (*gorm.DB, error) {
	profile := a.cfg.ActiveDatabase()
	db, err := repository.OpenDB(ctx, profile.Type, profile.DSN, a.cfg.Database.ConnectTimeout, a.log)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) catalogClient() *flexera.Client {
	c := a.cfg.Catalog
	return flexera.NewClient(c.APIURL, c.APIKey, c.CacheTTL, flexera.WithObserver(a.metrics.RecordCatalogCall))
}

func (a *app) close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.log.Sync()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
