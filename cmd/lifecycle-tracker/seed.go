package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chiwei-platform/lifecycle-tracker/internal/adapter/fixture"
	"github.com/chiwei-platform/lifecycle-tracker/internal/adapter/repository"
	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/port"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load fixture data into the database",
	Long: `Load the embedded sample inventory, or the YAML file given with --file,
into the configured database. Records whose id already exists are skipped.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "fixture YAML file (default: embedded sample data)")
	rootCmd.AddCommand(seedCmd)
}

// seedCounts reports created and skipped records per collection.
type seedCounts struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func runSeed(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	data, err := fixture.LoadFromFile(seedFile)
	if err != nil {
		return err
	}
	data.Stamp(time.Now())

	db, err := a.openDB(cmd.Context())
	if err != nil {
		return err
	}
	report, err := seedStore(cmd.Context(), repository.NewStore(db), data)
	if err != nil {
		return err
	}
	a.log.Info("seed finished", zap.Any("result", report))
	return printJSON(cmd.OutOrStdout(), report)
}

func seedStore(ctx context.Context, store port.Store, data *fixture.Data) (map[string]seedCounts, error) {
	report := map[string]seedCounts{}
	var err error
	if report["technologies"], err = seed(ctx, data.Technologies, func(t domain.Technology) string { return t.ID },
		store.Technologies().FindByID, store.Technologies().Save); err != nil {
		return nil, fmt.Errorf("seed technologies: %w", err)
	}
	if report["servers"], err = seed(ctx, data.Servers, func(s domain.Server) string { return s.ID },
		store.Servers().FindByID, store.Servers().Save); err != nil {
		return nil, fmt.Errorf("seed servers: %w", err)
	}
	if report["applications"], err = seed(ctx, data.Applications, func(a domain.Application) string { return a.ID },
		store.Applications().FindByID, store.Applications().Save); err != nil {
		return nil, fmt.Errorf("seed applications: %w", err)
	}
	if report["remediations"], err = seed(ctx, data.Remediations, func(r domain.Remediation) string { return r.ID },
		store.Remediations().FindByID, store.Remediations().Save); err != nil {
		return nil, fmt.Errorf("seed remediations: %w", err)
	}
	return report, nil
}

func seed[T any](
	ctx context.Context,
	items []T,
	id func(T) string,
	find func(context.Context, string) (*T, error),
	save func(context.Context, *T) error,
) (seedCounts, error) {
	var c seedCounts
	for i := range items {
		_, err := find(ctx, id(items[i]))
		switch {
		case err == nil:
			c.Skipped++
			continue
		case !errors.Is(err, domain.ErrNotFound):
			return c, err
		}
		if err := save(ctx, &items[i]); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				c.Skipped++
				continue
			}
			return c, fmt.Errorf("%s: %w", id(items[i]), err)
		}
		c.Created++
	}
	return c, nil
}
