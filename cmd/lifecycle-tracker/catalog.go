package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chiwei-platform/lifecycle-tracker/internal/domain"
	"github.com/chiwei-platform/lifecycle-tracker/internal/service"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Work with the external software catalog",
}

var catalogSyncCmd = &cobra.Command{
	Use:   "sync [id...]",
	Short: "Import catalog products as technologies",
	Long: `Import the listed catalog products, or every product when none is given.
Products whose name and version are already tracked are left alone.

With --instances the ids name catalog instances instead. Each instance becomes
an active server, or is matched to a tracked server by hostname, and is linked
to the technologies of its installed products.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()
		if !a.cfg.Catalog.Enabled() {
			return fmt.Errorf("%w: set catalog.api_key", domain.ErrCatalogDisabled)
		}

		store, err := a.openStore(cmd.Context())
		if err != nil {
			return err
		}
		svc := service.NewCatalogService(a.catalogClient(), store.Technologies(), store.Servers(), a.log)
		if syncInstances {
			res, err := svc.ImportInstances(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		}
		res, err := svc.Import(cmd.Context(), args)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), res)
	},
}

var syncInstances bool

func init() {
	catalogSyncCmd.Flags().BoolVar(&syncInstances, "instances", false, "import catalog instances as servers")
	catalogCmd.AddCommand(catalogSyncCmd)
	rootCmd.AddCommand(catalogCmd)
}
