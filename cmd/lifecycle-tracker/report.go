package main

import (
	"github.com/spf13/cobra"

	"github.com/chiwei-platform/lifecycle-tracker/internal/service"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the dashboard summary as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dash, a, err := openDashboard(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		summary, err := dash.Summary(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), summary)
	},
}

var driftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Print technologies whose support status disagrees with their dates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dash, a, err := openDashboard(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		drift, err := dash.StatusDrift(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), drift)
	},
}

func init() {
	rootCmd.AddCommand(statsCmd, driftCmd)
}

func openDashboard(cmd *cobra.Command) (*service.DashboardService, *app, error) {
	a, err := newApp()
	if err != nil {
		return nil, nil, err
	}
	store, err := a.openStore(cmd.Context())
	if err != nil {
		a.close()
		return nil, nil, err
	}
	return service.NewDashboardService(store, nil), a, nil
}
