package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newDashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Fetch an aggregated dashboard",
	}

	cmd.AddCommand(
		dashboardSubCmd("security", "Failed logins, suspicious IPs, lockouts (window in hours)",
			func(ctx context.Context, w int) (json.RawMessage, error) { return apiClient.Dashboards.Security(ctx, w) }),
		dashboardSubCmd("performance", "Request volume, action stats, failing paths (window in hours)",
			func(ctx context.Context, w int) (json.RawMessage, error) { return apiClient.Dashboards.Performance(ctx, w) }),
		dashboardSubCmd("analytics", "User growth, logins, content activity (window in days)",
			func(ctx context.Context, w int) (json.RawMessage, error) { return apiClient.Dashboards.Analytics(ctx, w) }),
		&cobra.Command{
			Use:   "health",
			Short: "Connectivity, storage, error rates and process stats",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				raw, err := apiClient.Dashboards.Health(cmd.Context())
				if err != nil {
					return fmt.Errorf("health dashboard: %w", err)
				}
				output(raw, "")
				return nil
			},
		},
	)
	return cmd
}

func dashboardSubCmd(name, short string, fetch func(context.Context, int) (json.RawMessage, error)) *cobra.Command {
	var window int
	cmd := &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if window < 0 {
				return fmt.Errorf("--window must be positive")
			}
			raw, err := fetch(cmd.Context(), window)
			if err != nil {
				return fmt.Errorf("%s dashboard: %w", name, err)
			}
			output(raw, "")
			return nil
		},
	}
	cmd.Flags().IntVar(&window, "window", 0, "Window size (0 uses the server default)")
	return cmd
}
