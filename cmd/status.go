package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	statusadapter "github.com/bnema/hamster-clicker-cli/internal/adapters/render/status"
	"github.com/bnema/hamster-clicker-cli/internal/application"
	"github.com/spf13/cobra"
)

func newStatusCmd(loader *appLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Sync every account once and show balances and energy",
		Long:  "status connects each enabled account, authenticates and syncs once. It never taps or buys upgrades.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			stats, err := fetchStats(cmd, app, !asJSON)
			if err != nil {
				return err
			}

			return writeStatsOutput(cmd, app, stats, asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func fetchStats(cmd *cobra.Command, app *app, withSpinner bool) ([]application.Stats, error) {
	fleet, err := app.newFleet()
	if err != nil {
		return nil, err
	}

	var stats []application.Stats
	sync := func(ctx context.Context, report func(string)) error {
		if err := fleet.Prepare(ctx); err != nil {
			return err
		}
		report(fmt.Sprintf("Syncing accounts (%d)...", len(fleet.Controllers())))
		stats = fleet.Snapshot(ctx)
		return nil
	}

	var fetchErr error
	if withSpinner {
		fetchErr = runSyncProgress(cmd.Context(), cmd.ErrOrStderr(), "Connecting sessions...", sync)
	} else {
		fetchErr = sync(cmd.Context(), func(string) {})
	}

	shutdownErr := fleet.Shutdown(context.WithoutCancel(cmd.Context()))
	if err := errors.Join(fetchErr, shutdownErr); err != nil {
		return nil, err
	}

	return stats, nil
}

func writeStatsOutput(cmd *cobra.Command, app *app, stats []application.Stats, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	}

	rendered, err := app.statusRenderer(stats, statusadapter.RenderOptions{
		Now:        app.now(),
		StaleAfter: app.settings.ReauthInterval,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}
