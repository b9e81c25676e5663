package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	statusadapter "github.com/bnema/hamster-clicker-cli/internal/adapters/render/status"
	"github.com/spf13/cobra"
)

func newRunCmd(loader *appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run every enabled account until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			fleet, err := app.newFleet()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.logger.Info("starting fleet", "sessions_dir", app.settings.SessionsDir)
			runErr := fleet.Run(ctx)

			stats := fleet.Stats()
			if len(stats) == 0 {
				return runErr
			}

			rendered, err := app.statusRenderer(stats, statusadapter.RenderOptions{
				Title:   "Run summary",
				Now:     app.now(),
				Summary: true,
			})
			if err != nil {
				return errors.Join(runErr, fmt.Errorf("render summary: %w", err))
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), rendered); err != nil {
				return errors.Join(runErr, err)
			}

			return runErr
		},
	}
}
