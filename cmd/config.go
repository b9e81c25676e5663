package cmd

import (
	"fmt"
	"io"
	"os"

	hashcache "github.com/bnema/hamster-clicker-cli/internal/adapters/cache/json"
	"github.com/bnema/hamster-clicker-cli/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the settings file",
	}

	cmd.AddCommand(newConfigInitCmd(opts), newConfigShowCmd(opts))

	return cmd
}

func newConfigInitCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default settings file, an empty access-hash cache and the sessions directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			written, err := config.WriteDefault(opts.configPath, force)
			if err != nil {
				return err
			}
			report(out, written, opts.configPath)

			settings, err := config.Read(config.LoadOptions{Path: opts.configPath, EnvFile: opts.envFile})
			if err != nil {
				return err
			}

			written, err = hashcache.Init(settings.AccessHashesPath)
			if err != nil {
				return err
			}
			report(out, written, settings.AccessHashesPath)

			if err := os.MkdirAll(settings.SessionsDir, 0o700); err != nil {
				return fmt.Errorf("create sessions directory: %w", err)
			}

			if settings.APIID <= 0 || settings.APIHash == "" {
				_, _ = fmt.Fprintf(out, "set api_id and api_hash in %s before running\n", opts.configPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing settings file")

	return cmd
}

func newConfigShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings with the api hash masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.Load(config.LoadOptions{Path: opts.configPath, EnvFile: opts.envFile})
			if err != nil {
				return err
			}

			data, err := config.Marshal(settings)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func report(out io.Writer, written bool, path string) {
	if written {
		_, _ = fmt.Fprintf(out, "wrote %s\n", path)
		return
	}
	_, _ = fmt.Fprintf(out, "%s already exists\n", path)
}
