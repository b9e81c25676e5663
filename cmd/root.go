package cmd

import (
	"github.com/bnema/hamster-clicker-cli/internal/config"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	loader := &appLoader{opts: opts}

	rootCmd := &cobra.Command{
		Use:           "hk",
		Short:         "Hamster Kombat clicker (hk): run a fleet of auto-tapping accounts",
		Long:          "hk drives one Hamster Kombat controller per local messaging session: it authenticates through the game web app, taps, buys the most profitable upgrades and sleeps while energy recovers.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", config.DefaultPath, "Settings file (YAML)")
	flags.StringVar(&opts.envFile, "env-file", config.DefaultEnvFile, "Optional .env file loaded before the settings")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(opts),
		newSessionCmd(loader),
		newRunCmd(loader),
		newStatusCmd(loader),
	)

	return rootCmd
}
