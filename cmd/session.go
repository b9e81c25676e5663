package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/bnema/hamster-clicker-cli/internal/adapters/telegram"
	"github.com/bnema/hamster-clicker-cli/internal/application"
	"github.com/bnema/hamster-clicker-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newSessionCmd(loader *appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage messaging sessions and their profiles",
	}

	cmd.AddCommand(
		newSessionCreateCmd(loader),
		newSessionListCmd(loader),
		newSessionSetCmd(loader),
	)

	return cmd
}

func newSessionCreateCmd(loader *appLoader) *cobra.Command {
	var name, phone, proxy, alias string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Log in with a phone number and store a new session file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			session, err := app.sessions.PathFor(name)
			if err != nil {
				return err
			}
			if err := (domain.Profile{Session: session.Name, Proxy: proxy}).Validate(); err != nil {
				return err
			}

			prompter := &telegram.Prompter{
				In:          cmd.InOrStdin(),
				Out:         cmd.OutOrStdout(),
				PresetPhone: phone,
			}
			account, err := app.connector.Login(cmd.Context(), session, proxy, prompter)
			if err != nil {
				return err
			}

			update := application.ProfileUpdate{}
			if alias != "" {
				update.Name = &alias
			}
			if proxy != "" {
				update.Proxy = &proxy
			}
			if update.Name != nil || update.Proxy != nil {
				if _, err := app.service.UpdateProfile(cmd.Context(), session.Name, update); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "session %q saved for %s (%s)\n", session.Name, account.DisplayName(), account.ID)
			return err
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Session name (file stem under sessions_dir)")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number in international format (prompted when empty)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "socks5:// proxy for the login and later runs")
	cmd.Flags().StringVar(&alias, "alias", "", "Display name override")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newSessionListCmd(loader *appLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List session files and their profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			entries, err := app.service.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "no sessions in %s\n", app.settings.SessionsDir)
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "SESSION\tNAME\tPROXY\tSTATE")
			for _, entry := range entries {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					entry.Session.Name,
					orDash(entry.Profile.Name),
					orDash(entry.Profile.Proxy),
					sessionState(entry),
				)
			}
			return w.Flush()
		},
	}
}

func newSessionSetCmd(loader *appLoader) *cobra.Command {
	var alias, proxy string
	var disabled bool

	cmd := &cobra.Command{
		Use:   "set <session>",
		Short: "Update the profile of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loader.load(cmd)
			if err != nil {
				return err
			}

			update := application.ProfileUpdate{}
			if cmd.Flags().Changed("alias") {
				update.Name = &alias
			}
			if cmd.Flags().Changed("proxy") {
				update.Proxy = &proxy
			}
			if cmd.Flags().Changed("disabled") {
				update.Disabled = &disabled
			}

			profile, err := app.service.UpdateProfile(cmd.Context(), args[0], update)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "profile %q updated (%s)\n", profile.Session, profileState(profile))
			return err
		},
	}

	cmd.Flags().StringVar(&alias, "alias", "", "Display name override (empty clears it)")
	cmd.Flags().StringVar(&proxy, "proxy", "", "Proxy URL: http://, https:// or socks5:// (empty clears it)")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "Skip this session on run and status")

	return cmd
}

func sessionState(entry application.SessionEntry) string {
	if entry.Missing {
		return "missing file"
	}
	return profileState(entry.Profile)
}

func profileState(profile domain.Profile) string {
	if profile.Disabled {
		return "disabled"
	}
	return "enabled"
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
