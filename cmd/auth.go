package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/jira-agent/internal/credential"
	"github.com/danielolaszy/jira-agent/internal/logging"
)

// tokenStore is the keyring used by the auth commands. Tests replace it.
var tokenStore interface {
	Set(key, value string) error
	Delete(key string) error
} = credential.NewStore()

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the stored Jira API token",
	Long: `Store the Jira API token in the operating system keyring. The stored token is used
whenever JIRA_API_TOKEN is not set.`,
}

var setTokenCmd = &cobra.Command{
	Use:   "set-token",
	Short: "Store the Jira API token in the keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Jira API token").
					Description("Create one at id.atlassian.com under Security > API tokens").
					EchoMode(huh.EchoModePassword).
					Value(&token).
					Validate(func(s string) error {
						if strings.TrimSpace(s) == "" {
							return fmt.Errorf("token is required")
						}
						return nil
					}),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("reading token: %w", err)
		}

		if err := tokenStore.Set(credential.JiraTokenKey, strings.TrimSpace(token)); err != nil {
			return err
		}

		logging.Info("stored jira api token", "token", logging.MaskSensitive(token))
		fmt.Fprintln(cmd.OutOrStdout(), "Stored Jira API token in the keyring")
		return nil
	},
}

var deleteTokenCmd = &cobra.Command{
	Use:   "delete-token",
	Short: "Remove the Jira API token from the keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		err := tokenStore.Delete(credential.JiraTokenKey)
		if errors.Is(err, credential.ErrNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "No Jira API token stored")
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Removed Jira API token from the keyring")
		return nil
	},
}

func init() {
	authCmd.AddCommand(setTokenCmd, deleteTokenCmd)
	rootCmd.AddCommand(authCmd)
}
