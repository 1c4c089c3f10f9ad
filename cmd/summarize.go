package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jira-agent/internal/logging"
)

// summarizeCmd asks the model to summarize an issue description.
var summarizeCmd = &cobra.Command{
	Use:   "summarize ISSUE-KEY",
	Short: "Summarize a Jira issue description with Amazon Bedrock",
	Long: `Fetch a Jira issue and ask the configured Bedrock model for a concise summary of its
description.

Issues without a description are reported without calling the model. With --post, a
successfully generated summary is added to the issue as a comment.

Example:
  jira-agent summarize PROJ-123 --post`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		post, _ := cmd.Flags().GetBool("post")
		key := args[0]

		a, err := newAgent(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		summary, err := a.SummarizeDescription(cmd.Context(), key)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), summary.String())

		if !post {
			return nil
		}
		if !summary.OK() {
			logging.Warn("not posting summary", "key", key, "outcome", summary.Outcome.String())
			return nil
		}

		if err := a.PostSummary(cmd.Context(), key, summary); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "\nAdded summary as a comment to issue: %s\n", key)
		return nil
	},
}

func init() {
	summarizeCmd.Flags().Bool("post", false, "Post the generated summary as a comment")
	rootCmd.AddCommand(summarizeCmd)
}
