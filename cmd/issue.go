package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/jira-agent/internal/logging"
	"github.com/danielolaszy/jira-agent/pkg/models"
)

// createCmd creates a new Jira issue.
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a Jira issue",
	Long: `Create a new Jira issue and print its key.

The project comes from --project, falling back to JIRA_PROJECT_KEY. Calling
create twice creates two issues.

Example:
  jira-agent create -p PROJ --summary "Update auth" --description "Add 2FA" --type Story`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, _ := cmd.Flags().GetString("summary")
		description, _ := cmd.Flags().GetString("description")
		issueType, _ := cmd.Flags().GetString("type")

		if strings.TrimSpace(summary) == "" {
			return fmt.Errorf("summary flag is required")
		}

		a, err := newAgent(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		key, err := a.CreateIssue(cmd.Context(), models.NewIssue{
			Summary:     summary,
			Description: description,
			IssueType:   issueType,
		})
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), key)
		return nil
	},
}

// updateCmd changes fields on an existing issue.
var updateCmd = &cobra.Command{
	Use:   "update ISSUE-KEY",
	Short: "Update fields of a Jira issue",
	Long: `Update fields of an existing Jira issue. Only flags that are given are changed.

Custom fields are set with --field customfield_<id>=<value>. Numbers are sent as
numbers, comma-separated values as lists and "option:<name>" as a select option.

Example:
  jira-agent update PROJ-123 --summary "New title" --label backend --field customfield_10016=5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		update, err := buildIssueUpdate(cmd)
		if err != nil {
			return err
		}

		a, err := newAgent(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		if err := a.UpdateIssue(cmd.Context(), args[0], update); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", args[0])
		return nil
	},
}

// commentCmd appends a comment to an issue.
var commentCmd = &cobra.Command{
	Use:   "comment ISSUE-KEY TEXT",
	Short: "Add a comment to a Jira issue",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(args[1]) == "" {
			return fmt.Errorf("comment text cannot be empty")
		}

		a, err := newAgent(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		if err := a.AddComment(cmd.Context(), args[0], args[1]); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Added comment to %s\n", args[0])
		return nil
	},
}

// getCmd prints an issue.
var getCmd = &cobra.Command{
	Use:   "get ISSUE-KEY",
	Short: "Show a Jira issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newAgent(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		issue, err := a.GetIssue(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), issue)
		}
		printIssue(cmd.OutOrStdout(), issue)
		return nil
	},
}

func init() {
	createCmd.Flags().StringP("summary", "s", "", "Issue summary (required)")
	createCmd.Flags().StringP("description", "d", "", "Issue description")
	createCmd.Flags().StringP("type", "t", models.DefaultIssueType, "Issue type (Task, Bug, Story, ...)")

	addUpdateFlags(updateCmd)

	getCmd.Flags().Bool("json", false, "Print the issue as JSON")

	rootCmd.AddCommand(createCmd, updateCmd, commentCmd, getCmd)
}

func addUpdateFlags(cmd *cobra.Command) {
	cmd.Flags().String("summary", "", "New summary")
	cmd.Flags().String("description", "", "New description")
	cmd.Flags().String("type", "", "New issue type")
	cmd.Flags().String("priority", "", "New priority name")
	cmd.Flags().StringArray("label", []string{}, "Label to set (can be specified multiple times)")
	cmd.Flags().StringArray("field", []string{}, "Custom field as customfield_<id>=<value> (can be specified multiple times)")
}

// buildIssueUpdate collects the flags that were set on the update command.
func buildIssueUpdate(cmd *cobra.Command) (models.IssueUpdate, error) {
	var update models.IssueUpdate
	flags := cmd.Flags()

	stringFlag := func(name string) *string {
		if !flags.Changed(name) {
			return nil
		}
		value, _ := flags.GetString(name)
		return &value
	}

	update.Summary = stringFlag("summary")
	update.Description = stringFlag("description")
	update.IssueType = stringFlag("type")
	update.Priority = stringFlag("priority")

	if flags.Changed("label") {
		update.Labels, _ = flags.GetStringArray("label")
	}

	if flags.Changed("field") {
		raw, _ := flags.GetStringArray("field")
		custom, err := parseCustomFields(raw)
		if err != nil {
			return models.IssueUpdate{}, err
		}
		update.Custom = custom
	}

	if update.IsEmpty() {
		return models.IssueUpdate{}, fmt.Errorf("nothing to update: pass at least one field flag")
	}

	return update, nil
}

// parseCustomFields parses name=value pairs into typed field values.
func parseCustomFields(raw []string) (map[string]models.FieldValue, error) {
	fields := make(map[string]models.FieldValue, len(raw))
	for _, pair := range raw {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid field %q, expected name=value", pair)
		}
		if _, dup := fields[name]; dup {
			return nil, fmt.Errorf("field %q given more than once", name)
		}
		fields[name] = models.ParseFieldValue(value)
	}

	logging.Debug("parsed custom fields", "count", len(fields))
	return fields, nil
}

func printIssue(w io.Writer, issue *models.Issue) {
	fmt.Fprintf(w, "Key:         %s\n", issue.Key)
	fmt.Fprintf(w, "Summary:     %s\n", issue.Summary)
	if issue.IssueType != "" {
		fmt.Fprintf(w, "Type:        %s\n", issue.IssueType)
	}
	fmt.Fprintf(w, "Status:      %s\n", issue.Status)
	fmt.Fprintf(w, "Created:     %s\n", issue.Created)
	fmt.Fprintf(w, "Updated:     %s\n", issue.Updated)
	if issue.Description != "" {
		fmt.Fprintf(w, "\n%s\n", issue.Description)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
