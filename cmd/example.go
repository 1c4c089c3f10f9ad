package cmd

import (
	"fmt"
	"regexp"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/jira-agent/internal/agent"
	"github.com/danielolaszy/jira-agent/pkg/models"
)

const exampleDescription = `This is a test issue created by the Jira agent.
It contains a detailed description that will be summarized using Amazon Bedrock.

The issue describes a new feature request for the application:
1. User authentication system needs to be updated
2. New password requirements should be implemented
3. Two-factor authentication should be added
4. Session management needs improvement

Additional considerations:
- Security audit required
- User training materials needed
- Documentation updates required
- Testing plan to be developed`

var projectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)

// promptProjectKey asks for a project key. Tests replace it.
var promptProjectKey = func() (string, error) {
	var projectKey string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Jira project key").
				Description("The project the example issue is created in").
				Placeholder("PROJ").
				Value(&projectKey).
				Validate(validateProjectKey),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("reading project key: %w", err)
	}
	return projectKey, nil
}

func validateProjectKey(s string) error {
	if !projectKeyPattern.MatchString(s) {
		return fmt.Errorf("project keys are upper case letters and digits, e.g. PROJ")
	}
	return nil
}

// exampleCmd walks through every operation against a live Jira project.
var exampleCmd = &cobra.Command{
	Use:   "example",
	Short: "Run an interactive end-to-end example",
	Long: `Prompt for a project key, create an example issue with a long description,
summarize it with Bedrock, post the summary as a comment and print the issue.

This creates a real issue in the chosen project.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectKey, _ := cmd.Flags().GetString("project")
		if projectKey == "" {
			var err error
			projectKey, err = promptProjectKey()
			if err != nil {
				return err
			}
		}

		a, err := newAgent(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		return runExample(cmd, a, projectKey)
	},
}

func init() {
	rootCmd.AddCommand(exampleCmd)
}

func runExample(cmd *cobra.Command, a *agent.Agent, projectKey string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	issueKey, err := a.CreateIssue(ctx, models.NewIssue{
		ProjectKey:  projectKey,
		Summary:     "Test Issue with Long Description",
		Description: exampleDescription,
		IssueType:   models.DefaultIssueType,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Created issue: %s\n", issueKey)

	summary, err := a.SummarizeDescription(ctx, issueKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nSummary of the issue description:")
	fmt.Fprintln(out, summary.String())

	if summary.OK() {
		if err := a.PostSummary(ctx, issueKey, summary); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nAdded summary as a comment to issue: %s\n", issueKey)
	} else {
		fmt.Fprintf(out, "\nSkipped posting a comment to issue %s: %s\n", issueKey, summary.Outcome)
	}

	issue, err := a.GetIssue(ctx, issueKey)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nIssue details:")
	printIssue(out, issue)
	return nil
}
