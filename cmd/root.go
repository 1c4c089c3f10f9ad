// Package cmd provides the command-line interface for the jira-agent tool.
package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/danielolaszy/jira-agent/internal/agent"
	"github.com/danielolaszy/jira-agent/internal/config"
	"github.com/danielolaszy/jira-agent/internal/credential"
	"github.com/danielolaszy/jira-agent/internal/logging"
	"github.com/danielolaszy/jira-agent/internal/metrics"
)

const metricsJob = "jira-agent"

var (
	// recorder collects metrics for the current run.
	recorder = metrics.NewRecorder()

	// runConfig is set once a command has loaded configuration.
	runConfig *config.Config

	// newAgent builds the facade for a command. Tests replace it.
	newAgent = defaultAgent
)

var rootCmd = &cobra.Command{
	Use:   "jira-agent",
	Short: "jira-agent manages Jira issues and summarizes them with Amazon Bedrock",
	Long: `jira-agent is a CLI tool that creates, updates, comments on and fetches Jira issues,
and asks a hosted language model on Amazon Bedrock to summarize issue descriptions.

Configuration is read from the environment (or a .env file in the working directory):
JIRA_URL, JIRA_EMAIL, JIRA_API_TOKEN, JIRA_PROJECT_KEY, AWS_REGION, AWS_ACCESS_KEY_ID,
AWS_SECRET_ACCESS_KEY, BEDROCK_MODEL_ID, REQUEST_TIMEOUT, RETRY_MAX_ATTEMPTS,
METRICS_PUSHGATEWAY_URL and LOG_LEVEL.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.With("run_id", uuid.NewString())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return pushMetrics(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP("project", "p", "", "Default Jira project key (overrides JIRA_PROJECT_KEY)")
}

// defaultAgent loads configuration and builds the real Jira and Bedrock clients.
func defaultAgent(ctx context.Context, cmd *cobra.Command) (*agent.Agent, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.ApplyStoredCredentials(cfg, credential.NewStore()); err != nil {
		logging.Warn("could not read stored credentials", "error", err)
	}

	if project, _ := cmd.Flags().GetString("project"); project != "" {
		cfg.Jira.ProjectKey = project
	}
	runConfig = cfg

	a, err := agent.NewFromConfig(ctx, cfg, agent.WithMetrics(recorder))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize agent: %w", err)
	}

	logging.Debug("agent initialized",
		"jira_url", cfg.Jira.URL,
		"project", cfg.Jira.ProjectKey,
		"region", cfg.Bedrock.Region)

	return a, nil
}

// pushMetrics sends run metrics when a Pushgateway is configured. A failed
// push is logged, not returned, so it never fails a completed command.
func pushMetrics(ctx context.Context) error {
	if runConfig == nil || runConfig.Metrics.PushgatewayURL == "" {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if err := recorder.Push(ctx, runConfig.Metrics.PushgatewayURL, metricsJob); err != nil {
		logging.Warn("failed to push metrics", "error", err)
		return nil
	}
	logging.Debug("pushed metrics", "gateway", runConfig.Metrics.PushgatewayURL)
	return nil
}
