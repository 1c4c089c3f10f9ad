// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/danielolaszy/jira-agent/internal/credential"
)

const (
	// DefaultRegion is the Bedrock region used when AWS_REGION is unset.
	DefaultRegion = "us-east-1"
	// DefaultModelID is the Bedrock model used for summaries.
	DefaultModelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	// DefaultEnvFile is read from the working directory when present.
	DefaultEnvFile = ".env"
)

// Config holds all configuration parameters for the application.
type Config struct {
	Jira    JiraConfig
	Bedrock BedrockConfig
	Client  ClientConfig
	Metrics MetricsConfig
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL        string
	Email      string
	APIToken   string
	ProjectKey string
}

// BedrockConfig holds the model-invocation configuration.
type BedrockConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	ModelID         string
}

// ClientConfig bounds every remote call.
type ClientConfig struct {
	Timeout     time.Duration
	MaxAttempts int
}

// MetricsConfig controls where run metrics are pushed.
type MetricsConfig struct {
	PushgatewayURL string
}

type binding struct {
	key string
	env string
	def any
}

var bindings = []binding{
	{key: "jira.url", env: "JIRA_URL"},
	{key: "jira.email", env: "JIRA_EMAIL"},
	{key: "jira.api_token", env: "JIRA_API_TOKEN"},
	{key: "jira.project_key", env: "JIRA_PROJECT_KEY"},
	{key: "bedrock.region", env: "AWS_REGION", def: DefaultRegion},
	{key: "bedrock.access_key_id", env: "AWS_ACCESS_KEY_ID"},
	{key: "bedrock.secret_access_key", env: "AWS_SECRET_ACCESS_KEY"},
	{key: "bedrock.session_token", env: "AWS_SESSION_TOKEN"},
	{key: "bedrock.model_id", env: "BEDROCK_MODEL_ID", def: DefaultModelID},
	{key: "client.timeout", env: "REQUEST_TIMEOUT", def: 30 * time.Second},
	{key: "client.max_attempts", env: "RETRY_MAX_ATTEMPTS", def: 3},
	{key: "metrics.pushgateway_url", env: "METRICS_PUSHGATEWAY_URL"},
}

// LoadConfig loads configuration from the environment, falling back to a
// .env file in the working directory.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultEnvFile)
}

// LoadConfigFrom loads configuration from the environment, using envFile for
// any variable the environment leaves unset. A missing envFile is not an error.
func LoadConfigFrom(envFile string) (*Config, error) {
	fileValues, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	for _, b := range bindings {
		if b.def != nil {
			v.SetDefault(b.key, b.def)
		}
		// the file sits between the environment and the built-in defaults
		if fileValues != nil && fileValues.IsSet(b.env) {
			v.SetDefault(b.key, fileValues.Get(b.env))
		}
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", b.env, err)
		}
	}

	config := &Config{
		Jira: JiraConfig{
			URL:        strings.TrimRight(v.GetString("jira.url"), "/"),
			Email:      v.GetString("jira.email"),
			APIToken:   v.GetString("jira.api_token"),
			ProjectKey: v.GetString("jira.project_key"),
		},
		Bedrock: BedrockConfig{
			Region:          v.GetString("bedrock.region"),
			AccessKeyID:     v.GetString("bedrock.access_key_id"),
			SecretAccessKey: v.GetString("bedrock.secret_access_key"),
			SessionToken:    v.GetString("bedrock.session_token"),
			ModelID:         v.GetString("bedrock.model_id"),
		},
		Client: ClientConfig{
			Timeout:     v.GetDuration("client.timeout"),
			MaxAttempts: v.GetInt("client.max_attempts"),
		},
		Metrics: MetricsConfig{
			PushgatewayURL: v.GetString("metrics.pushgateway_url"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// readEnvFile parses a dotenv file. It returns nil when the file does not exist.
func readEnvFile(path string) (*viper.Viper, error) {
	if path == "" {
		return nil, nil
	}

	fv := viper.New()
	fv.SetConfigFile(path)
	fv.SetConfigType("env")
	if err := fv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return fv, nil
}

// validateConfig checks the settings every command relies on.
func validateConfig(config *Config) error {
	if config.Client.Timeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", config.Client.Timeout)
	}
	if config.Client.MaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1, got %d", config.Client.MaxAttempts)
	}
	return nil
}

// ValidateJiraConfig validates JIRA-specific configuration.
func ValidateJiraConfig(config *Config) error {
	var missingVars []string

	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Email == "" {
		missingVars = append(missingVars, "JIRA_EMAIL")
	}
	if config.Jira.APIToken == "" {
		missingVars = append(missingVars, "JIRA_API_TOKEN")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// ValidateBedrockConfig validates the model-invocation configuration. Static
// credentials are optional, but a key id without its secret (or the reverse)
// is rejected.
func ValidateBedrockConfig(config *Config) error {
	var missingVars []string

	if config.Bedrock.Region == "" {
		missingVars = append(missingVars, "AWS_REGION")
	}
	if config.Bedrock.ModelID == "" {
		missingVars = append(missingVars, "BEDROCK_MODEL_ID")
	}
	if config.Bedrock.AccessKeyID != "" && config.Bedrock.SecretAccessKey == "" {
		missingVars = append(missingVars, "AWS_SECRET_ACCESS_KEY")
	}
	if config.Bedrock.SecretAccessKey != "" && config.Bedrock.AccessKeyID == "" {
		missingVars = append(missingVars, "AWS_ACCESS_KEY_ID")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// TokenStore looks up stored secrets by key.
type TokenStore interface {
	Get(key string) (string, error)
}

// ApplyStoredCredentials fills an unset Jira API token from store.
func ApplyStoredCredentials(config *Config, store TokenStore) error {
	if config.Jira.APIToken != "" || store == nil {
		return nil
	}

	token, err := store.Get(credential.JiraTokenKey)
	if err != nil {
		if errors.Is(err, credential.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("reading stored jira token: %w", err)
	}

	config.Jira.APIToken = token
	return nil
}
