// Package bedrock invokes hosted text-completion models on Amazon Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/danielolaszy/jira-agent/internal/config"
	"github.com/danielolaszy/jira-agent/internal/logging"
)

// Generation parameters sent with every request.
const (
	MaxTokens   = 500
	Temperature = 0.7
	TopP        = 0.9
)

// ErrNoCompletion is returned when the model response lacks a completion.
var ErrNoCompletion = errors.New("model response has no completion field")

// Invoker is the subset of the Bedrock runtime API the client needs.
type Invoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client sends prompts to a single Bedrock model.
type Client struct {
	invoker Invoker
	modelID string
}

type completionRequest struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

type completionResponse struct {
	Completion *string `json:"completion"`
}

// NewClient creates a Bedrock runtime client for cfg. Static credentials are
// used when configured, otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	if err := config.ValidateBedrockConfig(cfg); err != nil {
		return nil, err
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Bedrock.Region),
		awsconfig.WithRetryMaxAttempts(cfg.Client.MaxAttempts),
	}
	if cfg.Bedrock.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Bedrock.AccessKeyID,
				cfg.Bedrock.SecretAccessKey,
				cfg.Bedrock.SessionToken,
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws configuration: %w", err)
	}

	logging.Debug("bedrock configuration",
		"region", cfg.Bedrock.Region,
		"model_id", cfg.Bedrock.ModelID,
		"access_key_id", logging.MaskSensitive(cfg.Bedrock.AccessKeyID))

	return NewClientWithInvoker(bedrockruntime.NewFromConfig(awsCfg), cfg.Bedrock.ModelID), nil
}

// NewClientWithInvoker creates a Client around an existing invoker.
func NewClientWithInvoker(invoker Invoker, modelID string) *Client {
	return &Client{invoker: invoker, modelID: modelID}
}

// ModelID returns the model every request is addressed to.
func (c *Client) ModelID() string {
	return c.modelID
}

// FormatPrompt wraps prompt in the Human/Assistant turn markers the
// text-completion models expect.
func FormatPrompt(prompt string) string {
	return "\n\nHuman: " + prompt + "\n\nAssistant:"
}

// Complete sends prompt to the model and returns the completion text trimmed
// of surrounding whitespace.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(completionRequest{
		Prompt:      FormatPrompt(prompt),
		MaxTokens:   MaxTokens,
		Temperature: Temperature,
		TopP:        TopP,
	})
	if err != nil {
		return "", fmt.Errorf("encoding model request: %w", err)
	}

	out, err := c.invoker.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("invoking model %s: %w", c.modelID, err)
	}

	var resp completionResponse
	if err := json.Unmarshal(out.Body, &resp); err != nil {
		return "", fmt.Errorf("decoding model response: %w", err)
	}
	if resp.Completion == nil {
		return "", ErrNoCompletion
	}

	return strings.TrimSpace(*resp.Completion), nil
}
