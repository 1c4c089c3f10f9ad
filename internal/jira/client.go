// Package jira provides functionality for interacting with the JIRA API.
package jira

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jira "github.com/andygrunwald/go-jira"
	"github.com/cenkalti/backoff/v4"

	"github.com/danielolaszy/jira-agent/internal/config"
	"github.com/danielolaszy/jira-agent/internal/logging"
	"github.com/danielolaszy/jira-agent/pkg/models"
)

// TimeLayout is the timestamp format Jira uses on the wire.
const TimeLayout = "2006-01-02T15:04:05.000-0700"

// Client handles interactions with the JIRA API.
type Client struct {
	client          *jira.Client
	maxAttempts     int
	initialInterval time.Duration
	maxInterval     time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithRetryIntervals overrides the read retry backoff bounds.
func WithRetryIntervals(initial, maxInterval time.Duration) Option {
	return func(c *Client) {
		c.initialInterval = initial
		c.maxInterval = maxInterval
	}
}

// NewClient creates a JIRA client authenticated with the account email and
// API token from cfg.
func NewClient(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := config.ValidateJiraConfig(cfg); err != nil {
		return nil, err
	}

	tp := &jira.BasicAuthTransport{
		Username: cfg.Jira.Email,
		Password: cfg.Jira.APIToken,
	}
	httpClient := &http.Client{
		Transport: tp,
		Timeout:   cfg.Client.Timeout,
	}

	client, err := jira.NewClient(httpClient, cfg.Jira.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	logging.Debug("jira configuration",
		"url", cfg.Jira.URL,
		"email", cfg.Jira.Email,
		"token", logging.MaskSensitive(cfg.Jira.APIToken))

	c := &Client{
		client:          client,
		maxAttempts:     cfg.Client.MaxAttempts,
		initialInterval: 500 * time.Millisecond,
		maxInterval:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.maxAttempts < 1 {
		c.maxAttempts = 1
	}
	return c, nil
}

// CreateIssue creates an issue and returns its key. Creation is not retried.
func (c *Client) CreateIssue(ctx context.Context, issue models.NewIssue) (string, error) {
	issueType := issue.IssueType
	if issueType == "" {
		issueType = models.DefaultIssueType
	}

	jiraIssue := &jira.Issue{
		Fields: &jira.IssueFields{
			Project: jira.Project{
				Key: issue.ProjectKey,
			},
			Summary:     issue.Summary,
			Description: issue.Description,
			Type: jira.IssueType{
				Name: issueType,
			},
		},
	}

	created, resp, err := c.client.Issue.CreateWithContext(ctx, jiraIssue)
	if err != nil {
		return "", fmt.Errorf("failed to create jira issue in project %s: %w%s", issue.ProjectKey, err, statusSuffix(resp))
	}

	logging.Info("created jira issue",
		"key", created.Key,
		"project", issue.ProjectKey,
		"type", issueType)

	return created.Key, nil
}

// UpdateIssue sends fields as the issue's "fields" payload. Jira validates the
// values itself.
func (c *Client) UpdateIssue(ctx context.Context, key string, fields map[string]any) error {
	data := map[string]interface{}{
		"fields": fields,
	}

	resp, err := c.client.Issue.UpdateIssueWithContext(ctx, key, data)
	if err != nil {
		return fmt.Errorf("failed to update jira issue %s: %w%s", key, err, statusSuffix(resp))
	}

	logging.Info("updated jira issue", "key", key, "field_count", len(fields))
	return nil
}

// AddComment appends a plain-text comment to the issue.
func (c *Client) AddComment(ctx context.Context, key string, body string) error {
	_, resp, err := c.client.Issue.AddCommentWithContext(ctx, key, &jira.Comment{Body: body})
	if err != nil {
		return fmt.Errorf("failed to add comment to jira issue %s: %w%s", key, err, statusSuffix(resp))
	}

	logging.Info("added comment to jira issue", "key", key, "length", len(body))
	return nil
}

// GetIssue fetches the issue. Transport failures, 429 and 5xx responses are
// retried with exponential backoff up to the configured attempt count.
func (c *Client) GetIssue(ctx context.Context, key string) (*models.Issue, error) {
	var issue *jira.Issue
	attempt := 0

	operation := func() error {
		attempt++
		var resp *jira.Response
		var err error
		issue, resp, err = c.client.Issue.GetWithContext(ctx, key, nil)
		if err == nil {
			return nil
		}

		err = fmt.Errorf("failed to get jira issue %s: %w%s", key, err, statusSuffix(resp))
		if !retryable(resp) {
			return backoff.Permanent(err)
		}

		logging.Warn("jira read failed, retrying",
			"key", key,
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"error", err)
		return err
	}

	if err := backoff.Retry(operation, c.newBackOff(ctx)); err != nil {
		return nil, err
	}

	return toModel(key, issue), nil
}

func (c *Client) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialInterval
	b.MaxInterval = c.maxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxAttempts-1)), ctx)
}

// retryable reports whether a failed read may succeed on a later attempt.
func retryable(resp *jira.Response) bool {
	if resp == nil || resp.Response == nil {
		return true
	}
	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}

func statusSuffix(resp *jira.Response) string {
	if resp == nil || resp.Response == nil {
		return ""
	}
	return fmt.Sprintf(" (status: %d)", resp.StatusCode)
}

// toModel flattens a go-jira issue into the fixed record shape.
func toModel(key string, issue *jira.Issue) *models.Issue {
	result := &models.Issue{Key: issue.Key}
	if result.Key == "" {
		result.Key = key
	}

	fields := issue.Fields
	if fields == nil {
		return result
	}

	result.Summary = fields.Summary
	result.Description = fields.Description
	result.IssueType = fields.Type.Name
	if fields.Status != nil {
		result.Status = fields.Status.Name
	}
	result.Created = formatTime(time.Time(fields.Created))
	result.Updated = formatTime(time.Time(fields.Updated))

	return result
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimeLayout)
}
