// Package agent exposes the Jira operations and model-backed summarization
// behind a single facade.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielolaszy/jira-agent/internal/bedrock"
	"github.com/danielolaszy/jira-agent/internal/config"
	"github.com/danielolaszy/jira-agent/internal/jira"
	"github.com/danielolaszy/jira-agent/internal/logging"
	"github.com/danielolaszy/jira-agent/internal/metrics"
	"github.com/danielolaszy/jira-agent/pkg/models"
)

// ErrMissingConfiguration is returned before any remote call when a required
// setting, such as the project key, is absent.
var ErrMissingConfiguration = errors.New("missing configuration")

// Tracker is the issue tracker the agent drives.
type Tracker interface {
	CreateIssue(ctx context.Context, issue models.NewIssue) (string, error)
	UpdateIssue(ctx context.Context, key string, fields map[string]any) error
	AddComment(ctx context.Context, key string, body string) error
	GetIssue(ctx context.Context, key string) (*models.Issue, error)
}

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Agent mediates every call to the tracker and the model service. It holds no
// mutable state after construction.
type Agent struct {
	tracker    Tracker
	model      Completer
	projectKey string
	timeout    time.Duration
	metrics    *metrics.Recorder
}

// Option customizes an Agent.
type Option func(*Agent)

// WithProjectKey sets the project used when CreateIssue is not given one.
func WithProjectKey(key string) Option {
	return func(a *Agent) { a.projectKey = key }
}

// WithTimeout bounds each remote operation. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(a *Agent) { a.timeout = d }
}

// WithMetrics records every remote operation on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Agent) { a.metrics = r }
}

// New creates an Agent from already constructed clients.
func New(tracker Tracker, model Completer, opts ...Option) (*Agent, error) {
	if tracker == nil {
		return nil, fmt.Errorf("%w: issue tracker client is required", ErrMissingConfiguration)
	}
	if model == nil {
		return nil, fmt.Errorf("%w: model client is required", ErrMissingConfiguration)
	}

	a := &Agent{tracker: tracker, model: model}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// NewFromConfig builds the Jira and Bedrock clients from cfg. Options are
// applied after the configured defaults.
func NewFromConfig(ctx context.Context, cfg *config.Config, opts ...Option) (*Agent, error) {
	tracker, err := jira.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingConfiguration, err)
	}

	model, err := bedrock.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingConfiguration, err)
	}

	base := []Option{
		WithProjectKey(cfg.Jira.ProjectKey),
		WithTimeout(cfg.Client.Timeout),
	}
	return New(tracker, model, append(base, opts...)...)
}

// ProjectKey returns the default project key, possibly empty.
func (a *Agent) ProjectKey() string {
	return a.projectKey
}

// CreateIssue creates an issue and returns its key. The project key falls back
// to the agent's default; with neither set, no request is made.
func (a *Agent) CreateIssue(ctx context.Context, issue models.NewIssue) (string, error) {
	if issue.ProjectKey == "" {
		issue.ProjectKey = a.projectKey
	}
	if issue.ProjectKey == "" {
		return "", fmt.Errorf("%w: project key must be provided either at construction or per call", ErrMissingConfiguration)
	}
	if issue.IssueType == "" {
		issue.IssueType = models.DefaultIssueType
	}

	var key string
	err := a.call(ctx, "create_issue", func(ctx context.Context) error {
		var err error
		key, err = a.tracker.CreateIssue(ctx, issue)
		return err
	})
	return key, err
}

// UpdateIssue validates update locally and applies it to the issue.
func (a *Agent) UpdateIssue(ctx context.Context, key string, update models.IssueUpdate) error {
	if err := update.Validate(); err != nil {
		return fmt.Errorf("invalid update for %s: %w", key, err)
	}

	return a.call(ctx, "update_issue", func(ctx context.Context) error {
		return a.tracker.UpdateIssue(ctx, key, update.Fields())
	})
}

// AddComment appends a comment to the issue.
func (a *Agent) AddComment(ctx context.Context, key string, comment string) error {
	return a.call(ctx, "add_comment", func(ctx context.Context) error {
		return a.tracker.AddComment(ctx, key, comment)
	})
}

// GetIssue fetches the current state of the issue. Nothing is cached.
func (a *Agent) GetIssue(ctx context.Context, key string) (*models.Issue, error) {
	var issue *models.Issue
	err := a.call(ctx, "get_issue", func(ctx context.Context) error {
		var err error
		issue, err = a.tracker.GetIssue(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return issue, nil
}

func (a *Agent) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	a.metrics.Observe(operation, start, err)
	if err != nil {
		logging.Debug("operation failed", "operation", operation, "error", err)
	}
	return err
}
