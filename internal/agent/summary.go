package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielolaszy/jira-agent/internal/logging"
)

// NoDescriptionMessage is reported when an issue has nothing to summarize.
const NoDescriptionMessage = "No description available to summarize."

const (
	failurePrefix  = "Error generating summary: "
	commentPrefix  = "AI-Generated Summary:\n\n"
	promptTemplate = "Please provide a concise summary of the following Jira issue description:\n\n%s\n\nSummary:"
)

// ErrNoSummary is returned when asked to post a summary that was not generated.
var ErrNoSummary = errors.New("no generated summary to post")

// Outcome tags the result of a summarization.
type Outcome int

const (
	// OutcomeGenerated means the model produced Text.
	OutcomeGenerated Outcome = iota
	// OutcomeNoDescription means the issue had no description; the model was not called.
	OutcomeNoDescription
	// OutcomeFailed means building the request, invoking the model, or parsing
	// its response failed; Err holds the reason.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGenerated:
		return "generated"
	case OutcomeNoDescription:
		return "no_description"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Summary is the result of SummarizeDescription.
type Summary struct {
	Outcome Outcome
	Text    string
	Err     error
}

// OK reports whether the model produced a summary.
func (s Summary) OK() bool {
	return s.Outcome == OutcomeGenerated
}

// String renders the summary for display.
func (s Summary) String() string {
	switch s.Outcome {
	case OutcomeNoDescription:
		return NoDescriptionMessage
	case OutcomeFailed:
		if s.Err == nil {
			return failurePrefix + "unknown error"
		}
		return failurePrefix + s.Err.Error()
	default:
		return s.Text
	}
}

// BuildPrompt embeds description verbatim in the summarization prompt.
func BuildPrompt(description string) string {
	return fmt.Sprintf(promptTemplate, description)
}

// SummaryComment is the comment body used when posting a summary.
func SummaryComment(text string) string {
	return commentPrefix + text
}

// SummarizeDescription asks the model to summarize the issue's description.
// Only a failure to fetch the issue is returned as an error; model failures
// are reported through Summary.Outcome.
func (a *Agent) SummarizeDescription(ctx context.Context, key string) (Summary, error) {
	issue, err := a.GetIssue(ctx, key)
	if err != nil {
		return Summary{}, err
	}

	summary := a.summarize(ctx, key, issue.Description)
	a.metrics.Summary(summary.Outcome.String())
	return summary, nil
}

func (a *Agent) summarize(ctx context.Context, key string, description string) Summary {
	if description == "" {
		logging.Info("issue has no description to summarize", "key", key)
		return Summary{Outcome: OutcomeNoDescription}
	}

	var text string
	err := a.call(ctx, "invoke_model", func(ctx context.Context) error {
		var err error
		text, err = a.model.Complete(ctx, BuildPrompt(description))
		return err
	})
	if err != nil {
		logging.Warn("failed to generate summary", "key", key, "error", err)
		return Summary{Outcome: OutcomeFailed, Err: err}
	}

	logging.Info("generated summary", "key", key, "length", len(text))
	return Summary{Outcome: OutcomeGenerated, Text: text}
}

// PostSummary adds a generated summary to the issue as a comment.
func (a *Agent) PostSummary(ctx context.Context, key string, summary Summary) error {
	if !summary.OK() {
		return fmt.Errorf("%w: outcome %s", ErrNoSummary, summary.Outcome)
	}
	return a.AddComment(ctx, key, SummaryComment(summary.Text))
}
