// Package models defines data structures shared across the application.
package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultIssueType is used when a new issue does not name a type.
const DefaultIssueType = "Task"

// Issue is the fixed-shape view of a Jira issue returned to callers.
type Issue struct {
	// Key is the tracker-assigned identifier (e.g., "PROJ-123")
	Key string `json:"key"`

	// Summary is the issue's one-line title
	Summary string `json:"summary"`

	// Description is the full body text, empty when the issue has none
	Description string `json:"description"`

	// IssueType is the Jira issue type name (e.g., "Task", "Bug", "Story")
	IssueType string `json:"issue_type,omitempty"`

	// Status is the name of the current workflow status
	Status string `json:"status"`

	// Created is the creation timestamp as reported by Jira
	Created string `json:"created"`

	// Updated is the last modification timestamp as reported by Jira
	Updated string `json:"updated"`
}

// NewIssue holds the inputs for creating an issue.
type NewIssue struct {
	// ProjectKey is the project the issue is created in. Empty means
	// "use the default project".
	ProjectKey string

	Summary     string
	Description string

	// IssueType defaults to DefaultIssueType when empty.
	IssueType string
}

// FieldKind tags the variant held by a FieldValue.
type FieldKind int

const (
	// KindString is a plain text value.
	KindString FieldKind = iota
	// KindNumber is a numeric value.
	KindNumber
	// KindStrings is a list of text values (labels, multi-selects).
	KindStrings
	// KindOption is a named option, sent as {"value": name}.
	KindOption
)

// FieldValue is a tagged value for a custom Jira field.
type FieldValue struct {
	Kind    FieldKind
	Str     string
	Num     float64
	Strings []string
}

// StringValue returns a text field value.
func StringValue(s string) FieldValue { return FieldValue{Kind: KindString, Str: s} }

// NumberValue returns a numeric field value.
func NumberValue(n float64) FieldValue { return FieldValue{Kind: KindNumber, Num: n} }

// StringsValue returns a list field value.
func StringsValue(s ...string) FieldValue { return FieldValue{Kind: KindStrings, Strings: s} }

// OptionValue returns a select-list option value.
func OptionValue(name string) FieldValue { return FieldValue{Kind: KindOption, Str: name} }

// ParseFieldValue infers a FieldValue from command-line text. Numbers become
// KindNumber, comma-separated text becomes KindStrings, and an "option:" prefix
// selects KindOption. Anything else is a plain string.
func ParseFieldValue(raw string) FieldValue {
	if name, ok := strings.CutPrefix(raw, "option:"); ok {
		return OptionValue(name)
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return NumberValue(n)
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return StringsValue(parts...)
	}
	return StringValue(raw)
}

// Wire returns the JSON-ready representation Jira expects for the value.
func (v FieldValue) Wire() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindStrings:
		return v.Strings
	case KindOption:
		return map[string]string{"value": v.Str}
	default:
		return v.Str
	}
}

// IssueUpdate is the set of fields that can be changed on an existing issue.
// Nil pointers and empty collections are left untouched.
type IssueUpdate struct {
	Summary     *string
	Description *string
	IssueType   *string
	Priority    *string
	Labels      []string

	// Custom holds fields outside the typed set, keyed by Jira field id
	// (e.g., "customfield_10010").
	Custom map[string]FieldValue
}

var customFieldPattern = regexp.MustCompile(`^customfield_\d+$`)

// typedFields are the Jira field ids covered by the typed members of IssueUpdate.
var typedFields = map[string]bool{
	"summary":     true,
	"description": true,
	"issuetype":   true,
	"priority":    true,
	"labels":      true,
}

// IsEmpty reports whether the update would change nothing.
func (u IssueUpdate) IsEmpty() bool {
	return u.Summary == nil && u.Description == nil && u.IssueType == nil &&
		u.Priority == nil && len(u.Labels) == 0 && len(u.Custom) == 0
}

// Validate checks the update locally before it is sent to Jira.
func (u IssueUpdate) Validate() error {
	if u.IsEmpty() {
		return fmt.Errorf("update contains no fields")
	}
	if u.Summary != nil && strings.TrimSpace(*u.Summary) == "" {
		return fmt.Errorf("summary cannot be empty")
	}
	if u.IssueType != nil && strings.TrimSpace(*u.IssueType) == "" {
		return fmt.Errorf("issue type cannot be empty")
	}
	if u.Priority != nil && strings.TrimSpace(*u.Priority) == "" {
		return fmt.Errorf("priority cannot be empty")
	}
	for _, label := range u.Labels {
		if strings.ContainsAny(label, " \t") || label == "" {
			return fmt.Errorf("invalid label %q: labels cannot be empty or contain whitespace", label)
		}
	}
	for key := range u.Custom {
		if typedFields[key] {
			return fmt.Errorf("field %q must be set through its typed option", key)
		}
		if !customFieldPattern.MatchString(key) {
			return fmt.Errorf("invalid custom field id %q, expected customfield_<number>", key)
		}
	}
	return nil
}

// Fields converts the update into the Jira "fields" payload.
func (u IssueUpdate) Fields() map[string]any {
	fields := make(map[string]any)
	if u.Summary != nil {
		fields["summary"] = *u.Summary
	}
	if u.Description != nil {
		fields["description"] = *u.Description
	}
	if u.IssueType != nil {
		fields["issuetype"] = map[string]string{"name": *u.IssueType}
	}
	if u.Priority != nil {
		fields["priority"] = map[string]string{"name": *u.Priority}
	}
	if len(u.Labels) > 0 {
		fields["labels"] = u.Labels
	}
	for key, value := range u.Custom {
		fields[key] = value.Wire()
	}
	return fields
}
