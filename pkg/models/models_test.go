package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestIssueUpdateValidate(t *testing.T) {
	tests := []struct {
		name    string
		update  IssueUpdate
		wantErr string
	}{
		{
			name:    "Empty update",
			update:  IssueUpdate{},
			wantErr: "no fields",
		},
		{
			name:   "Summary only",
			update: IssueUpdate{Summary: strPtr("New title")},
		},
		{
			name:    "Blank summary",
			update:  IssueUpdate{Summary: strPtr("   ")},
			wantErr: "summary cannot be empty",
		},
		{
			name:    "Blank priority",
			update:  IssueUpdate{Priority: strPtr("")},
			wantErr: "priority cannot be empty",
		},
		{
			name:    "Label with whitespace",
			update:  IssueUpdate{Labels: []string{"needs review"}},
			wantErr: "invalid label",
		},
		{
			name: "Custom field colliding with typed field",
			update: IssueUpdate{Custom: map[string]FieldValue{
				"summary": StringValue("sneaky"),
			}},
			wantErr: "typed option",
		},
		{
			name: "Malformed custom field id",
			update: IssueUpdate{Custom: map[string]FieldValue{
				"storypoints": NumberValue(3),
			}},
			wantErr: "invalid custom field id",
		},
		{
			name: "Valid custom field",
			update: IssueUpdate{Custom: map[string]FieldValue{
				"customfield_10016": NumberValue(3),
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.update.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIssueUpdateFields(t *testing.T) {
	update := IssueUpdate{
		Summary:   strPtr("Rotate credentials"),
		IssueType: strPtr("Bug"),
		Priority:  strPtr("High"),
		Labels:    []string{"security"},
		Custom: map[string]FieldValue{
			"customfield_10016": NumberValue(5),
			"customfield_10020": OptionValue("Platform"),
		},
	}

	fields := update.Fields()

	assert.Equal(t, "Rotate credentials", fields["summary"])
	assert.Equal(t, map[string]string{"name": "Bug"}, fields["issuetype"])
	assert.Equal(t, map[string]string{"name": "High"}, fields["priority"])
	assert.Equal(t, []string{"security"}, fields["labels"])
	assert.Equal(t, 5.0, fields["customfield_10016"])
	assert.Equal(t, map[string]string{"value": "Platform"}, fields["customfield_10020"])
	assert.NotContains(t, fields, "description")
}

func TestParseFieldValue(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected FieldValue
	}{
		{name: "Plain text", input: "backend", expected: StringValue("backend")},
		{name: "Integer", input: "8", expected: NumberValue(8)},
		{name: "Decimal", input: "0.5", expected: NumberValue(0.5)},
		{name: "List", input: "a, b,c", expected: StringsValue("a", "b", "c")},
		{name: "Option", input: "option:Platform", expected: OptionValue("Platform")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseFieldValue(tc.input))
		})
	}
}
