package jira

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jira-agent/internal/config"
	"github.com/danielolaszy/jira-agent/pkg/models"
)

func testConfig(url string) *config.Config {
	return &config.Config{
		Jira: config.JiraConfig{
			URL:      url,
			Email:    "dev@example.com",
			APIToken: "test-token",
		},
		Client: config.ClientConfig{
			Timeout:     5 * time.Second,
			MaxAttempts: 3,
		},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(testConfig(server.URL), WithRetryIntervals(time.Millisecond, time.Millisecond))
	require.NoError(t, err)
	return client
}

func TestNewClientCredentialValidation(t *testing.T) {
	testCases := []struct {
		name          string
		url           string
		email         string
		token         string
		errorContains string
	}{
		{name: "Missing URL", email: "a@example.com", token: "t", errorContains: "JIRA_URL"},
		{name: "Missing email", url: "https://example.atlassian.net", token: "t", errorContains: "JIRA_EMAIL"},
		{name: "Missing token", url: "https://example.atlassian.net", email: "a@example.com", errorContains: "JIRA_API_TOKEN"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &config.Config{
				Jira: config.JiraConfig{URL: tc.url, Email: tc.email, APIToken: tc.token},
			}

			_, err := NewClient(cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errorContains)
		})
	}
}

func TestCreateIssue(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/2/issue", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "dev@example.com", user)
		assert.Equal(t, "test-token", pass)

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"10001","key":"PROJ-7","self":"https://example/rest/api/2/issue/10001"}`))
	})

	key, err := client.CreateIssue(context.Background(), models.NewIssue{
		ProjectKey:  "PROJ",
		Summary:     "Upgrade auth",
		Description: "Add 2FA",
	})
	require.NoError(t, err)
	assert.Equal(t, "PROJ-7", key)

	fields := body["fields"].(map[string]any)
	assert.Equal(t, "Upgrade auth", fields["summary"])
	assert.Equal(t, "Add 2FA", fields["description"])
	assert.Equal(t, "PROJ", fields["project"].(map[string]any)["key"])
	assert.Equal(t, "Task", fields["issuetype"].(map[string]any)["name"])
}

func TestCreateIssueIsNotRetried(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.CreateIssue(context.Background(), models.NewIssue{ProjectKey: "PROJ", Summary: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 503")
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}

func TestUpdateIssue(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/rest/api/2/issue/PROJ-7", r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.UpdateIssue(context.Background(), "PROJ-7", map[string]any{"summary": "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"fields": map[string]any{"summary": "Renamed"}}, body)
}

func TestAddComment(t *testing.T) {
	var body map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/api/2/issue/PROJ-7/comment", r.URL.Path)

		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"100","body":"hello"}`))
	})

	require.NoError(t, client.AddComment(context.Background(), "PROJ-7", "hello"))
	assert.Equal(t, "hello", body["body"])
}

const issueJSON = `{
	"id": "10001",
	"key": "PROJ-7",
	"fields": {
		"summary": "Upgrade auth",
		"description": "Add 2FA",
		"issuetype": {"name": "Task"},
		"status": {"name": "To Do"},
		"created": "2024-03-01T10:15:30.000+0000",
		"updated": "2024-03-02T08:00:00.123+0000"
	}
}`

func TestGetIssue(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/api/2/issue/PROJ-7", r.URL.Path)
		_, _ = w.Write([]byte(issueJSON))
	})

	issue, err := client.GetIssue(context.Background(), "PROJ-7")
	require.NoError(t, err)

	assert.Equal(t, &models.Issue{
		Key:         "PROJ-7",
		Summary:     "Upgrade auth",
		Description: "Add 2FA",
		IssueType:   "Task",
		Status:      "To Do",
		Created:     "2024-03-01T10:15:30.000+0000",
		Updated:     "2024-03-02T08:00:00.123+0000",
	}, issue)
}

func TestGetIssueRetriesServerErrors(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&requests, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(issueJSON))
	})

	issue, err := client.GetIssue(context.Background(), "PROJ-7")
	require.NoError(t, err)
	assert.Equal(t, "PROJ-7", issue.Key)
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestGetIssueGivesUpAfterMaxAttempts(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetIssue(context.Background(), "PROJ-7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 429")
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestGetIssueDoesNotRetryClientErrors(t *testing.T) {
	var requests int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errorMessages":["Issue does not exist"],"errors":{}}`))
	})

	_, err := client.GetIssue(context.Background(), "PROJ-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PROJ-404")
	assert.Contains(t, err.Error(), "status: 404")
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
}
