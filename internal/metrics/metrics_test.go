package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	r := NewRecorder()

	r.Observe("get_issue", time.Now(), nil)
	r.Observe("get_issue", time.Now(), nil)
	r.Observe("get_issue", time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.calls.WithLabelValues("get_issue", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.calls.WithLabelValues("get_issue", OutcomeError)))
}

func TestSummary(t *testing.T) {
	r := NewRecorder()

	r.Summary("generated")
	r.Summary("failed")
	r.Summary("generated")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.summaries.WithLabelValues("generated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.summaries.WithLabelValues("failed")))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.Observe("create_issue", time.Now(), nil)
		r.Summary("generated")
	})
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		body, _ := io.ReadAll(req.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := NewRecorder()
	r.Observe("add_comment", time.Now(), nil)

	require.NoError(t, r.Push(context.Background(), server.URL, "jira-agent"))

	assert.Equal(t, "/metrics/job/jira-agent", gotPath)
	assert.NotEmpty(t, gotBody)
}

func TestPushFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	err := NewRecorder().Push(context.Background(), server.URL, "jira-agent")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), server.URL))
}
