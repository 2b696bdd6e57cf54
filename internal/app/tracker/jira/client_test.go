package jira

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetassist/internal/app/tracker"
)

type recordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Body   map[string]any
	User   string
	Pass   string
}

// fakeJira serves canned responses keyed by "METHOD path" and records every request.
type fakeJira struct {
	t        *testing.T
	mu       sync.Mutex
	routes   map[string]func(w http.ResponseWriter)
	requests []recordedRequest
}

func newFakeJira(t *testing.T) (*fakeJira, *Client) {
	t.Helper()
	f := &fakeJira{t: t, routes: map[string]func(http.ResponseWriter){}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query()}
		rec.User, rec.Pass, _ = r.BasicAuth()
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			assert.NoError(t, json.Unmarshal(data, &rec.Body))
		}

		f.mu.Lock()
		f.requests = append(f.requests, rec)
		handler, ok := f.routes[r.Method+" "+r.URL.Path]
		f.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		handler(w)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/", Email: "bot@example.com", APIToken: "secret"})
	require.NoError(t, err)
	return f, client
}

func (f *fakeJira) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func (f *fakeJira) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedRequest(nil), f.requests...)
}

func (f *fakeJira) last() recordedRequest {
	f.t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(f.t, f.requests)
	return f.requests[len(f.requests)-1]
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestListIssues(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodGet, "/rest/api/2/search", http.StatusOK, `{"startAt":0,"total":2,"issues":[{"key":"ENG-2"},{"key":"ENG-1"}]}`)

	issues, err := client.ListIssues(context.Background(), "ENG", "jira-1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"key":"ENG-2"},{"key":"ENG-1"}]`, string(issues))

	req := f.last()
	assert.Equal(t, `project = "ENG" AND assignee = "jira-1"`, req.Query["jql"][0])
	assert.Equal(t, "50", req.Query["maxResults"][0])
	assert.Equal(t, "bot@example.com", req.User)
	assert.Equal(t, "secret", req.Pass)
}

func TestListIssues_MissingEnvelopeField(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodGet, "/rest/api/2/search", http.StatusOK, `{"total":0}`)

	_, err := client.ListIssues(context.Background(), "ENG", "jira-1")

	var upErr *tracker.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.JSONEq(t, `{"total":0}`, string(upErr.Payload))
}

func TestQuoteJQL(t *testing.T) {
	assert.Equal(t, `"ENG"`, quoteJQL("ENG"))
	assert.Equal(t, `"a\"b\\c"`, quoteJQL(`a"b\c`))
}

func TestGetIssue(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodGet, "/rest/api/2/issue/ENG-7", http.StatusOK, `{"key":"ENG-7","fields":{"summary":"Fix login"}}`)

	issue, err := client.GetIssue(context.Background(), "ENG-7")
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"ENG-7","fields":{"summary":"Fix login"}}`, string(issue))
}

func TestGetIssue_NotFoundKeepsTrackerBody(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodGet, "/rest/api/2/issue/ENG-404", http.StatusNotFound, `{"errorMessages":["Issue does not exist"]}`)

	_, err := client.GetIssue(context.Background(), "ENG-404")

	var upErr *tracker.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusNotFound, upErr.Status)
	assert.Equal(t, "get_issue", upErr.Operation)
	assert.JSONEq(t, `{"errorMessages":["Issue does not exist"]}`, string(upErr.Payload))
}

func TestGetIssue_NonJSONErrorBody(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodGet, "/rest/api/2/issue/ENG-1", http.StatusBadGateway, "upstream proxy error")

	_, err := client.GetIssue(context.Background(), "ENG-1")

	var upErr *tracker.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.JSONEq(t, `{"error":"upstream proxy error"}`, string(upErr.Payload))
}

func TestCreateIssue_OptionalFields(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodPost, "/rest/api/2/issue", http.StatusCreated, `{"id":"10001","key":"ENG-9"}`)

	result, err := client.CreateIssue(context.Background(), "ENG", tracker.NewIssue{
		Summary:     "Write notes",
		Description: "From the standup",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"10001","key":"ENG-9"}`, string(result))

	fields := f.last().Body["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"key": "ENG"}, fields["project"])
	assert.Equal(t, "Write notes", fields["summary"])
	assert.Equal(t, "From the standup", fields["description"])
	assert.Equal(t, map[string]any{"name": "Task"}, fields["issuetype"])
	assert.NotContains(t, fields, "assignee")
	assert.NotContains(t, fields, "duedate")

	_, err = client.CreateIssue(context.Background(), "ENG", tracker.NewIssue{
		Summary:    "Follow up",
		AssigneeID: tracker.StringPtr("acc-2"),
		DueDate:    tracker.StringPtr("2026-11-01"),
	})
	require.NoError(t, err)

	fields = f.last().Body["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"accountId": "acc-2"}, fields["assignee"])
	assert.Equal(t, "2026-11-01", fields["duedate"])
}

func TestEditIssue_OnlySetFieldsAreSent(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodPut, "/rest/api/2/issue/ENG-3", http.StatusNoContent, ``)

	result, err := client.EditIssue(context.Background(), "ENG-3", tracker.IssueChanges{
		Summary: tracker.StringPtr("Renamed"),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(result))

	req := f.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, map[string]any{"fields": map[string]any{"summary": "Renamed"}}, req.Body)
}

func TestEditIssue_NoChangesMakesNoCall(t *testing.T) {
	f, client := newFakeJira(t)

	result, err := client.EditIssue(context.Background(), "ENG-3", tracker.IssueChanges{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(result))
	assert.Empty(t, f.recorded())
}

func TestEditIssue_StatusUsesMatchingTransition(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodPut, "/rest/api/2/issue/ENG-3", http.StatusNoContent, ``)
	f.on(http.MethodGet, "/rest/api/2/issue/ENG-3/transitions", http.StatusOK,
		`{"transitions":[{"id":"11","name":"Start","to":{"name":"In Progress"}},{"id":"31","name":"Finish","to":{"name":"Done"}}]}`)
	f.on(http.MethodPost, "/rest/api/2/issue/ENG-3/transitions", http.StatusNoContent, ``)

	_, err := client.EditIssue(context.Background(), "ENG-3", tracker.IssueChanges{
		DueDate: tracker.StringPtr("2026-12-24"),
		Status:  tracker.StringPtr("done"),
	})
	require.NoError(t, err)

	requests := f.recorded()
	require.Len(t, requests, 3)
	assert.Equal(t, map[string]any{"fields": map[string]any{"duedate": "2026-12-24"}}, requests[0].Body)
	assert.Equal(t, http.MethodGet, requests[1].Method)
	assert.Equal(t, map[string]any{"transition": map[string]any{"id": "31"}}, requests[2].Body)
}

func TestEditIssue_UnknownStatus(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodGet, "/rest/api/2/issue/ENG-3/transitions", http.StatusOK, `{"transitions":[]}`)

	_, err := client.EditIssue(context.Background(), "ENG-3", tracker.IssueChanges{Status: tracker.StringPtr("Archived")})

	var upErr *tracker.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.True(t, upErr.HasPayload())
	assert.Contains(t, string(upErr.Payload), "Archived")
}

func TestListTransitions(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodGet, "/rest/api/2/issue/ENG-3/transitions", http.StatusOK, `{"expand":"transitions","transitions":[{"id":"21","name":"In Progress"}]}`)

	transitions, err := client.ListTransitions(context.Background(), "ENG-3")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"21","name":"In Progress"}]`, string(transitions))
}

func TestApplyTransition(t *testing.T) {
	f, client := newFakeJira(t)
	f.on(http.MethodPost, "/rest/api/2/issue/ENG-3/transitions", http.StatusNoContent, ``)

	result, err := client.ApplyTransition(context.Background(), "ENG-3", "21")
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true}`, string(result))
	assert.Equal(t, map[string]any{"transition": map[string]any{"id": "21"}}, f.last().Body)
}

func TestIssuePathIsEscaped(t *testing.T) {
	assert.Equal(t, "/rest/api/2/issue/ENG%2F1", issuePath("ENG/1"))
}

func TestUnreachableTracker(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client, err := NewClient(Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.GetIssue(context.Background(), "ENG-1")

	var upErr *tracker.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.False(t, upErr.HasPayload())
	assert.Error(t, upErr.Err)
}
