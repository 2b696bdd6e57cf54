/*
Package jira implements tracker.Client against the Jira Cloud REST API (version 2).

Requests authenticate with an account email and API token using HTTP basic auth.
Response bodies are returned as raw JSON; only the envelope of list endpoints is
unwrapped so callers receive the issue or transition array itself.
*/
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"meetassist/internal/app/tracker"
	"meetassist/internal/pkg/logx"
)

const (
	defaultIssueType  = "Task"
	defaultTimeout    = 30 * time.Second
	defaultMaxResults = 50

	// maxResponseSize bounds how much of a response body is read.
	maxResponseSize = 10 << 20
)

// successPayload stands in for the empty body of 204 responses.
var successPayload = tracker.Payload(`{"success":true}`)

// Config holds the connection settings for a Jira site.
type Config struct {
	// BaseURL is the site root, e.g. https://example.atlassian.net.
	BaseURL string
	Email    string
	APIToken string

	// IssueType is the issue type name used for created issues. Defaults to "Task".
	IssueType string

	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration

	// MaxResults caps the number of issues returned by ListIssues. Defaults to 50.
	MaxResults int

	// Transport overrides the underlying round tripper; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Client talks to one Jira site.
type Client struct {
	baseURL    string
	issueType  string
	maxResults int
	http       *http.Client
	logger     zerolog.Logger
}

var _ tracker.Client = (*Client)(nil)

// NewClient creates a Jira client from cfg.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("jira: base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("jira: invalid base URL: %w", err)
	}

	if cfg.IssueType == "" {
		cfg.IssueType = defaultIssueType
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultMaxResults
	}

	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		issueType:  cfg.IssueType,
		maxResults: cfg.MaxResults,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &basicAuthTransport{
				base:     base,
				email:    cfg.Email,
				apiToken: cfg.APIToken,
			},
		},
		logger: logx.Component("JiraClient"),
	}, nil
}

// ListIssues runs a JQL search for the project's issues assigned to assigneeID.
func (c *Client) ListIssues(ctx context.Context, projectKey, assigneeID string) (tracker.Payload, error) {
	query := url.Values{}
	query.Set("jql", fmt.Sprintf("project = %s AND assignee = %s", quoteJQL(projectKey), quoteJQL(assigneeID)))
	query.Set("maxResults", fmt.Sprint(c.maxResults))

	body, err := c.do(ctx, "list_issues", http.MethodGet, "/rest/api/2/search", query, nil)
	if err != nil {
		return nil, err
	}
	return field(body, "issues", "list_issues")
}

// GetIssue fetches one issue by id or key.
func (c *Client) GetIssue(ctx context.Context, issueID string) (tracker.Payload, error) {
	return c.do(ctx, "get_issue", http.MethodGet, issuePath(issueID), nil, nil)
}

// CreateIssue files a new issue and returns Jira's reference to it ({id, key, self}).
func (c *Client) CreateIssue(ctx context.Context, projectKey string, issue tracker.NewIssue) (tracker.Payload, error) {
	fields := map[string]any{
		"project":     map[string]string{"key": projectKey},
		"summary":     issue.Summary,
		"description": issue.Description,
		"issuetype":   map[string]string{"name": c.issueType},
	}
	if issue.AssigneeID != nil {
		fields["assignee"] = map[string]string{"accountId": *issue.AssigneeID}
	}
	if issue.DueDate != nil {
		fields["duedate"] = *issue.DueDate
	}

	return c.do(ctx, "create_issue", http.MethodPost, "/rest/api/2/issue", nil, map[string]any{"fields": fields})
}

// EditIssue updates the set fields of an issue. A Status change is carried out by
// applying the available transition whose name, or target status name, matches it.
func (c *Client) EditIssue(ctx context.Context, issueID string, changes tracker.IssueChanges) (tracker.Payload, error) {
	fields := map[string]any{}
	if changes.Summary != nil {
		fields["summary"] = *changes.Summary
	}
	if changes.Description != nil {
		fields["description"] = *changes.Description
	}
	if changes.AssigneeID != nil {
		fields["assignee"] = map[string]string{"accountId": *changes.AssigneeID}
	}
	if changes.DueDate != nil {
		fields["duedate"] = *changes.DueDate
	}

	result := successPayload

	if len(fields) > 0 {
		body, err := c.do(ctx, "edit_issue", http.MethodPut, issuePath(issueID), nil, map[string]any{"fields": fields})
		if err != nil {
			return nil, err
		}
		result = body
	}

	if changes.Status != nil {
		transitionID, err := c.transitionForStatus(ctx, issueID, *changes.Status)
		if err != nil {
			return nil, err
		}
		return c.ApplyTransition(ctx, issueID, transitionID)
	}

	return result, nil
}

// ListTransitions returns the transitions available for an issue.
func (c *Client) ListTransitions(ctx context.Context, issueID string) (tracker.Payload, error) {
	body, err := c.do(ctx, "list_transitions", http.MethodGet, issuePath(issueID)+"/transitions", nil, nil)
	if err != nil {
		return nil, err
	}
	return field(body, "transitions", "list_transitions")
}

// ApplyTransition performs a workflow transition on an issue.
func (c *Client) ApplyTransition(ctx context.Context, issueID, transitionID string) (tracker.Payload, error) {
	payload := map[string]any{"transition": map[string]string{"id": transitionID}}
	return c.do(ctx, "apply_transition", http.MethodPost, issuePath(issueID)+"/transitions", nil, payload)
}

// transitionForStatus finds the transition that leads to the named status.
func (c *Client) transitionForStatus(ctx context.Context, issueID, status string) (string, error) {
	raw, err := c.ListTransitions(ctx, issueID)
	if err != nil {
		return "", err
	}

	var transitions []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		To   struct {
			Name string `json:"name"`
		} `json:"to"`
	}
	if err := json.Unmarshal(raw, &transitions); err != nil {
		return "", &tracker.UpstreamError{Operation: "edit_issue", Err: fmt.Errorf("decode transitions: %w", err)}
	}

	for _, t := range transitions {
		if strings.EqualFold(t.To.Name, status) || strings.EqualFold(t.Name, status) {
			return t.ID, nil
		}
	}

	msg := fmt.Sprintf("No transition to status %q is available for issue %s", status, issueID)
	return "", &tracker.UpstreamError{
		Operation: "edit_issue",
		Payload:   errorPayload([]byte(msg), 0),
		Err:       errors.New(msg),
	}
}

// do performs one request and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) (tracker.Payload, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, &tracker.UpstreamError{Operation: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &tracker.UpstreamError{Operation: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("operation", op).Msg("Jira request failed")
		return nil, &tracker.UpstreamError{Operation: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &tracker.UpstreamError{Operation: op, Status: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug().
		Str("operation", op).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("Jira request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn().Str("operation", op).Int("status", resp.StatusCode).Msg("Jira rejected request")
		return nil, &tracker.UpstreamError{
			Operation: op,
			Status:    resp.StatusCode,
			Payload:   errorPayload(data, resp.StatusCode),
		}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return successPayload, nil
	}
	if !json.Valid(data) {
		return nil, &tracker.UpstreamError{
			Operation: op,
			Status:    resp.StatusCode,
			Payload:   errorPayload(data, resp.StatusCode),
			Err:       errors.New("response is not JSON"),
		}
	}

	return tracker.Payload(data), nil
}

// field extracts one member of a JSON object response.
func field(body tracker.Payload, name, op string) (tracker.Payload, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &tracker.UpstreamError{Operation: op, Status: http.StatusOK, Payload: body, Err: fmt.Errorf("decode response: %w", err)}
	}

	value, ok := envelope[name]
	if !ok {
		return nil, &tracker.UpstreamError{Operation: op, Status: http.StatusOK, Payload: body, Err: fmt.Errorf("response has no %q field", name)}
	}
	return tracker.Payload(value), nil
}

// errorPayload returns body when it is a JSON document, and otherwise wraps its text
// (or the status text for an empty body) as {"error": "..."}.
func errorPayload(body []byte, status int) tracker.Payload {
	body = bytes.TrimSpace(body)
	if len(body) > 0 && json.Valid(body) {
		return tracker.Payload(body)
	}

	msg := string(body)
	if msg == "" {
		msg = http.StatusText(status)
	}
	data, _ := json.Marshal(map[string]string{"error": msg})
	return tracker.Payload(data)
}

func issuePath(issueID string) string {
	return "/rest/api/2/issue/" + url.PathEscape(issueID)
}

// quoteJQL renders s as a double-quoted JQL string literal.
func quoteJQL(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// basicAuthTransport adds Jira API-token credentials to every request.
type basicAuthTransport struct {
	base     http.RoundTripper
	email    string
	apiToken string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.email != "" || t.apiToken != "" {
		clone.SetBasicAuth(t.email, t.apiToken)
	}
	return t.base.RoundTrip(clone)
}
