/*
Package gateway turns meeting-scoped issue requests into issue-tracker calls.

Only listing issues is scoped by the meeting: the meeting's user supplies the tracker
account the search is filtered by. The remaining operations address issues directly
and forward to the tracker unchanged. Nothing is retried, cached or reordered.
*/
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"meetassist/internal/app/store"
	"meetassist/internal/app/tracker"
	"meetassist/internal/pkg/logx"
	"meetassist/internal/pkg/metrics"
)

// ErrNotFound is returned when a meeting cannot be resolved to a user, whatever the
// underlying reason.
var ErrNotFound = errors.New("gateway: meeting not found")

// UserResolver maps a meeting to the user it belongs to.
type UserResolver interface {
	ResolveMeetingUser(meetingID string) (store.User, error)
}

// Gateway proxies issue operations to the tracker.
type Gateway struct {
	users      UserResolver
	client     tracker.Client
	projectKey string
	logger     zerolog.Logger
}

// New returns a Gateway filing and searching issues in projectKey.
func New(users UserResolver, client tracker.Client, projectKey string) *Gateway {
	return &Gateway{
		users:      users,
		client:     client,
		projectKey: projectKey,
		logger:     logx.Component("IssueGateway"),
	}
}

// ListIssues returns the issues assigned to the meeting's user in the configured project.
func (g *Gateway) ListIssues(ctx context.Context, meetingID string) (tracker.Payload, error) {
	user, err := g.users.ResolveMeetingUser(meetingID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return g.call("list_issues", func() (tracker.Payload, error) {
		return g.client.ListIssues(ctx, g.projectKey, user.TrackerID)
	})
}

// GetIssue returns a single issue.
func (g *Gateway) GetIssue(ctx context.Context, issueID string) (tracker.Payload, error) {
	return g.call("get_issue", func() (tracker.Payload, error) {
		return g.client.GetIssue(ctx, issueID)
	})
}

// CreateIssue files an issue in the configured project.
func (g *Gateway) CreateIssue(ctx context.Context, issue tracker.NewIssue) (tracker.Payload, error) {
	return g.call("create_issue", func() (tracker.Payload, error) {
		return g.client.CreateIssue(ctx, g.projectKey, issue)
	})
}

// EditIssue changes the set fields of an issue and leaves the others alone.
func (g *Gateway) EditIssue(ctx context.Context, issueID string, changes tracker.IssueChanges) (tracker.Payload, error) {
	return g.call("edit_issue", func() (tracker.Payload, error) {
		return g.client.EditIssue(ctx, issueID, changes)
	})
}

// ListTransitions returns the transitions available for an issue.
func (g *Gateway) ListTransitions(ctx context.Context, issueID string) (tracker.Payload, error) {
	return g.call("list_transitions", func() (tracker.Payload, error) {
		return g.client.ListTransitions(ctx, issueID)
	})
}

// ApplyTransition moves an issue through a workflow transition.
func (g *Gateway) ApplyTransition(ctx context.Context, issueID, transitionID string) (tracker.Payload, error) {
	return g.call("apply_transition", func() (tracker.Payload, error) {
		return g.client.ApplyTransition(ctx, issueID, transitionID)
	})
}

// call runs one tracker operation and records its outcome.
func (g *Gateway) call(op string, fn func() (tracker.Payload, error)) (tracker.Payload, error) {
	start := time.Now()
	payload, err := fn()
	elapsed := time.Since(start)

	metrics.RecordTrackerCall(op, err, elapsed)

	if err != nil {
		g.logger.Warn().Err(err).Str("operation", op).Dur("latency", elapsed).Msg("Tracker call failed")
		var upErr *tracker.UpstreamError
		if !errors.As(err, &upErr) {
			err = &tracker.UpstreamError{Operation: op, Err: err}
		}
		return nil, err
	}

	return payload, nil
}
