/*
Package tracker defines the contract between the meeting assistant and the external
issue tracker, together with the field types and the error it reports.

Responses are kept as raw JSON: the assistant forwards whatever the tracker returns
and never reshapes, filters or reorders it.
*/
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
)

// Payload is a tracker response body, forwarded verbatim.
type Payload = json.RawMessage

// Client is the set of issue-tracker operations the assistant proxies.
type Client interface {
	// ListIssues returns the issues of a project assigned to the given tracker account.
	ListIssues(ctx context.Context, projectKey, assigneeID string) (Payload, error)

	// GetIssue returns a single issue.
	GetIssue(ctx context.Context, issueID string) (Payload, error)

	// CreateIssue files a new issue in the given project.
	CreateIssue(ctx context.Context, projectKey string, issue NewIssue) (Payload, error)

	// EditIssue applies changes to an existing issue. Nil fields are left untouched.
	EditIssue(ctx context.Context, issueID string, changes IssueChanges) (Payload, error)

	// ListTransitions returns the workflow transitions currently available for an issue.
	ListTransitions(ctx context.Context, issueID string) (Payload, error)

	// ApplyTransition moves an issue through the given workflow transition.
	ApplyTransition(ctx context.Context, issueID, transitionID string) (Payload, error)
}

// NewIssue describes an issue to create. Optional fields are nil when not supplied.
type NewIssue struct {
	Summary     string
	Description string
	AssigneeID  *string
	DueDate     *string // YYYY-MM-DD; format is checked by the tracker
}

// IssueChanges lists the fields to change on an issue. A nil field means "no change".
type IssueChanges struct {
	Summary     *string
	Description *string
	AssigneeID  *string
	DueDate     *string

	// Status is the name of the workflow status to move the issue to.
	Status *string
}

// IsEmpty reports whether no field is set.
func (c IssueChanges) IsEmpty() bool {
	return c.Summary == nil && c.Description == nil && c.AssigneeID == nil && c.DueDate == nil && c.Status == nil
}

// UpstreamError is returned when a tracker call fails.
//
// When the tracker answered, Status is its HTTP status and Payload its body (or a
// JSON object describing it); callers may forward Payload as the operation's result.
// When the tracker could not be reached, Payload is nil and Err holds the cause.
type UpstreamError struct {
	Operation string
	Status    int
	Payload   Payload
	Err       error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("tracker %s: status %d: %v", e.Operation, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("tracker %s: %v", e.Operation, e.Err)
	default:
		return fmt.Sprintf("tracker %s: status %d", e.Operation, e.Status)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// HasPayload reports whether the tracker produced a body that can be forwarded.
func (e *UpstreamError) HasPayload() bool {
	return len(e.Payload) > 0
}

// StringPtr returns a pointer to s. It is a convenience for building optional fields.
func StringPtr(s string) *string {
	return &s
}
