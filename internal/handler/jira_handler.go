/*
Package handler provides HTTP handler functions for the meeting-scoped Jira endpoints.

Tracker responses are forwarded as they are. When the tracker rejects a request, its
error body is forwarded the same way; only a tracker that cannot be reached at all
produces an error response from this service.
*/
package handler

import (
	"errors"
	"net/http"

	"meetassist/internal/app/gateway"
	"meetassist/internal/app/tracker"
	"meetassist/internal/pkg/errs"
	"meetassist/internal/pkg/logx"
	"meetassist/internal/pkg/req"
	"meetassist/internal/pkg/resp"
)

type CreateIssueInput struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description" validate:"required"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	// DueDate is YYYY-MM-DD; the tracker validates the format.
	DueDate *string `json:"due_date,omitempty"`
}

type EditIssueInput struct {
	IssueID     string  `json:"issue_id" validate:"required"`
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
	// Status names the workflow status to move the issue to.
	Status *string `json:"status,omitempty"`
}

type TransitionIssueInput struct {
	IssueID      string `json:"issue_id" validate:"required"`
	TransitionID string `json:"transition_id" validate:"required"`
}

// respondTracker writes a tracker result. With a non-empty key the payload is wrapped
// as {key: payload}; otherwise it is the whole response.
func respondTracker(w http.ResponseWriter, r *http.Request, key string, payload tracker.Payload, err error) {
	if err != nil {
		var upErr *tracker.UpstreamError
		if !errors.As(err, &upErr) || !upErr.HasPayload() {
			logx.Error(err, "Issue tracker call failed")
			resp.RespondError(w, r, errs.NewError(errs.ErrTrackerUnavailable))
			return
		}

		logx.Warn("Forwarding issue tracker error",
			"operation", upErr.Operation,
			"tracker_status", upErr.Status,
		)
		payload = upErr.Payload
	}

	if key == "" {
		resp.RespondSuccess(w, r, payload)
		return
	}
	resp.RespondSuccess(w, r, map[string]tracker.Payload{key: payload})
}

// HandleGetIssues lists the issues assigned to the meeting's user.
func HandleGetIssues(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingID, customErr := pathParam(r, "meetingId")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		issues, err := deps.Gateway.ListIssues(r.Context(), meetingID)
		if errors.Is(err, gateway.ErrNotFound) {
			resp.RespondError(w, r, errs.NewError(errs.ErrMeetingNotFound))
			return
		}

		respondTracker(w, r, "issues", issues, err)
	}
}

// HandleGetIssue returns one issue. The meeting in the path is not checked.
func HandleGetIssue(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID, customErr := req.QueryParam(r, "issue_id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		issue, err := deps.Gateway.GetIssue(r.Context(), issueID)
		respondTracker(w, r, "issue", issue, err)
	}
}

// HandleCreateIssue files a new issue in the configured project.
func HandleCreateIssue(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CreateIssueInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, err := deps.Gateway.CreateIssue(r.Context(), tracker.NewIssue{
			Summary:     input.Title,
			Description: *input.Description,
			AssigneeID:  input.AssigneeID,
			DueDate:     input.DueDate,
		})
		respondTracker(w, r, "", result, err)
	}
}

// HandleEditIssue changes the fields present in the body; absent fields are left as they are.
func HandleEditIssue(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input EditIssueInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, err := deps.Gateway.EditIssue(r.Context(), input.IssueID, tracker.IssueChanges{
			Summary:     input.Title,
			Description: input.Description,
			AssigneeID:  input.AssigneeID,
			DueDate:     input.DueDate,
			Status:      input.Status,
		})
		respondTracker(w, r, "", result, err)
	}
}

// HandleGetIssueTransitions lists the transitions available for an issue.
func HandleGetIssueTransitions(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		issueID, customErr := req.QueryParam(r, "issue_id")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		transitions, err := deps.Gateway.ListTransitions(r.Context(), issueID)
		respondTracker(w, r, "transitions", transitions, err)
	}
}

// HandleTransitionIssue applies a workflow transition to an issue.
func HandleTransitionIssue(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input TransitionIssueInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		result, err := deps.Gateway.ApplyTransition(r.Context(), input.IssueID, input.TransitionID)
		respondTracker(w, r, "", result, err)
	}
}
