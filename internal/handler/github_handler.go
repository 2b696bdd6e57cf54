package handler

import (
	"net/http"

	"meetassist/internal/pkg/resp"
)

// HandleGitHubIssues is a placeholder until a GitHub integration exists; it always lists nothing.
func HandleGitHubIssues(w http.ResponseWriter, r *http.Request) {
	resp.RespondSuccess(w, r, map[string][]any{"issues": {}})
}

// HandleGitHubPullRequests is a placeholder until a GitHub integration exists; it always lists nothing.
func HandleGitHubPullRequests(w http.ResponseWriter, r *http.Request) {
	resp.RespondSuccess(w, r, map[string][]any{"pull_requests": {}})
}
