/*
Package resp provides helper functions for constructing and sending HTTP JSON responses.

Successful responses carry the endpoint's own payload as the top-level document
(e.g. {"meeting_link": "..."}); failures use the single-field shape {"error": "<message>"}.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"meetassist/internal/pkg/errs"
	"meetassist/internal/pkg/logx"
)

// ErrorResponse is the body sent for every failed request.
type ErrorResponse struct {
	// Error is the client-facing error message, e.g. "Meeting not found".
	Error string `json:"error"`
}

// RespondJSON is a generic response function used to set the Content-Type and send the JSON payload.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
			"path", r.URL.Path,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess sends data as the top-level document with HTTP 200 OK.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, data)
}

// RespondOK sends {"success": true}.
func RespondOK(w http.ResponseWriter, r *http.Request) {
	RespondSuccess(w, r, map[string]bool{"success": true})
}

// RespondError sends an HTTP response containing custom error information.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, ErrorResponse{Error: customErr.Message})
}
