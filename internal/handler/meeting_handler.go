/*
Package handler provides HTTP handler functions for creating meetings and resolving
a meeting to its user.
*/
package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"meetassist/internal/app/meeting"
	"meetassist/internal/pkg/errs"
	"meetassist/internal/pkg/logx"
	"meetassist/internal/pkg/resp"
)

// pathParam returns a required URL parameter, or ErrMissingField when it is blank.
func pathParam(r *http.Request, name string) (string, *errs.CustomError) {
	value := strings.TrimSpace(chi.URLParam(r, name))
	if value == "" {
		return "", errs.NewError(errs.ErrMissingField, name)
	}
	return value, nil
}

// HandleGenerateMeeting creates a meeting link for the user in the path.
func HandleGenerateMeeting(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, customErr := pathParam(r, "userId")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		meetingID, err := deps.Meetings.CreateMeetingForUser(userID)
		if err != nil {
			if errors.Is(err, meeting.ErrUserNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown, err))
			return
		}

		resp.RespondSuccess(w, r, map[string]string{
			"meeting_link": meetingID,
		})
	}
}

// HandleGetMeetingUser returns the user record a meeting belongs to.
func HandleGetMeetingUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingID, customErr := pathParam(r, "meetingId")
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		user, err := deps.Meetings.ResolveMeetingUser(meetingID)
		if err != nil {
			// A meeting whose user vanished is reported like a missing meeting.
			if errors.Is(err, meeting.ErrMeetingNotFound) || errors.Is(err, meeting.ErrUserNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrMeetingNotFound))
				return
			}
			logx.Error(err, "Failed to resolve meeting user", "meeting_id", meetingID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"user": user,
		})
	}
}
