package handler

import (
	"net/http"

	"meetassist/internal/pkg/errs"
	"meetassist/internal/pkg/logx"
	"meetassist/internal/pkg/resp"
)

// HandleSaveDB flushes the store to its snapshot sink.
func HandleSaveDB(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Store.Save(r.Context()); err != nil {
			logx.Error(err, "Failed to save store snapshot")
			resp.RespondError(w, r, errs.NewError(errs.ErrSnapshotSaveFailed))
			return
		}

		resp.RespondOK(w, r)
	}
}

// HandlePing answers {"success": true}.
func HandlePing(w http.ResponseWriter, r *http.Request) {
	resp.RespondOK(w, r)
}

// HandleHealth reports liveness together with the size of the store.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{
			"status":   "ok",
			"service":  "Meeting Assistant",
			"users":    deps.Store.UserCount(),
			"meetings": deps.Store.MeetingCount(),
		})
	}
}
