package resp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetassist/internal/pkg/errs"
)

func TestRespondError_Shape(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/meeting/x/user", nil)

	RespondError(w, r, errs.NewError(errs.ErrMeetingNotFound))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Meeting not found"}`, w.Body.String())
}

func TestRespondError_NilIsUnknown(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondError(w, r, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRespondSuccess_RawPayload(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	RespondSuccess(w, r, map[string]any{"issue": json.RawMessage(`{"key":"ENG-1"}`)})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"issue":{"key":"ENG-1"}}`, w.Body.String())
}

func TestRespondOK(t *testing.T) {
	w := httptest.NewRecorder()
	RespondOK(w, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
}
