package tracker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIssueChanges_IsEmpty(t *testing.T) {
	assert.True(t, IssueChanges{}.IsEmpty())
	assert.False(t, IssueChanges{DueDate: StringPtr("2026-01-31")}.IsEmpty())
	assert.False(t, IssueChanges{Status: StringPtr("Done")}.IsEmpty())
	// An explicit empty string is still a change.
	assert.False(t, IssueChanges{Description: StringPtr("")}.IsEmpty())
}

func TestUpstreamError(t *testing.T) {
	cause := errors.New("connection refused")

	unreachable := &UpstreamError{Operation: "get_issue", Err: cause}
	assert.Equal(t, "tracker get_issue: connection refused", unreachable.Error())
	assert.ErrorIs(t, unreachable, cause)
	assert.False(t, unreachable.HasPayload())

	rejected := &UpstreamError{Operation: "create_issue", Status: 400, Payload: Payload(`{"errors":{}}`)}
	assert.Equal(t, "tracker create_issue: status 400", rejected.Error())
	assert.True(t, rejected.HasPayload())
}
