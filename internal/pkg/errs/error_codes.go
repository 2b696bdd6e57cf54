/*
Package errs provides custom error types and application-level error code constants.

These error codes are used to clearly identify specific request, domain or system errors
both internally within the server and when mapping failures to client responses.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request header Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body JSON format is incorrect (e.g., syntax error).
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates that the request body contained extra content after valid JSON data.
	ErrExtraContentInBody = 1004

	// ErrMissingField indicates that a required path, query or body field is absent or empty.
	ErrMissingField = 1005

	// ErrRequestEntityTooLarge indicates that the request body size exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007

	// ErrRouteNotFound indicates that no route matches the request path.
	ErrRouteNotFound = 1008

	// ErrMethodNotAllowed indicates that the route exists but not for the request method.
	ErrMethodNotAllowed = 1009
)

// 2xxx: Meeting and User Errors
const (
	// ErrUserNotFound indicates that the referenced user does not exist in the store.
	ErrUserNotFound = 2101

	// ErrMeetingNotFound indicates that the referenced meeting does not exist in the store.
	ErrMeetingNotFound = 2102
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrTrackerUnavailable indicates the issue tracker could not be reached or gave no usable answer.
	ErrTrackerUnavailable = 5001

	// ErrSnapshotSaveFailed indicates the store could not be flushed to its snapshot sink.
	ErrSnapshotSaveFailed = 5002
)
