/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and internal error handling.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters"},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Malformed JSON body"},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data"},
	ErrMissingField:          {Code: ErrMissingField, Message: "Missing required field: %s"},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later", Status: http.StatusTooManyRequests},
	ErrRouteNotFound:         {Code: ErrRouteNotFound, Message: "Not found", Status: http.StatusNotFound},
	ErrMethodNotAllowed:      {Code: ErrMethodNotAllowed, Message: "Method not allowed", Status: http.StatusMethodNotAllowed},

	// 2xxx: Meeting and User Errors
	ErrUserNotFound:    {Code: ErrUserNotFound, Message: "User not found", Status: http.StatusNotFound},
	ErrMeetingNotFound: {Code: ErrMeetingNotFound, Message: "Meeting not found", Status: http.StatusNotFound},

	// 5xxx: Internal System Errors
	ErrUnknown:            {Code: ErrUnknown, Message: "Something went wrong. Please try again", Status: http.StatusInternalServerError},
	ErrTrackerUnavailable: {Code: ErrTrackerUnavailable, Message: "Issue tracker unavailable", Status: http.StatusBadGateway},
	ErrSnapshotSaveFailed: {Code: ErrSnapshotSaveFailed, Message: "Failed to save database", Status: http.StatusInternalServerError},
}
