/*
Package randx provides generators for unguessable identifiers.

Meeting identifiers are random (version 4) UUIDs drawn from crypto/rand, which makes
collisions between independently generated meetings negligible.
*/
package randx

import (
	"github.com/google/uuid"
)

// MeetingID generates a new random UUID string to serve as a meeting link identifier.
func MeetingID() string {
	return uuid.NewString()
}

// IsValidMeetingID reports whether id has the canonical UUID text form.
func IsValidMeetingID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
