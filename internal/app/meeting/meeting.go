/*
Package meeting creates meeting links for seeded users and resolves a meeting back
to the user it was created for.
*/
package meeting

import (
	"errors"

	"github.com/rs/zerolog"

	"meetassist/internal/app/store"
	"meetassist/internal/pkg/logx"
	"meetassist/internal/pkg/metrics"
	"meetassist/internal/pkg/randx"
)

var (
	// ErrUserNotFound means the user id is not in the store.
	ErrUserNotFound = errors.New("user not found")

	// ErrMeetingNotFound means the meeting id is not in the store.
	ErrMeetingNotFound = errors.New("meeting not found")
)

// Service manages meetings on top of the store.
type Service struct {
	store  *store.Store
	newID  func() string
	logger zerolog.Logger
}

// NewService returns a Service backed by s.
func NewService(s *store.Store) *Service {
	return &Service{
		store:  s,
		newID:  randx.MeetingID,
		logger: logx.Component("MeetingService"),
	}
}

// CreateMeetingForUser records a new meeting for userID and returns its id.
// The meeting lives in memory until the store is saved.
func (s *Service) CreateMeetingForUser(userID string) (string, error) {
	if _, ok := s.store.User(userID); !ok {
		return "", ErrUserNotFound
	}

	id := s.newID()
	s.store.PutMeeting(store.Meeting{ID: id, UserID: userID})
	metrics.RecordMeetingCreated()

	s.logger.Info().Str("meeting_id", id).Str("user_id", userID).Msg("Meeting created")

	return id, nil
}

// ResolveMeetingUser returns the user a meeting was created for.
func (s *Service) ResolveMeetingUser(meetingID string) (store.User, error) {
	m, ok := s.store.Meeting(meetingID)
	if !ok {
		return store.User{}, ErrMeetingNotFound
	}

	u, ok := s.store.User(m.UserID)
	if !ok {
		s.logger.Warn().Str("meeting_id", meetingID).Str("user_id", m.UserID).Msg("Meeting references an unknown user")
		return store.User{}, ErrUserNotFound
	}

	return u, nil
}
