/*
Package store owns the process-wide state of the meeting assistant: the seeded users,
the meetings created for them, and the issue-tracker project key.

The state is loaded once from a snapshot document at startup, mutated in memory,
and written back to the same sink only when Save is called.
*/
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"meetassist/internal/pkg/logx"
	"meetassist/internal/pkg/metrics"
)

// ErrNoSink is returned by Save on a store that was decoded without a sink.
var ErrNoSink = errors.New("store: no snapshot sink attached")

// User is a seeded participant. Users are never created or changed by this service.
type User struct {
	// ID is the key of the user in the snapshot's user table.
	ID string

	// TrackerID is the user's account identifier in the issue tracker (the "jira_id" field).
	TrackerID string

	// Profile holds every field of the user record verbatim, including "jira_id".
	Profile map[string]json.RawMessage
}

// MarshalJSON renders the user as its original record.
func (u User) MarshalJSON() ([]byte, error) {
	if u.Profile == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(u.Profile)
}

// Meeting binds a generated meeting link to the user it was created for.
type Meeting struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
}

// Store is the in-memory state. A single RWMutex guards the tables: lookups share it,
// PutMeeting holds it exclusively, and Save encodes under the read side so a snapshot
// never observes a half-applied write.
type Store struct {
	mu         sync.RWMutex
	projectKey string
	users      map[string]User
	meetings   map[string]Meeting

	// saveMu serialises Save calls so an older snapshot never lands after a newer one.
	saveMu sync.Mutex
	sink   Sink

	logger zerolog.Logger
}

// Load reads the snapshot from sink and decodes it. The returned store writes back to
// the same sink on Save. Any failure is a *LoadError.
func Load(ctx context.Context, sink Sink) (*Store, error) {
	data, err := sink.Read(ctx)
	if err != nil {
		return nil, &LoadError{Source: sink.String(), Err: err}
	}

	s, err := Decode(data)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			loadErr.Source = sink.String()
		}
		return nil, err
	}

	s.sink = sink
	s.logger.Info().
		Str("source", sink.String()).
		Str("project_key", s.projectKey).
		Int("users", len(s.users)).
		Int("meetings", len(s.meetings)).
		Msg("Store loaded")

	return s, nil
}

// ProjectKey returns the issue-tracker project all issues are filed under.
func (s *Store) ProjectKey() string {
	return s.projectKey
}

// User looks up a user by id.
func (s *Store) User(id string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	return u, ok
}

// Meeting looks up a meeting by id.
func (s *Store) Meeting(id string) (Meeting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meetings[id]
	return m, ok
}

// PutMeeting inserts m, overwriting any meeting with the same id.
func (s *Store) PutMeeting(m Meeting) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meetings[m.ID] = m
}

// MeetingCount returns the number of stored meetings.
func (s *Store) MeetingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.meetings)
}

// UserCount returns the number of seeded users.
func (s *Store) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.users)
}

// Encode serialises the current state as a snapshot document.
func (s *Store) Encode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return encodeSnapshot(s.projectKey, s.users, s.meetings)
}

// Save writes the current state to the sink the store was loaded from.
// The whole document is replaced; there are no incremental writes.
func (s *Store) Save(ctx context.Context) (err error) {
	defer func() { metrics.RecordSnapshotSave(err) }()

	if s.sink == nil {
		return ErrNoSink
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	data, err := s.Encode()
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}

	if err := s.sink.Write(ctx, data); err != nil {
		return fmt.Errorf("store: write snapshot to %s: %w", s.sink, err)
	}

	s.logger.Info().
		Str("sink", s.sink.String()).
		Int("bytes", len(data)).
		Msg("Store saved")

	return nil
}

func newStore(projectKey string, users map[string]User, meetings map[string]Meeting) *Store {
	return &Store{
		projectKey: projectKey,
		users:      users,
		meetings:   meetings,
		logger:     logx.Component("Store"),
	}
}
