package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `{
  "project": {"jira": {"project_key": "ENG"}},
  "users": {
    "u1": {"jira_id": "jira-1", "name": "Ada", "email": "ada@example.com", "teams": ["core"]},
    "u2": {"jira_id": "jira-2"}
  },
  "meetings": {
    "m-existing": {"id": "m-existing", "user_id": "u2"}
  }
}`

func loadSeed(t *testing.T) (*Store, *MemorySink) {
	t.Helper()
	sink := NewMemorySink([]byte(seed))
	s, err := Load(context.Background(), sink)
	require.NoError(t, err)
	return s, sink
}

func TestLoad_Seed(t *testing.T) {
	s, _ := loadSeed(t)

	assert.Equal(t, "ENG", s.ProjectKey())
	assert.Equal(t, 2, s.UserCount())
	assert.Equal(t, 1, s.MeetingCount())

	u, ok := s.User("u1")
	require.True(t, ok)
	assert.Equal(t, "u1", u.ID)
	assert.Equal(t, "jira-1", u.TrackerID)

	m, ok := s.Meeting("m-existing")
	require.True(t, ok)
	assert.Equal(t, "u2", m.UserID)

	_, ok = s.User("ghost")
	assert.False(t, ok)
	_, ok = s.Meeting("ghost")
	assert.False(t, ok)
}

func TestUser_MarshalKeepsProfile(t *testing.T) {
	s, _ := loadSeed(t)
	u, _ := s.User("u1")

	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.JSONEq(t, `{"jira_id":"jira-1","name":"Ada","email":"ada@example.com","teams":["core"]}`, string(data))
}

func TestDecode_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"project":`},
		{"not an object", `[]`},
		{"missing project", `{"users": {}, "meetings": {}}`},
		{"missing jira section", `{"project": {}, "users": {}, "meetings": {}}`},
		{"empty project key", `{"project": {"jira": {"project_key": ""}}, "users": {}, "meetings": {}}`},
		{"missing users", `{"project": {"jira": {"project_key": "ENG"}}, "meetings": {}}`},
		{"null users", `{"project": {"jira": {"project_key": "ENG"}}, "users": null, "meetings": {}}`},
		{"missing meetings", `{"project": {"jira": {"project_key": "ENG"}}, "users": {}}`},
		{"unknown top-level key", `{"project": {"jira": {"project_key": "ENG"}}, "users": {}, "meetings": {}, "extra": 1}`},
		{"unknown project key", `{"project": {"jira": {"project_key": "ENG", "url": "x"}}, "users": {}, "meetings": {}}`},
		{"user without jira_id", `{"project": {"jira": {"project_key": "ENG"}}, "users": {"u1": {"name": "x"}}, "meetings": {}}`},
		{"user jira_id not string", `{"project": {"jira": {"project_key": "ENG"}}, "users": {"u1": {"jira_id": 5}}, "meetings": {}}`},
		{"user empty jira_id", `{"project": {"jira": {"project_key": "ENG"}}, "users": {"u1": {"jira_id": ""}}, "meetings": {}}`},
		{"user record null", `{"project": {"jira": {"project_key": "ENG"}}, "users": {"u1": null}, "meetings": {}}`},
		{"user record not object", `{"project": {"jira": {"project_key": "ENG"}}, "users": {"u1": "jira-1"}, "meetings": {}}`},
		{"meeting id mismatch", `{"project": {"jira": {"project_key": "ENG"}}, "users": {"u1": {"jira_id": "j"}}, "meetings": {"m1": {"id": "m2", "user_id": "u1"}}}`},
		{"meeting without user", `{"project": {"jira": {"project_key": "ENG"}}, "users": {}, "meetings": {"m1": {"id": "m1"}}}`},
		{"meeting unknown field", `{"project": {"jira": {"project_key": "ENG"}}, "users": {"u1": {"jira_id": "j"}}, "meetings": {"m1": {"id": "m1", "user_id": "u1", "x": 1}}}`},
		{"meeting null", `{"project": {"jira": {"project_key": "ENG"}}, "users": {}, "meetings": {"m1": null}}`},
		{"trailing document", `{"project": {"jira": {"project_key": "ENG"}}, "users": {}, "meetings": {}} {}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Decode([]byte(tt.doc))
			require.Error(t, err)
			assert.Nil(t, s)

			var loadErr *LoadError
			assert.True(t, errors.As(err, &loadErr), "expected *LoadError, got %T", err)
		})
	}
}

func TestDecode_AcceptsCommentsAndTrailingCommas(t *testing.T) {
	doc := `{
  // seeded by hand
  "project": {"jira": {"project_key": "OPS"}},
  "users": {
    "u1": {"jira_id": "acc-1"}, /* the only user */
  },
  "meetings": {},
}`
	s, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "OPS", s.ProjectKey())
	assert.Equal(t, 1, s.UserCount())
}

func TestDecode_KeepsMeetingWithUnknownUser(t *testing.T) {
	doc := `{"project": {"jira": {"project_key": "ENG"}}, "users": {}, "meetings": {"m1": {"id": "m1", "user_id": "gone"}}}`
	s, err := Decode([]byte(doc))
	require.NoError(t, err)

	m, ok := s.Meeting("m1")
	require.True(t, ok)
	assert.Equal(t, "gone", m.UserID)
}

func TestLoad_ReadFailureIsLoadError(t *testing.T) {
	_, err := Load(context.Background(), NewFileSink(filepath.Join(t.TempDir(), "missing.json")))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Contains(t, loadErr.Source, "missing.json")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_DecodeFailureNamesSource(t *testing.T) {
	_, err := Load(context.Background(), NewMemorySink([]byte(`{}`)))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "memory://snapshot", loadErr.Source)
}

func TestSave_RoundTrip(t *testing.T) {
	s, sink := loadSeed(t)

	require.NoError(t, s.Save(context.Background()))

	reloaded, err := Load(context.Background(), sink)
	require.NoError(t, err)

	assert.Equal(t, s.ProjectKey(), reloaded.ProjectKey())
	assert.Equal(t, s.UserCount(), reloaded.UserCount())
	assert.Equal(t, s.MeetingCount(), reloaded.MeetingCount())

	for _, id := range []string{"u1", "u2"} {
		want, _ := s.User(id)
		got, ok := reloaded.User(id)
		require.True(t, ok)
		assert.Equal(t, want.TrackerID, got.TrackerID)

		wantJSON, _ := json.Marshal(want)
		gotJSON, _ := json.Marshal(got)
		assert.JSONEq(t, string(wantJSON), string(gotJSON))
	}

	m, ok := reloaded.Meeting("m-existing")
	require.True(t, ok)
	assert.Equal(t, Meeting{ID: "m-existing", UserID: "u2"}, m)
}

func TestSave_Idempotent(t *testing.T) {
	s, sink := loadSeed(t)
	s.PutMeeting(Meeting{ID: "m-new", UserID: "u1"})

	require.NoError(t, s.Save(context.Background()))
	first := sink.Bytes()

	require.NoError(t, s.Save(context.Background()))
	second := sink.Bytes()

	assert.Equal(t, first, second)
	assert.Equal(t, 2, sink.Writes())
}

func TestSave_WithoutSink(t *testing.T) {
	s, err := Decode([]byte(seed))
	require.NoError(t, err)

	assert.ErrorIs(t, s.Save(context.Background()), ErrNoSink)
}

func TestPutMeeting_Overwrites(t *testing.T) {
	s, _ := loadSeed(t)

	s.PutMeeting(Meeting{ID: "m-existing", UserID: "u1"})

	m, _ := s.Meeting("m-existing")
	assert.Equal(t, "u1", m.UserID)
	assert.Equal(t, 1, s.MeetingCount())
}

func TestPutMeeting_ConcurrentWithSave(t *testing.T) {
	s, sink := loadSeed(t)

	const writers = 8
	const perWriter = 200

	var wg sync.WaitGroup
	for w := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perWriter {
				id := fmt.Sprintf("m-%d-%d", w, i)
				s.PutMeeting(Meeting{ID: id, UserID: "u1"})
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 20 {
			assert.NoError(t, s.Save(context.Background()))
			// Every intermediate snapshot must decode cleanly.
			_, err := Decode(sink.Bytes())
			assert.NoError(t, err)
		}
	}()

	wg.Wait()

	assert.Equal(t, 1+writers*perWriter, s.MeetingCount())

	require.NoError(t, s.Save(context.Background()))
	reloaded, err := Decode(sink.Bytes())
	require.NoError(t, err)
	assert.Equal(t, s.MeetingCount(), reloaded.MeetingCount())
}

func TestFileSink_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	sink := NewFileSink(path)
	s, err := Load(context.Background(), sink)
	require.NoError(t, err)

	s.PutMeeting(Meeting{ID: "m-file", UserID: "u1"})
	require.NoError(t, s.Save(context.Background()))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	reloaded, err := Load(context.Background(), sink)
	require.NoError(t, err)
	m, ok := reloaded.Meeting("m-file")
	require.True(t, ok)
	assert.Equal(t, "u1", m.UserID)
}

func TestFileSink_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := NewFileSink(filepath.Join(t.TempDir(), "db.json"))
	assert.ErrorIs(t, sink.Write(ctx, []byte("{}")), context.Canceled)
	_, err := sink.Read(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
