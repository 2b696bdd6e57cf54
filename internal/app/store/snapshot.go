package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/jsonc"
)

// trackerIDField is the user-record field holding the issue-tracker account id.
const trackerIDField = "jira_id"

// LoadError reports a snapshot that could not be read or does not match the schema.
// It is fatal at startup.
type LoadError struct {
	// Source names the sink the snapshot came from; empty when decoding raw bytes.
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("store: load snapshot: %v", e.Err)
	}
	return fmt.Sprintf("store: load snapshot from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// snapshotDoc is the on-disk layout:
//
//	{
//	  "project":  {"jira": {"project_key": "ENG"}},
//	  "users":    {"<user id>": {"jira_id": "...", ...}},
//	  "meetings": {"<meeting id>": {"id": "<meeting id>", "user_id": "<user id>"}}
//	}
type snapshotDoc struct {
	Project  *projectDoc                           `json:"project"`
	Users    map[string]map[string]json.RawMessage `json:"users"`
	Meetings map[string]*Meeting                   `json:"meetings"`
}

type projectDoc struct {
	Jira *jiraProjectDoc `json:"jira"`
}

type jiraProjectDoc struct {
	ProjectKey string `json:"project_key"`
}

// Decode parses a snapshot document into a Store with no sink attached.
// Comments and trailing commas are tolerated so seed files can be annotated by hand.
// Unknown keys, missing sections and malformed records are rejected with a *LoadError.
func Decode(data []byte) (*Store, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.DisallowUnknownFields()

	var doc snapshotDoc
	if err := dec.Decode(&doc); err != nil {
		return nil, &LoadError{Err: fmt.Errorf("malformed snapshot: %w", err)}
	}
	if dec.More() {
		return nil, &LoadError{Err: errors.New("malformed snapshot: trailing data after document")}
	}

	if doc.Project == nil || doc.Project.Jira == nil || doc.Project.Jira.ProjectKey == "" {
		return nil, &LoadError{Err: errors.New(`missing "project.jira.project_key"`)}
	}
	if doc.Users == nil {
		return nil, &LoadError{Err: errors.New(`missing "users" table`)}
	}
	if doc.Meetings == nil {
		return nil, &LoadError{Err: errors.New(`missing "meetings" table`)}
	}

	users := make(map[string]User, len(doc.Users))
	for id, record := range doc.Users {
		u, err := decodeUser(id, record)
		if err != nil {
			return nil, &LoadError{Err: err}
		}
		users[id] = u
	}

	meetings := make(map[string]Meeting, len(doc.Meetings))
	for id, m := range doc.Meetings {
		if m == nil {
			return nil, &LoadError{Err: fmt.Errorf("meeting %q: record must be an object", id)}
		}
		if m.ID != id {
			return nil, &LoadError{Err: fmt.Errorf("meeting %q: id field %q does not match its key", id, m.ID)}
		}
		if m.UserID == "" {
			return nil, &LoadError{Err: fmt.Errorf("meeting %q: missing user_id", id)}
		}
		meetings[id] = *m
	}

	s := newStore(doc.Project.Jira.ProjectKey, users, meetings)

	for id, m := range meetings {
		if _, ok := users[m.UserID]; !ok {
			s.logger.Warn().
				Str("meeting_id", id).
				Str("user_id", m.UserID).
				Msg("Meeting references an unknown user")
		}
	}

	return s, nil
}

func decodeUser(id string, record map[string]json.RawMessage) (User, error) {
	if record == nil {
		return User{}, fmt.Errorf("user %q: record must be an object", id)
	}

	raw, ok := record[trackerIDField]
	if !ok {
		return User{}, fmt.Errorf("user %q: missing %s", id, trackerIDField)
	}

	var trackerID string
	if err := json.Unmarshal(raw, &trackerID); err != nil {
		return User{}, fmt.Errorf("user %q: %s must be a string", id, trackerIDField)
	}
	if trackerID == "" {
		return User{}, fmt.Errorf("user %q: empty %s", id, trackerIDField)
	}

	return User{ID: id, TrackerID: trackerID, Profile: record}, nil
}

// encodeSnapshot renders the state as indented JSON. encoding/json sorts map keys,
// so equal states always encode to identical bytes.
func encodeSnapshot(projectKey string, users map[string]User, meetings map[string]Meeting) ([]byte, error) {
	doc := snapshotDoc{
		Project:  &projectDoc{Jira: &jiraProjectDoc{ProjectKey: projectKey}},
		Users:    make(map[string]map[string]json.RawMessage, len(users)),
		Meetings: make(map[string]*Meeting, len(meetings)),
	}

	for id, u := range users {
		doc.Users[id] = u.Profile
	}
	for id, m := range meetings {
		doc.Meetings[id] = &m
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
