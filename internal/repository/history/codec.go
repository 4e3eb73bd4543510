// File: internal/repository/history/codec.go
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-counselor/internal/domain"
)

// CurrentVersion is written by Encode. Version 0 is the unversioned map
// {"Marcelo":[...],"Fernanda":[...]} produced by earlier releases.
const CurrentVersion = 1

var ErrMalformed = errors.New("malformed session history")

type envelope struct {
	Version  int                          `json:"version"`
	Sessions map[string][]json.RawMessage `json:"sessions"`
}

type sessionRecord struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Messages     []messageRecord `json:"messages"`
	LastModified int64           `json:"lastModified"`
}

type messageRecord struct {
	ID        string          `json:"id"`
	Role      string          `json:"role"`
	Text      string          `json:"text"`
	Timestamp string          `json:"timestamp"`
	IsError   bool            `json:"isError,omitempty"`
	Sources   []domain.Source `json:"sources,omitempty"`
}

// Encode serializes the full mapping with message timestamps as RFC 3339 strings.
func Encode(sessions domain.SessionMap) ([]byte, error) {
	out := struct {
		Version  int                        `json:"version"`
		Sessions map[string][]sessionRecord `json:"sessions"`
	}{
		Version:  CurrentVersion,
		Sessions: make(map[string][]sessionRecord, len(sessions)),
	}

	for _, user := range domain.AllProfiles() {
		list := sessions[user]
		records := make([]sessionRecord, 0, len(list))
		for _, s := range list {
			records = append(records, toRecord(s))
		}
		out.Sessions[string(user)] = records
	}
	return json.Marshal(out)
}

// Decode parses and validates a blob. Any shape violation rejects the whole
// blob; callers treat that as "no data".
func Decode(data []byte) (domain.SessionMap, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if top == nil {
		return nil, fmt.Errorf("%w: top level is null", ErrMalformed)
	}

	var raw map[string][]json.RawMessage
	if _, versioned := top["version"]; versioned {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if env.Version != CurrentVersion {
			return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, env.Version)
		}
		raw = env.Sessions
	} else {
		raw = make(map[string][]json.RawMessage, len(top))
		for k, v := range top {
			var list []json.RawMessage
			if err := json.Unmarshal(v, &list); err != nil {
				return nil, fmt.Errorf("%w: profile %q: %v", ErrMalformed, k, err)
			}
			raw[k] = list
		}
	}

	result := domain.NewSessionMap()
	for key, list := range raw {
		user, err := domain.ParseUserProfile(key)
		if err != nil || string(user) != key {
			return nil, fmt.Errorf("%w: unknown profile %q", ErrMalformed, key)
		}

		sessions := make([]domain.ChatSession, 0, len(list))
		seen := make(map[string]bool, len(list))
		for i, item := range list {
			var rec sessionRecord
			if err := json.Unmarshal(item, &rec); err != nil {
				return nil, fmt.Errorf("%w: %s session %d: %v", ErrMalformed, key, i, err)
			}
			s, err := fromRecord(rec)
			if err != nil {
				return nil, fmt.Errorf("%w: %s session %d: %v", ErrMalformed, key, i, err)
			}
			if seen[s.ID] {
				return nil, fmt.Errorf("%w: %s duplicate session id %q", ErrMalformed, key, s.ID)
			}
			seen[s.ID] = true
			sessions = append(sessions, s)
		}

		kept, _ := domain.CapSessions(sessions, domain.MaxSessionsPerUser)
		result[user] = kept
	}
	return result, nil
}

func toRecord(s domain.ChatSession) sessionRecord {
	msgs := make([]messageRecord, 0, len(s.Messages))
	for _, m := range s.Messages {
		msgs = append(msgs, messageRecord{
			ID:        m.ID,
			Role:      string(m.Role),
			Text:      m.Text,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
			IsError:   m.IsError,
			Sources:   m.Sources,
		})
	}
	return sessionRecord{
		ID:           s.ID,
		Title:        s.Title,
		Messages:     msgs,
		LastModified: s.LastModified,
	}
}

func fromRecord(rec sessionRecord) (domain.ChatSession, error) {
	if rec.ID == "" {
		return domain.ChatSession{}, errors.New("missing session id")
	}
	if len(rec.Messages) == 0 {
		return domain.ChatSession{}, errors.New("session has no messages")
	}

	msgs := make([]domain.Message, 0, len(rec.Messages))
	for i, mr := range rec.Messages {
		role := domain.Role(mr.Role)
		if !role.Valid() {
			return domain.ChatSession{}, fmt.Errorf("message %d: unknown role %q", i, mr.Role)
		}
		ts, err := time.Parse(time.RFC3339Nano, mr.Timestamp)
		if err != nil {
			return domain.ChatSession{}, fmt.Errorf("message %d: bad timestamp: %v", i, err)
		}
		msgs = append(msgs, domain.Message{
			ID:        mr.ID,
			Role:      role,
			Text:      mr.Text,
			Timestamp: ts,
			IsError:   mr.IsError,
			Sources:   mr.Sources,
		})
	}
	if !msgs[0].IsWelcome() {
		return domain.ChatSession{}, errors.New("first message is not the welcome message")
	}

	return domain.ChatSession{
		ID:           rec.ID,
		Title:        rec.Title,
		Messages:     msgs,
		LastModified: rec.LastModified,
	}, nil
}
