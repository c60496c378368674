// Package sessions provides per-user in-memory conversation history for
// multi-turn inquiries.
//
// The registry never evicts: sessions live for the process lifetime and
// history is not persisted across restarts. That matches the reference
// behavior and is the documented resource trade-off.
package sessions

import (
	"sync"

	"github.com/poochpalace/adoptions/pkg/models"
)

// Registry maps user keys to their conversation sessions. The zero value
// is not usable; construct with NewRegistry. The key-to-session map is
// the only shared mutable structure in the core and is guarded here.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// SessionFor returns the session for userKey, creating it if absent.
// Lookup-or-create is atomic per key: concurrent first-time calls for
// the same key all observe the same session instance, and at most one
// session ever exists per key for the registry's lifetime.
func (r *Registry) SessionFor(userKey string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userKey]
	if !ok {
		s = &Session{userKey: userKey}
		r.sessions[userKey] = s
	}
	return s
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Session is one user's ordered conversation history. Turns are only
// appended, never rewritten; histories of different users are fully
// independent.
type Session struct {
	mu      sync.Mutex
	userKey string
	turns   []models.ChatMessage
}

// UserKey returns the key the session was created for.
func (s *Session) UserKey() string { return s.userKey }

// History returns a copy of the turns so far. The copy is a consistent
// ordered prefix regardless of concurrent appends.
func (s *Session) History() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ChatMessage, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of recorded turns.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

// AppendExchange records a completed question/answer pair under one
// lock: either both turns land or neither does. Callers only invoke this
// after a successful backend round-trip.
func (s *Session) AppendExchange(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns = append(s.turns,
		models.ChatMessage{Role: models.RoleUser, Content: question},
		models.ChatMessage{Role: models.RoleAssistant, Content: answer},
	)
}
