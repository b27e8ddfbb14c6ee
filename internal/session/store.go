// Package session holds the process-wide conversation state: per-project
// orchestration histories and per-user chat sessions. The store is
// constructed once at startup and handed to its consumers; it is not a
// package-level singleton.
package session

import (
	"strings"
	"sync"

	"github.com/rajavardhan19/NEXO.AI-WEBSITE-BUILDER-BACKEND/internal/engine"
)

// MaxChatEntries caps a chat session's history. The oldest entries are
// evicted first so the token volume sent to the model stays bounded.
const MaxChatEntries = 20

// ChatEntry is one user or model message in an assistant chat session.
type ChatEntry struct {
	Role engine.Role `json:"role"`
	Text string      `json:"text"`
}

// Store is the keyed conversation state container. All methods are safe
// for concurrent use; LockProject additionally provides the per-project
// mutual exclusion one loop run needs for the duration of its history
// read-modify-write.
type Store struct {
	mu       sync.Mutex
	projects map[string][]engine.Turn
	chats    map[string][]ChatEntry
	locks    map[string]*sync.Mutex
}

// NewStore creates an empty conversation store.
func NewStore() *Store {
	return &Store{
		projects: make(map[string][]engine.Turn),
		chats:    make(map[string][]ChatEntry),
		locks:    make(map[string]*sync.Mutex),
	}
}

// History returns a copy of the project's conversation history, creating
// the entry lazily on first reference.
func (s *Store) History(projectID string) []engine.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.projects[projectID]
	if !ok {
		s.projects[projectID] = nil
		return nil
	}
	out := make([]engine.Turn, len(turns))
	copy(out, turns)
	return out
}

// SetHistory replaces the project's history with the given turns.
func (s *Store) SetHistory(projectID string, turns []engine.Turn) {
	copied := make([]engine.Turn, len(turns))
	copy(copied, turns)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[projectID] = copied
}

// DeleteHistory purges the project's history entry. Called on project
// deletion; histories are never truncated otherwise.
func (s *Store) DeleteHistory(projectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, projectID)
}

// LockProject acquires the per-project mutex and returns its release
// function. Only one loop run owns a given project's history at a time;
// runs for different projects proceed concurrently.
func (s *Store) LockProject(projectID string) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[projectID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[projectID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// AppendChat appends one entry to a chat session, evicting the oldest
// entry when the session exceeds MaxChatEntries.
func (s *Store) AppendChat(sessionID string, role engine.Role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := append(s.chats[sessionID], ChatEntry{Role: role, Text: text})
	if len(entries) > MaxChatEntries {
		entries = entries[len(entries)-MaxChatEntries:]
	}
	s.chats[sessionID] = entries
}

// Chat returns a copy of the session's entries, oldest first.
func (s *Store) Chat(sessionID string) []ChatEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.chats[sessionID]
	out := make([]ChatEntry, len(entries))
	copy(out, entries)
	return out
}

// ClearChat removes a chat session.
func (s *Store) ClearChat(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.chats, sessionID)
}

// FormatChat renders a session as a plain transcript, one "Role: text"
// line per entry, for inclusion in assistant prompts.
func (s *Store) FormatChat(sessionID string) string {
	entries := s.Chat(sessionID)
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	for _, e := range entries {
		switch e.Role {
		case engine.RoleModel:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(e.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
