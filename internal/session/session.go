// Package session tracks per-session chat state and parses the inline
// chat syntax: slash commands and #tag retrieval filters.
package session

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// Message is one entry in a session's chat history.
type Message struct {
	Role    string
	Content string
	Filters []string
}

// State is the per-session record: an optional project lock plus the
// running chat history.
type State struct {
	SessionID   string
	ProjectLock string
	History     []Message
}

// Store is an in-memory session registry. All mutation goes through the
// store's lock; HTTP handlers run concurrently, so callers never modify a
// State directly. Sessions live for the life of the process; there is no
// persistence.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*State)}
}

func (st *Store) get(sessionID string) *State {
	state, ok := st.sessions[sessionID]
	if !ok {
		state = &State{SessionID: sessionID}
		st.sessions[sessionID] = state
	}
	return state
}

// Get returns a snapshot of the session state, creating the session on
// first use.
func (st *Store) Get(sessionID string) State {
	st.mu.Lock()
	defer st.mu.Unlock()
	state := st.get(sessionID)
	snapshot := *state
	snapshot.History = make([]Message, len(state.History))
	copy(snapshot.History, state.History)
	return snapshot
}

// Append records a message in the session history.
func (st *Store) Append(sessionID, role, content string, filters []string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	state := st.get(sessionID)
	state.History = append(state.History, Message{Role: role, Content: content, Filters: filters})
}

// ProjectLock returns the project the session is locked to, or "".
func (st *Store) ProjectLock(sessionID string) string {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.get(sessionID).ProjectLock
}

// Clear replaces the session with a fresh state.
func (st *Store) Clear(sessionID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sessionID] = &State{SessionID: sessionID}
}

// SetProject locks a session to a project.
func (st *Store) SetProject(sessionID, projectID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.get(sessionID).ProjectLock = projectID
}

// CommandClear resets the session history.
const CommandClear = "clear"

var commandPattern = regexp.MustCompile(`^/(\w+)`)

// IdentifyCommand extracts a leading slash command from a message, or
// returns "" when the message is plain chat.
func IdentifyCommand(message string) string {
	m := commandPattern.FindStringSubmatch(strings.TrimSpace(message))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// ApplyCommand executes a recognized slash command against the store.
func ApplyCommand(store *Store, sessionID, command string) (string, error) {
	switch command {
	case CommandClear:
		store.Clear(sessionID)
		return "Session cleared.", nil
	default:
		return "", fmt.Errorf("unsupported command: /%s", command)
	}
}

// ExtractFilters strips #tag tokens from a message and returns the cleaned
// text plus the lower-cased tags, in order of first appearance.
func ExtractFilters(message string) (string, []string) {
	var filters []string
	seen := make(map[string]struct{})
	var words []string
	for _, word := range strings.Fields(message) {
		if tag, ok := strings.CutPrefix(word, "#"); ok && tag != "" {
			tag = strings.ToLower(tag)
			if _, dup := seen[tag]; !dup {
				seen[tag] = struct{}{}
				filters = append(filters, tag)
			}
			continue
		}
		words = append(words, word)
	}
	return strings.Join(words, " "), filters
}
