// Package session provides per-conversation funnel state for LeadFunnel.
//
// Sessions are advisory, in-memory state keyed by the opaque conversation id
// assigned by the messaging channel. They are created lazily on first access
// and live for the process lifetime; durability is intentionally not provided.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/BTreeMap/LeadFunnel/internal/models"
)

// Session holds the mutable funnel state for one conversation.
type Session struct {
	ConversationID string
	Stage          models.Stage
	Goal           models.Goal
	TimeSlot       models.TimeSlot
	Contact        *models.ContactRecord
	// LastPrompt tags the most recent prompt sent so that repeated
	// unrecognized input in the same stage does not re-send the same nudge.
	LastPrompt models.PromptKind
	SenderName string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Reset clears the session back to the idle stage with all optional fields empty.
func (s *Session) Reset() {
	s.Stage = models.StageIdle
	s.Goal = ""
	s.TimeSlot = ""
	s.Contact = nil
	s.LastPrompt = models.PromptKindNone
	s.UpdatedAt = time.Now()
}

// Touch records that the session was just mutated.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// Store defines the session storage abstraction used by the dialogue engine.
type Store interface {
	// GetOrCreate returns the session for the conversation, creating an idle
	// session on first access.
	GetOrCreate(conversationID string) *Session

	// Lock serializes event handling for one conversation. Events for other
	// conversations are not blocked.
	Lock(conversationID string)

	// Unlock releases the per-conversation lock taken by Lock.
	Unlock(conversationID string)

	// Len reports the number of known sessions.
	Len() int
}

// InMemoryStore is the process-wide session store. Access to the session map
// and each session's fields is serialized per conversation via keyed mutexes.
type InMemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	locks    map[string]*sync.Mutex
}

// NewInMemoryStore creates an empty in-memory session store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		sessions: make(map[string]*Session),
		locks:    make(map[string]*sync.Mutex),
	}
}

// GetOrCreate returns the session for the conversation, creating an idle one
// on first access.
func (s *InMemoryStore) GetOrCreate(conversationID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[conversationID]
	if !ok {
		now := time.Now()
		sess = &Session{
			ConversationID: conversationID,
			Stage:          models.StageIdle,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		s.sessions[conversationID] = sess
		slog.Debug("SessionStore created session", "conversation_id", conversationID)
	}
	return sess
}

// Lock acquires the per-conversation mutex, creating it on first use.
func (s *InMemoryStore) Lock(conversationID string) {
	s.mu.Lock()
	lock, ok := s.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[conversationID] = lock
	}
	s.mu.Unlock()
	lock.Lock()
}

// Unlock releases the per-conversation mutex.
func (s *InMemoryStore) Unlock(conversationID string) {
	s.mu.Lock()
	lock, ok := s.locks[conversationID]
	s.mu.Unlock()
	if ok {
		lock.Unlock()
	}
}

// Len reports the number of known sessions.
func (s *InMemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
