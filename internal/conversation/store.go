// Package conversation holds the message log and drives one turn at a time.
package conversation

import (
	"sync"

	"github.com/google/uuid"

	apierrors "github.com/diogo/estatechat/internal/errors"
	"github.com/diogo/estatechat/internal/models"
)

// Store is the ordered message log. The only mutation after Append is
// replacing the trailing pending message.
type Store struct {
	mu       sync.RWMutex
	messages []models.Message
}

// NewStore creates a store seeded with the given messages
func NewStore(initial ...models.Message) *Store {
	s := &Store{}
	for _, m := range initial {
		_ = s.Append(m)
	}
	return s
}

// Append adds msg at the end of the log. A pending message can only be
// appended when none is outstanding.
func (s *Store) Append(msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.messages); n > 0 && s.messages[n-1].IsPending() {
		return apierrors.NewInvariantError("append", "a pending message is still outstanding")
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	s.messages = append(s.messages, msg)
	return nil
}

// ReplaceLast resolves the trailing pending message into msg
func (s *Store) ReplaceLast(msg models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.messages)
	if n == 0 {
		return apierrors.NewInvariantError("replace", "conversation is empty")
	}
	last := s.messages[n-1]
	if !last.IsPending() {
		return apierrors.NewInvariantError("replace", "last message is "+last.Kind.String()+", not pending")
	}
	if msg.IsPending() {
		return apierrors.NewInvariantError("replace", "replacement must be a resolved message")
	}

	if msg.ID == "" {
		msg.ID = last.ID
	}
	s.messages[n-1] = msg
	return nil
}

// Snapshot returns a copy of the log for rendering
func (s *Store) Snapshot() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Get returns the message at index i
func (s *Store) Get(i int) (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i < 0 || i >= len(s.messages) {
		return models.Message{}, false
	}
	return s.messages[i], true
}

// Pending reports whether the log ends with a pending message
func (s *Store) Pending() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.messages)
	return n > 0 && s.messages[n-1].IsPending()
}
