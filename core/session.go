package core

import (
	"time"
)

// Session is the ordered conversation history of one phone call, keyed by
// the provider assigned call identifier.
//
// Contract:
//   - Messages always begins with exactly one system message
//   - After the system message, user and assistant messages alternate
//   - Clone performs a deep copy so snapshots never alias store state
type Session struct {
	CallID   string    `json:"call_id"`
	Messages []Message `json:"messages"`
	Created  time.Time `json:"created"`
	Updated  time.Time `json:"updated"`
}

// NewSession creates a session seeded with a single system message.
func NewSession(callID, systemPrompt string) *Session {
	now := time.Now()
	return &Session{
		CallID:   callID,
		Messages: []Message{NewSystemMessage(systemPrompt)},
		Created:  now,
		Updated:  now,
	}
}

// Append adds a message to the end of the history updating Updated.
func (s *Session) Append(msg Message) {
	s.Messages = append(s.Messages, msg)
	s.Updated = time.Now()
}

// Len returns the number of messages in the history.
func (s *Session) Len() int { return len(s.Messages) }

// Last returns the most recent message, if any.
func (s *Session) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// History returns a copy of the message sequence.
func (s *Session) History() []Message {
	out := make([]Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	return &Session{
		CallID:   s.CallID,
		Messages: s.History(),
		Created:  s.Created,
		Updated:  s.Updated,
	}
}

// SessionStore owns the per-call conversation histories.
//
// Create overwrites, Append requires an existing session and Delete is
// idempotent. Lock serializes work on a single call id and returns the
// matching unlock function.
type SessionStore interface {
	Create(callID string) (*Session, error)
	Get(callID string) (*Session, error)
	GetOrCreate(callID string) (*Session, error)
	Append(callID string, msg Message) error
	Delete(callID string) error
	List() []*Session
	Lock(callID string) func()
}
