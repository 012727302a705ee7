package session

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hupe1980/callmesh/core"
)

// DefaultSystemPrompt is the persona every new call starts with.
const DefaultSystemPrompt = "You are a helpful, professional customer support voice assistant. " +
	"Keep your responses concise and natural for a phone conversation. " +
	"Avoid using markdown or special characters that are hard to read aloud. " +
	"If the user wants to end the call, say goodbye politely."

// Options configures an InMemoryStore.
type Options struct {
	// SystemPrompt seeds the leading system message of every session.
	SystemPrompt string
}

// WithSystemPrompt overrides the persona prompt.
func WithSystemPrompt(prompt string) func(o *Options) {
	return func(o *Options) { o.SystemPrompt = prompt }
}

// InMemoryStore is a volatile SessionStore keeping call histories in a
// process local map. It is safe for concurrent access. Every returned session
// is cloned to prevent external mutation of internal state.
type InMemoryStore struct {
	opts Options

	mu       sync.RWMutex
	sessions map[string]*core.Session

	locksMu sync.Mutex
	locks   map[string]*callLock
}

// callLock is a reference counted mutex so idle call ids do not pin memory.
type callLock struct {
	mu   sync.Mutex
	refs int
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{SystemPrompt: DefaultSystemPrompt}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{
		opts:     opts,
		sessions: make(map[string]*core.Session),
		locks:    make(map[string]*callLock),
	}
}

// Create forces the creation (or overwriting) of a session with the given id.
func (s *InMemoryStore) Create(callID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSessionLocked(callID).Clone(), nil
}

// Get returns a clone of an existing session or core.ErrSessionNotFound.
func (s *InMemoryStore) Get(callID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[callID]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", callID, core.ErrSessionNotFound)
	}
	return sess.Clone(), nil
}

// GetOrCreate returns the existing session or lazily creates a fresh one.
func (s *InMemoryStore) GetOrCreate(callID string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[callID]; ok {
		return sess.Clone(), nil
	}
	return s.createSessionLocked(callID).Clone(), nil
}

// Append adds a message to an existing session.
func (s *InMemoryStore) Append(callID string, msg core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[callID]
	if !ok {
		return fmt.Errorf("append to %q: %w", callID, core.ErrSessionNotFound)
	}
	sess.Append(msg)
	return nil
}

// Delete removes the session. Deleting an unknown id is not an error.
func (s *InMemoryStore) Delete(callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, callID)
	return nil
}

// List returns clones of all active sessions ordered by call id.
func (s *InMemoryStore) List() []*core.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CallID < out[j].CallID })
	return out
}

// Len returns the number of active sessions.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Lock acquires the per-call mutex for callID and returns its release func.
func (s *InMemoryStore) Lock(callID string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[callID]
	if !ok {
		l = &callLock{}
		s.locks[callID] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			s.locksMu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, callID)
			}
			s.locksMu.Unlock()
		})
	}
}

// createSessionLocked allocates and stores a new session; caller must already
// hold the write lock.
func (s *InMemoryStore) createSessionLocked(callID string) *core.Session {
	sess := core.NewSession(callID, s.opts.SystemPrompt)
	s.sessions[callID] = sess
	return sess
}
