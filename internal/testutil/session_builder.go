package testutil

import (
	"fmt"

	"github.com/hupe1980/callmesh/core"
)

// SessionBuilder helps construct call sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("CA1").Greeting("hi").Turn("hello", "how can I help?").Build()
type SessionBuilder struct {
	callID   string
	system   string
	messages []core.Message
}

// NewSessionBuilder creates a new builder for the given call id with a
// placeholder system prompt.
func NewSessionBuilder(callID string) *SessionBuilder {
	return &SessionBuilder{callID: callID, system: "system prompt"}
}

// System overrides the system prompt (chainable).
func (b *SessionBuilder) System(prompt string) *SessionBuilder {
	b.system = prompt
	return b
}

// Greeting appends an assistant greeting (chainable).
func (b *SessionBuilder) Greeting(text string) *SessionBuilder {
	b.messages = append(b.messages, core.NewAssistantMessage(text))
	return b
}

// User appends a user message (chainable).
func (b *SessionBuilder) User(text string) *SessionBuilder {
	b.messages = append(b.messages, core.NewUserMessage(text))
	return b
}

// Assistant appends an assistant message (chainable).
func (b *SessionBuilder) Assistant(text string) *SessionBuilder {
	b.messages = append(b.messages, core.NewAssistantMessage(text))
	return b
}

// Turn appends one user/assistant exchange (chainable).
func (b *SessionBuilder) Turn(user, assistant string) *SessionBuilder {
	return b.User(user).Assistant(assistant)
}

// Turns appends n numbered exchanges "u1"/"a1" ... "un"/"an" (chainable).
func (b *SessionBuilder) Turns(n int) *SessionBuilder {
	for i := 1; i <= n; i++ {
		b.Turn(fmt.Sprintf("u%d", i), fmt.Sprintf("a%d", i))
	}
	return b
}

// History returns the full message sequence including the system message.
func (b *SessionBuilder) History() []core.Message {
	out := make([]core.Message, 0, len(b.messages)+1)
	out = append(out, core.NewSystemMessage(b.system))
	return append(out, b.messages...)
}

// Build returns a *core.Session populated with the accumulated history.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.callID, b.system)
	for _, m := range b.messages {
		s.Append(m)
	}
	return s
}
