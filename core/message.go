package core

import "strings"

// Role identifies the author of a conversation message.
type Role string

const (
	// RoleSystem carries the assistant persona instructions.
	RoleSystem Role = "system"
	// RoleUser carries transcribed caller speech.
	RoleUser Role = "user"
	// RoleAssistant carries generated replies spoken back to the caller.
	RoleAssistant Role = "assistant"
)

// String returns the wire name of the role.
func (r Role) String() string { return string(r) }

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Message is a single conversation entry. After it has been appended to a
// session it should be treated as immutable.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewSystemMessage creates a system-role message.
func NewSystemMessage(text string) Message { return Message{Role: RoleSystem, Content: text} }

// NewUserMessage creates a user-role message.
func NewUserMessage(text string) Message { return Message{Role: RoleUser, Content: text} }

// NewAssistantMessage creates an assistant-role message.
func NewAssistantMessage(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// IsEmpty reports whether the message carries no visible text.
func (m Message) IsEmpty() bool { return strings.TrimSpace(m.Content) == "" }
