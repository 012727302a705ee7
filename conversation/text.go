package conversation

import (
	"regexp"
	"strings"

	"github.com/hupe1980/callmesh/core"
)

// DefaultGoodbyePhrases end the call when found in an assistant reply.
var DefaultGoodbyePhrases = []string{"goodbye", "bye-bye", "have a great day"}

var rolePrefix = regexp.MustCompile(`(?i)^(Assistant:|AI:|Output:)`)

// CleanReply strips a leading role label echoed by some models and trims
// surrounding whitespace.
func CleanReply(text string) string {
	text = strings.TrimSpace(text)
	return strings.TrimSpace(rolePrefix.ReplaceAllString(text, ""))
}

// IsGoodbye reports whether text contains any of phrases, case-insensitively.
func IsGoodbye(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Window returns the leading system message plus the most recent max
// messages. A max of zero or less disables windowing.
func Window(history []core.Message, max int) []core.Message {
	if max <= 0 || len(history) <= max+1 {
		return history
	}
	if history[0].Role != core.RoleSystem {
		return history[len(history)-max:]
	}
	out := make([]core.Message, 0, max+1)
	out = append(out, history[0])
	return append(out, history[len(history)-max:]...)
}
