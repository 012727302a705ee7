package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/callmesh/core"
	"github.com/hupe1980/callmesh/internal/testutil"
)

func TestCleanReply(t *testing.T) {
	cases := map[string]string{
		"Assistant: Hello":      "Hello",
		"ai:Sure thing":         "Sure thing",
		"  OUTPUT:  Done.  ":    "Done.",
		"Plain answer":          "Plain answer",
		"The AI: is mid-string": "The AI: is mid-string",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanReply(in), in)
	}
}

func TestIsGoodbye(t *testing.T) {
	assert.True(t, IsGoodbye("GOODBYE and thanks", DefaultGoodbyePhrases))
	assert.True(t, IsGoodbye("ok bye-bye", DefaultGoodbyePhrases))
	assert.True(t, IsGoodbye("Have a great day!", DefaultGoodbyePhrases))
	assert.False(t, IsGoodbye("Our hours are nine to five.", DefaultGoodbyePhrases))
	assert.False(t, IsGoodbye("bye", DefaultGoodbyePhrases))
	assert.False(t, IsGoodbye("anything", []string{""}))
}

func TestWindow(t *testing.T) {
	msgs := testutil.NewSessionBuilder("CA1").
		System("s").
		Greeting("a1").
		User("u1").
		Assistant("a2").
		User("u2").
		History()

	assert.Equal(t, msgs, Window(msgs, 0))
	assert.Equal(t, msgs, Window(msgs, 4))
	assert.Equal(t, msgs, Window(msgs, 10))

	got := Window(msgs, 2)
	assert.Equal(t, []core.Message{msgs[0], msgs[3], msgs[4]}, got)

	noSystem := msgs[1:]
	assert.Equal(t, []core.Message{msgs[3], msgs[4]}, Window(noSystem, 2))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "GREETING", StateGreeting.String())
	assert.Equal(t, "AWAITING_SPEECH", StateAwaitingSpeech.String())
	assert.Equal(t, "PROCESSING_TURN", StateProcessingTurn.String())
	assert.Equal(t, "ENDED", StateEnded.String())
	assert.Equal(t, "UNKNOWN", State(9).String())
}

func TestWindow_LongCallKeepsSystemPrompt(t *testing.T) {
	sess := testutil.NewSessionBuilder("CA1").System("persona").Greeting("hi").Turns(30).Build()
	require.Equal(t, 62, sess.Len())

	got := Window(sess.History(), DefaultMaxHistory)
	require.Len(t, got, DefaultMaxHistory+1)
	assert.Equal(t, core.NewSystemMessage("persona"), got[0])
	assert.Equal(t, core.NewUserMessage("u21"), got[1])
	assert.Equal(t, core.NewAssistantMessage("a30"), got[len(got)-1])
}
