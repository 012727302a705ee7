package conversation

// State is the position of a call in the turn-taking protocol.
type State int

const (
	// StateGreeting is entered while the call is being initiated.
	StateGreeting State = iota
	// StateAwaitingSpeech means speech capture is armed.
	StateAwaitingSpeech
	// StateProcessingTurn means an utterance is being answered.
	StateProcessingTurn
	// StateEnded means the call is over and its session is gone.
	StateEnded
)

// String returns the canonical upper-case name of the state.
func (s State) String() string {
	switch s {
	case StateGreeting:
		return "GREETING"
	case StateAwaitingSpeech:
		return "AWAITING_SPEECH"
	case StateProcessingTurn:
		return "PROCESSING_TURN"
	case StateEnded:
		return "ENDED"
	default:
		return "UNKNOWN"
	}
}

// Reply is the outcome of a protocol operation for the webhook edge.
type Reply struct {
	// Say is spoken to the caller first.
	Say string
	// Listen arms speech capture for the next turn.
	Listen bool
	// Reprompt, when set, is spoken after a first capture window that
	// produced no input, followed by a second capture.
	Reprompt string
	// Hangup terminates the call after Say.
	Hangup bool
	// Fallback marks apology prompts produced instead of a model reply.
	Fallback bool
	// State is the call state after the operation.
	State State
}

func listen(say string) Reply {
	return Reply{Say: say, Listen: true, State: StateAwaitingSpeech}
}

func fallback(say string) Reply {
	r := listen(say)
	r.Fallback = true
	return r
}
