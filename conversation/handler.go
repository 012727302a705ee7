package conversation

import (
	"context"
	"strings"
	"time"

	"github.com/hupe1980/callmesh/core"
	"github.com/hupe1980/callmesh/logging"
	"github.com/hupe1980/callmesh/model"
)

// Fixed prompts spoken by the protocol.
const (
	DefaultGreeting     = "Hello! This is your customer assistant. How can I help you today?"
	DefaultReprompt     = "I'm still here if you need help."
	DefaultNoSpeech     = "I'm sorry, I didn't catch that. Could you please repeat?"
	DefaultConnectivity = "I'm having a bit of trouble connecting. Can you say that again?"

	// DefaultMaxHistory bounds the messages (after the system prompt) sent
	// to the completer on each turn.
	DefaultMaxHistory = 20
)

// finalStatuses are the provider call statuses that end a call.
var finalStatuses = map[string]struct{}{
	"completed": {},
	"failed":    {},
	"busy":      {},
	"no-answer": {},
}

// IsFinalStatus reports whether a provider call status ends the call.
func IsFinalStatus(status string) bool {
	_, ok := finalStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// Options configures a Handler.
type Options struct {
	Greeting       string
	Reprompt       string
	NoSpeech       string
	Connectivity   string
	GoodbyePhrases []string
	// MaxHistory caps the messages after the system prompt sent per turn;
	// zero sends the whole history.
	MaxHistory int
	Logger     logging.Logger
}

// Handler drives the per-call conversation protocol on top of a session
// store and a completer. It is safe for concurrent use; turns for the same
// call id are serialized through the store's per-call lock.
type Handler struct {
	store     core.SessionStore
	completer model.Completer
	opts      Options
}

// NewHandler wires a Handler to its store and completer.
func NewHandler(store core.SessionStore, completer model.Completer, optFns ...func(o *Options)) *Handler {
	opts := Options{
		Greeting:       DefaultGreeting,
		Reprompt:       DefaultReprompt,
		NoSpeech:       DefaultNoSpeech,
		Connectivity:   DefaultConnectivity,
		GoodbyePhrases: DefaultGoodbyePhrases,
		MaxHistory:     DefaultMaxHistory,
		Logger:         logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Handler{store: store, completer: completer, opts: opts}
}

// Initiate starts a fresh conversation for callID, discarding any previous
// history, and greets the caller.
func (h *Handler) Initiate(ctx context.Context, callID string) Reply {
	log := logging.ForCall(h.opts.Logger, callID)
	unlock := h.store.Lock(callID)
	defer unlock()

	if _, err := h.store.Create(callID); err != nil {
		log.Error("Failed to create session", "error", err)
	} else if err := h.store.Append(callID, core.NewAssistantMessage(h.opts.Greeting)); err != nil {
		log.Error("Failed to record greeting", "error", err)
	}
	log.Info("Incoming call")

	return Reply{
		Say:      h.opts.Greeting,
		Listen:   true,
		Reprompt: h.opts.Reprompt,
		State:    StateAwaitingSpeech,
	}
}

// Turn answers one caller utterance. Empty speech leaves history untouched;
// a failed completion records the user message but no assistant reply.
func (h *Handler) Turn(ctx context.Context, callID, speech string) Reply {
	log := logging.ForCall(h.opts.Logger, callID)
	speech = strings.TrimSpace(speech)
	if speech == "" {
		log.Debug("No speech detected")
		return fallback(h.opts.NoSpeech)
	}
	log.Info("Speech detected", "speech", speech)

	unlock := h.store.Lock(callID)
	defer unlock()

	sess, err := h.store.GetOrCreate(callID)
	if err != nil {
		log.Error("Failed to load session", "error", err)
		return fallback(h.opts.Connectivity)
	}
	user := core.NewUserMessage(speech)
	if err := h.store.Append(callID, user); err != nil {
		log.Error("Failed to record utterance", "error", err)
		return fallback(h.opts.Connectivity)
	}
	sess.Append(user)

	text, ok := h.complete(ctx, log, sess.Messages)
	if !ok {
		return fallback(h.opts.Connectivity)
	}

	if err := h.store.Append(callID, core.NewAssistantMessage(text)); err != nil {
		log.Error("Failed to record reply", "error", err)
	}
	log.Info("Assistant reply", "reply", text)

	if IsGoodbye(text, h.opts.GoodbyePhrases) {
		_ = h.store.Delete(callID)
		log.Info("Goodbye detected, ending call")
		return Reply{Say: text, Hangup: true, State: StateEnded}
	}
	return listen(text)
}

// complete runs the completer over the windowed history and returns the
// cleaned reply text.
func (h *Handler) complete(ctx context.Context, log logging.Logger, history []core.Message) (string, bool) {
	start := time.Now()
	res := h.completer.Complete(ctx, Window(history, h.opts.MaxHistory))
	if res.OK() {
		if text := CleanReply(res.Text); text != "" {
			res = model.Success(text)
		} else {
			res = model.Failure(core.ErrEmptyReply)
		}
	}
	logCompletion(log, h.completer.Info().Name, time.Since(start), res.Err)
	return res.Text, res.OK()
}

// Status handles a provider status callback. Final statuses delete the
// session and report true; others are acknowledged without effect.
func (h *Handler) Status(ctx context.Context, callID, status string) bool {
	if !IsFinalStatus(status) {
		return false
	}
	unlock := h.store.Lock(callID)
	defer unlock()

	_ = h.store.Delete(callID)
	logging.ForCall(h.opts.Logger, callID).Info("Session ended and cleaned up", "status", status)
	return true
}

// CallState reports the protocol state of callID as seen from outside a
// turn: awaiting speech while a session exists, ended otherwise.
func (h *Handler) CallState(callID string) State {
	if _, err := h.store.Get(callID); err != nil {
		return StateEnded
	}
	return StateAwaitingSpeech
}

type completionLogger interface {
	LogCompletion(model string, dur time.Duration, success bool, err error)
}

func logCompletion(log logging.Logger, name string, dur time.Duration, err error) {
	if cl, ok := log.(completionLogger); ok {
		cl.LogCompletion(name, dur, err == nil, err)
		return
	}
	if err != nil {
		log.Error("Completion failed", "model", name, "duration", dur, "error", err)
		return
	}
	log.Debug("Completion finished", "model", name, "duration", dur)
}
