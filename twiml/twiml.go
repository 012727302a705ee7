// Package twiml builds the TwiML documents returned from voice webhooks.
//
// Only the verbs the conversation protocol needs are exposed: Say to speak,
// Gather to capture speech and post it to an action URL, and Hangup.
// Rendering is delegated to the Twilio helper library.
package twiml

import (
	"fmt"

	twilio "github.com/twilio/twilio-go/twiml"
)

// ContentType is the media type of rendered documents.
const ContentType = "text/xml; charset=utf-8"

// GatherElement configures a <Gather input="speech"> verb.
type GatherElement struct {
	Input         string
	Action        string
	Method        string
	SpeechTimeout string
	Language      string
	Enhanced      bool
}

func (g GatherElement) voice() *twilio.VoiceGather {
	vg := &twilio.VoiceGather{
		Input:         g.Input,
		Action:        g.Action,
		Method:        g.Method,
		SpeechTimeout: g.SpeechTimeout,
		Language:      g.Language,
	}
	if g.Enhanced {
		vg.Enhanced = "true"
	}
	return vg
}

// Response accumulates verbs in document order.
type Response struct {
	verbs []twilio.Element
}

// NewResponse starts an empty document.
func NewResponse() *Response { return &Response{} }

// SayOption customizes a <Say> verb.
type SayOption func(*twilio.VoiceSay)

// WithVoice sets the voice attribute (e.g. "Polly.Joanna-Neural").
func WithVoice(voice string) SayOption {
	return func(s *twilio.VoiceSay) { s.Voice = voice }
}

// Say appends a <Say> verb. Empty text is skipped.
func (r *Response) Say(text string, opts ...SayOption) *Response {
	if text == "" {
		return r
	}
	say := &twilio.VoiceSay{Message: text}
	for _, opt := range opts {
		opt(say)
	}
	r.verbs = append(r.verbs, say)
	return r
}

// Gather appends a <Gather> verb.
func (r *Response) Gather(g GatherElement) *Response {
	r.verbs = append(r.verbs, g.voice())
	return r
}

// Hangup appends a <Hangup/> verb.
func (r *Response) Hangup() *Response {
	r.verbs = append(r.verbs, &twilio.VoiceHangup{})
	return r
}

// Bytes renders the document.
func (r *Response) Bytes() ([]byte, error) {
	out, err := twilio.Voice(r.verbs)
	if err != nil {
		return nil, fmt.Errorf("render twiml: %w", err)
	}
	return []byte(out), nil
}

// String renders the document, falling back to an empty <Response/> when
// rendering fails.
func (r *Response) String() string {
	b, err := r.Bytes()
	if err != nil {
		return "<Response></Response>"
	}
	return string(b)
}
