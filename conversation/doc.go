// Package conversation implements the per-call turn-taking protocol between a
// telephony webhook caller and a chat completion model.
//
// A call moves through four states:
//
//	GREETING -> AWAITING_SPEECH <-> PROCESSING_TURN -> ENDED
//
// Initiate seeds the session and greets the caller, Turn records one user
// utterance and (on success) one assistant reply, and Status tears the session
// down when the provider reports a final call status. Every operation returns
// a Reply describing what to speak and whether to keep listening; failures are
// turned into spoken apologies, never surfaced as errors.
package conversation
