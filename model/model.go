package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/callmesh/core"
)

// Result is the outcome of a single completion attempt: either the reply
// text or the reason it failed. Exactly one of the two is meaningful.
type Result struct {
	Text string
	Err  error
}

// Success builds a successful Result.
func Success(text string) Result { return Result{Text: text} }

// Failure builds a failed Result. A nil reason is replaced with a generic one
// so OK never reports success for a failure.
func Failure(reason error) Result {
	if reason == nil {
		reason = fmt.Errorf("completion failed")
	}
	return Result{Err: reason}
}

// OK reports whether the completion succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Info contains metadata about a completer implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock"
}

// Completer generates the next assistant reply for a conversation history.
// Implementations perform a single attempt and never panic past this
// boundary; every failure is reported through Result.
type Completer interface {
	Complete(ctx context.Context, history []core.Message) Result

	// Info returns information about the completer implementation.
	Info() Info
}

// Options are the generation parameters shared by all provider adapters.
type Options struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

// CleanText trims provider output and reports ErrEmptyReply for blank text.
func CleanText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", core.ErrEmptyReply
	}
	return text, nil
}

// MockModel is a scripted Completer useful for tests and offline runs.
// Queued results are returned in order; once the queue is empty the fallback
// echo reply is produced.
type MockModel struct {
	mu      sync.Mutex
	info    Info
	queue   []Result
	calls   [][]core.Message
	replies map[string]string
}

// NewMockModel constructs an empty MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:    Info{Name: name, Provider: "mock"},
		replies: make(map[string]string),
	}
}

// AddResponse registers a canned reply for an exact user utterance.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[prompt] = response
}

// Enqueue schedules results returned by subsequent Complete calls.
func (m *MockModel) Enqueue(results ...Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, results...)
}

// Calls returns copies of every history passed to Complete.
func (m *MockModel) Calls() [][]core.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]core.Message, len(m.calls))
	for i, c := range m.calls {
		out[i] = append([]core.Message(nil), c...)
	}
	return out
}

// Complete implements Completer.
func (m *MockModel) Complete(ctx context.Context, history []core.Message) Result {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]core.Message(nil), history...))

	if err := ctx.Err(); err != nil {
		return Failure(err)
	}
	if len(m.queue) > 0 {
		r := m.queue[0]
		m.queue = m.queue[1:]
		return r
	}
	if len(history) == 0 {
		return Failure(fmt.Errorf("no messages provided"))
	}
	last := history[len(history)-1]
	if reply, ok := m.replies[last.Content]; ok {
		return Success(reply)
	}
	return Success(fmt.Sprintf("Mock response to: %s", last.Content))
}

// Info implements Completer.
func (m *MockModel) Info() Info { return m.info }
