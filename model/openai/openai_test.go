package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/callmesh/core"
	"github.com/hupe1980/callmesh/internal/testutil"
	"github.com/hupe1980/callmesh/model"
)

var _ model.Completer = (*Model)(nil)

const completionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "test-model",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "  We open at nine.  "}}
  ]
}`

func history() []core.Message {
	return testutil.NewSessionBuilder("CA1").
		System("persona").
		Greeting("Hello!").
		User("What are your hours?").
		History()
}

func newTestModel(t *testing.T, handler http.HandlerFunc) *Model {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewModel(func(o *Options) {
		o.APIKey = "hf_test"
		o.BaseURL = srv.URL
		o.Model = "test-model"
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestModel_CompleteSendsRequestShape(t *testing.T) {
	var captured map[string]any
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))
		writeJSON(w, http.StatusOK, completionBody)
	})

	res := m.Complete(context.Background(), history())

	require.True(t, res.OK(), "unexpected failure: %v", res.Err)
	assert.Equal(t, "We open at nine.", res.Text)

	assert.Equal(t, "test-model", captured["model"])
	assert.EqualValues(t, 150, captured["max_tokens"])
	assert.InDelta(t, 0.7, captured["temperature"], 1e-9)

	msgs, ok := captured["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 3)
	roles := make([]string, 0, len(msgs))
	for _, raw := range msgs {
		roles = append(roles, raw.(map[string]any)["role"].(string))
	}
	assert.Equal(t, []string{"system", "assistant", "user"}, roles)
	assert.Equal(t, "What are your hours?", msgs[2].(map[string]any)["content"])
}

func TestModel_CompleteHTTPErrorIsFailure(t *testing.T) {
	var calls int32
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, `{"error":{"message":"overloaded"}}`)
	})

	res := m.Complete(context.Background(), history())

	assert.False(t, res.OK())
	assert.Contains(t, res.Err.Error(), "openai api error")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls), "adapter must not retry")
}

func TestModel_CompleteMalformedBodyIsFailure(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"choices": [`)
	})

	res := m.Complete(context.Background(), history())
	assert.False(t, res.OK())
}

func TestModel_CompleteNoChoicesIsFailure(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`)
	})

	res := m.Complete(context.Background(), history())
	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err, core.ErrNoChoices)
}

func TestModel_CompleteBlankContentIsFailure(t *testing.T) {
	m := newTestModel(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"   "}}]}`)
	})

	res := m.Complete(context.Background(), history())
	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err, core.ErrEmptyReply)
}

func TestModel_CompleteTransportErrorIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	m := NewModel(func(o *Options) { o.BaseURL = url; o.APIKey = "k" })
	res := m.Complete(context.Background(), history())
	assert.False(t, res.OK())
}

func TestModel_Defaults(t *testing.T) {
	m := NewModel(func(o *Options) { o.APIKey = "k" })

	info := m.Info()
	assert.Equal(t, DefaultModel, info.Name)
	assert.Equal(t, "openai", info.Provider)
	assert.Equal(t, DefaultBaseURL, m.opts.BaseURL)
	assert.EqualValues(t, 150, m.opts.MaxTokens)
	assert.InDelta(t, 0.7, m.opts.Temperature, 1e-9)
}
