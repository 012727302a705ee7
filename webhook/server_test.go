package webhook

import (
	"encoding/xml"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/callmesh/conversation"
	"github.com/hupe1980/callmesh/core"
	"github.com/hupe1980/callmesh/model"
	"github.com/hupe1980/callmesh/session"
)

type verb struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
}

func (v verb) attr(name string) string {
	for _, a := range v.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

type document struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []verb   `xml:",any"`
}

type fixture struct {
	srv   *Server
	store *session.InMemoryStore
	stub  *model.MockModel
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := session.NewInMemoryStore()
	stub := model.NewMockModel("stub")
	h := conversation.NewHandler(store, stub)
	return fixture{srv: New(h, store), store: store, stub: stub}
}

func (f fixture) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func (f fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) document {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/xml"))
	var doc document
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}

func names(doc document) []string {
	out := make([]string, 0, len(doc.Verbs))
	for _, v := range doc.Verbs {
		out = append(out, v.XMLName.Local)
	}
	return out
}

func TestVoice_GreetsAndArmsCapture(t *testing.T) {
	f := newFixture(t)

	doc := decode(t, f.post(t, "/voice", url.Values{"CallSid": {"CA1"}}))

	require.Equal(t, []string{"Say", "Gather", "Say", "Gather"}, names(doc))
	assert.Equal(t, conversation.DefaultGreeting, doc.Verbs[0].Text)
	assert.Equal(t, "Polly.Joanna-Neural", doc.Verbs[0].attr("voice"))

	g := doc.Verbs[1]
	assert.Equal(t, "speech", g.attr("input"))
	assert.Equal(t, RespondPath, g.attr("action"))
	assert.Equal(t, "POST", g.attr("method"))
	assert.Equal(t, "auto", g.attr("speechTimeout"))
	assert.Equal(t, "en-US", g.attr("language"))
	assert.Equal(t, "true", g.attr("enhanced"))

	assert.Equal(t, conversation.DefaultReprompt, doc.Verbs[2].Text)
	assert.Empty(t, doc.Verbs[3].attr("enhanced"))

	sess, err := f.store.Get("CA1")
	require.NoError(t, err)
	assert.Equal(t, 2, sess.Len())
}

func TestRespond_ReplyAndListen(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/voice", url.Values{"CallSid": {"CA1"}})
	f.stub.Enqueue(model.Success("Assistant: We open at nine."))

	doc := decode(t, f.post(t, RespondPath, url.Values{"CallSid": {"CA1"}, "SpeechResult": {"When do you open?"}}))

	require.Equal(t, []string{"Say", "Gather"}, names(doc))
	assert.Equal(t, "We open at nine.", doc.Verbs[0].Text)
	assert.Equal(t, "Polly.Joanna-Neural", doc.Verbs[0].attr("voice"))
	assert.Equal(t, "auto", doc.Verbs[1].attr("speechTimeout"))
	assert.Empty(t, doc.Verbs[1].attr("enhanced"))

	sess, _ := f.store.Get("CA1")
	assert.Equal(t, 4, sess.Len())
}

func TestRespond_EmptySpeechReprompts(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/voice", url.Values{"CallSid": {"CA1"}})

	doc := decode(t, f.post(t, RespondPath, url.Values{"CallSid": {"CA1"}}))

	require.Equal(t, []string{"Say", "Gather"}, names(doc))
	assert.Equal(t, conversation.DefaultNoSpeech, doc.Verbs[0].Text)
	assert.Empty(t, doc.Verbs[0].attr("voice"))
	assert.Empty(t, doc.Verbs[1].attr("speechTimeout"))

	sess, _ := f.store.Get("CA1")
	assert.Equal(t, 2, sess.Len())
}

func TestRespond_CompletionFailureApologizes(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/voice", url.Values{"CallSid": {"CA1"}})
	f.stub.Enqueue(model.Failure(errors.New("timeout")))

	doc := decode(t, f.post(t, RespondPath, url.Values{"CallSid": {"CA1"}, "SpeechResult": {"hello"}}))

	require.Equal(t, []string{"Say", "Gather"}, names(doc))
	assert.Equal(t, conversation.DefaultConnectivity, doc.Verbs[0].Text)

	sess, _ := f.store.Get("CA1")
	assert.Equal(t, 3, sess.Len())
}

func TestRespond_GoodbyeHangsUp(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/voice", url.Values{"CallSid": {"CA1"}})
	f.stub.Enqueue(model.Success("Thanks for calling, goodbye!"))

	doc := decode(t, f.post(t, RespondPath, url.Values{"CallSid": {"CA1"}, "SpeechResult": {"that's all"}}))

	assert.Equal(t, []string{"Say", "Hangup"}, names(doc))
	_, err := f.store.Get("CA1")
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestStatus_FinalDeletesSession(t *testing.T) {
	f := newFixture(t)
	f.post(t, "/voice", url.Values{"CallSid": {"CA1"}})

	rec := f.post(t, "/status", url.Values{"CallSid": {"CA1"}, "CallStatus": {"in-progress"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, 1, f.store.Len())

	rec = f.post(t, "/status", url.Values{"CallSid": {"CA1"}, "CallStatus": {"completed"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.store.Len())
}

func TestMissingCallSidIsBadRequest(t *testing.T) {
	f := newFixture(t)
	for _, path := range []string{"/voice", RespondPath, "/status"} {
		rec := f.post(t, path, url.Values{"SpeechResult": {"hi"}})
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	assert.Equal(t, 0, f.store.Len())
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No active sessions.")

	f.post(t, "/voice", url.Values{"CallSid": {"CA1"}})
	f.stub.Enqueue(model.Success("Sure <b>thing</b>"))
	f.post(t, RespondPath, url.Values{"CallSid": {"CA1"}, "SpeechResult": {"hi"}})

	rec = f.get(t, "/dashboard")
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, body, "Call SID: CA1")
	assert.Contains(t, body, "<strong>SYSTEM:</strong>")
	assert.Contains(t, body, "<strong>USER:</strong> hi")
	assert.Contains(t, body, "Sure &lt;b&gt;thing&lt;/b&gt;")
	assert.NotContains(t, body, "No active sessions.")
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.get(t, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")

	rec = f.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("X-Request-ID"), "req_"))
}
