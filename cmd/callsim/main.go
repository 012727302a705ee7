// Command callsim drives a running callmesh server the way Twilio would:
// it initiates a call, speaks one utterance and prints the dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/callmesh/logging"
)

// Simulator posts Twilio shaped webhook forms to a callmesh server.
type Simulator struct {
	BaseURL string
	Client  *http.Client
	Logger  logging.Logger
}

// Step is the outcome of one webhook exchange.
type Step struct {
	Path   string
	Status int
	Body   string
}

// NewCallID returns a Twilio style call identifier.
func NewCallID() string {
	return "CA" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *Simulator) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

func (s *Simulator) do(req *http.Request) (Step, error) {
	resp, err := s.client().Do(req)
	if err != nil {
		return Step{}, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Step{}, fmt.Errorf("read %s: %w", req.URL.Path, err)
	}
	step := Step{Path: req.URL.Path, Status: resp.StatusCode, Body: string(body)}
	if s.Logger != nil {
		s.Logger.Info("webhook exchange", "path", step.Path, "status", step.Status)
	}
	return step, nil
}

// Post submits form to path.
func (s *Simulator) Post(ctx context.Context, path string, form url.Values) (Step, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(s.BaseURL, "/")+path, strings.NewReader(form.Encode()))
	if err != nil {
		return Step{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

// Get fetches path.
func (s *Simulator) Get(ctx context.Context, path string) (Step, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.BaseURL, "/")+path, nil)
	if err != nil {
		return Step{}, err
	}
	return s.do(req)
}

// Call runs initiate, one speech turn and a dashboard fetch in order,
// stopping at the first transport error.
func (s *Simulator) Call(ctx context.Context, callID, utterance string) ([]Step, error) {
	var steps []Step
	step, err := s.Post(ctx, "/voice", url.Values{"CallSid": {callID}})
	if err != nil {
		return steps, err
	}
	steps = append(steps, step)

	step, err = s.Post(ctx, "/respond", url.Values{"CallSid": {callID}, "SpeechResult": {utterance}})
	if err != nil {
		return steps, err
	}
	steps = append(steps, step)

	step, err = s.Get(ctx, "/dashboard")
	if err != nil {
		return steps, err
	}
	return append(steps, step), nil
}

func runMain(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("callsim", flag.ContinueOnError)
	fs.SetOutput(stderr)
	baseURL := fs.String("url", "http://localhost:3000", "callmesh base URL")
	callID := fs.String("call", "", "call id (random when empty)")
	utterance := fs.String("say", "Hello, I have a question about my bill.", "caller utterance")
	timeout := fs.Duration("timeout", 30*time.Second, "overall timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *callID == "" {
		*callID = NewCallID()
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	sim := &Simulator{
		BaseURL: *baseURL,
		Logger:  logging.NewLogger(&logging.LoggerConfig{Level: logging.LogLevelInfo, Output: stderr, Component: "callsim"}).WithCall(*callID),
	}
	steps, err := sim.Call(ctx, *callID, *utterance)
	for _, st := range steps {
		fmt.Fprintf(stdout, "--- %s (%d)\n%s\n", st.Path, st.Status, st.Body)
	}
	if err != nil {
		fmt.Fprintf(stderr, "callsim: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(runMain(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
