// Package webhook exposes the conversation protocol as Twilio voice webhooks.
//
// Routes:
//
//	POST /voice      call initiation, returns greeting TwiML
//	POST /respond    speech capture callback, returns reply TwiML
//	POST /status     call status callback, returns an empty 200
//	GET  /dashboard  HTML listing of active sessions
//	GET  /           liveness text
//	GET  /healthz    liveness probe
package webhook

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hupe1980/callmesh/conversation"
	"github.com/hupe1980/callmesh/core"
	"github.com/hupe1980/callmesh/logging"
)

// Twilio form fields read by the handlers.
const (
	FieldCallSid      = "CallSid"
	FieldSpeechResult = "SpeechResult"
	FieldCallStatus   = "CallStatus"
)

// RespondPath is the action URL that speech captures post to.
const RespondPath = "/respond"

// Options configures the webhook server.
type Options struct {
	Voice    string
	Language string
	Logger   logging.Logger
}

// Server binds a conversation.Handler to HTTP routes.
type Server struct {
	echo     *echo.Echo
	handler  *conversation.Handler
	sessions core.SessionStore
	opts     Options
}

// New builds the echo instance with middleware and routes registered.
func New(handler *conversation.Handler, sessions core.SessionStore, optFns ...func(o *Options)) *Server {
	opts := Options{
		Voice:    "Polly.Joanna-Neural",
		Language: "en-US",
		Logger:   logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, handler: handler, sessions: sessions, opts: opts}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return "req_" + uuid.NewString() },
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				args = append(args, "error", v.Error.Error())
			}
			s.opts.Logger.Info("request", args...)
			return nil
		},
	}))

	e.GET("/", s.handleRoot)
	e.GET("/healthz", s.handleHealth)
	e.POST("/voice", s.handleVoice)
	e.POST(RespondPath, s.handleRespond)
	e.POST("/status", s.handleStatus)
	e.GET("/dashboard", s.handleDashboard)

	return s
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.echo }

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
