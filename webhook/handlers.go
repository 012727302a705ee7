package webhook

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hupe1980/callmesh/conversation"
	"github.com/hupe1980/callmesh/twiml"
)

func (s *Server) handleRoot(c echo.Context) error {
	return c.String(http.StatusOK, "callmesh voice agent is running")
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleVoice(c echo.Context) error {
	callID, err := requireCallSid(c)
	if err != nil {
		return err
	}
	reply := s.handler.Initiate(c.Request().Context(), callID)
	return s.writeTwiML(c, s.render(reply, true))
}

func (s *Server) handleRespond(c echo.Context) error {
	callID, err := requireCallSid(c)
	if err != nil {
		return err
	}
	reply := s.handler.Turn(c.Request().Context(), callID, c.FormValue(FieldSpeechResult))
	return s.writeTwiML(c, s.render(reply, false))
}

func (s *Server) handleStatus(c echo.Context) error {
	callID, err := requireCallSid(c)
	if err != nil {
		return err
	}
	s.handler.Status(c.Request().Context(), callID, c.FormValue(FieldCallStatus))
	return c.NoContent(http.StatusOK)
}

func requireCallSid(c echo.Context) (string, error) {
	callID := strings.TrimSpace(c.FormValue(FieldCallSid))
	if callID == "" {
		return "", echo.NewHTTPError(http.StatusBadRequest, "missing "+FieldCallSid)
	}
	return callID, nil
}

// render maps a protocol reply to TwiML. Model replies and the greeting use
// the configured voice and a tuned capture; fallback prompts use plain ones.
func (s *Server) render(reply conversation.Reply, initial bool) *twiml.Response {
	r := twiml.NewResponse()
	if reply.Fallback {
		r.Say(reply.Say)
	} else {
		r.Say(reply.Say, twiml.WithVoice(s.opts.Voice))
	}

	if reply.Hangup {
		return r.Hangup()
	}
	if reply.Listen {
		g := s.plainGather()
		if !reply.Fallback {
			g.SpeechTimeout = "auto"
			g.Language = s.opts.Language
			g.Enhanced = initial
		}
		r.Gather(g)
	}
	if reply.Reprompt != "" {
		r.Say(reply.Reprompt).Gather(s.plainGather())
	}
	return r
}

func (s *Server) plainGather() twiml.GatherElement {
	return twiml.GatherElement{Input: "speech", Action: RespondPath, Method: http.MethodPost}
}

func (s *Server) writeTwiML(c echo.Context, r *twiml.Response) error {
	body, err := r.Bytes()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, twiml.ContentType, body)
}
