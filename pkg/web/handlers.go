package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/vishalgiri25/fridge-critic/pkg/hub"
)

// handleState returns the session's lifecycle state.
func (s *Server) handleState(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(fiber.Map{"state": s.state})
}

// handleTranscript returns the conversation so far.
func (s *Server) handleTranscript(c *fiber.Ctx) error {
	return c.JSON(s.sess.Transcript().Entries())
}

// handleMetrics returns the session counters.
func (s *Server) handleMetrics(c *fiber.Ctx) error {
	return c.JSON(s.sess.Metrics().Snapshot())
}

// handleEventsWS streams state, transcript and metrics events live.
func (s *Server) handleEventsWS(c *websocket.Conn) {
	client := hub.NewClient(s.eventHub, c)
	client.Run()
}
