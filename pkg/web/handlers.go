package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/jishaemilin2005-cyber/Gaze-mapping/pkg/hub"
)

// handleStatus returns the current tracking state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return c.JSON(s.state)
}

// handleTargets returns the calibration target sequence.
func (s *Server) handleTargets(c *fiber.Ctx) error {
	return c.JSON(s.Targets)
}

// handleGetLogs returns the buffered log entries.
func (s *Server) handleGetLogs(c *fiber.Ctx) error {
	s.logsMu.RLock()
	defer s.logsMu.RUnlock()
	return c.JSON(s.logs)
}

// handleStartCalibration requests a calibration run from the tracking
// loop. The run itself is asynchronous; progress arrives over the
// status stream.
func (s *Server) handleStartCalibration(c *fiber.Ctx) error {
	if s.OnCalibrate == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "calibration not available",
		})
	}
	if err := s.OnCalibrate(); err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "calibration started",
	})
}

// handleReset drops the tracker's ROI lock and smoothing history.
func (s *Server) handleReset(c *fiber.Ctx) error {
	if s.OnReset == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "reset not available",
		})
	}
	s.OnReset()
	s.AddLog("tracking", "tracker reset")
	return c.JSON(fiber.Map{"status": "reset"})
}

// handleGetConfig returns the current camera configuration.
func (s *Server) handleGetConfig(c *fiber.Ctx) error {
	if s.Cameras == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "camera config not available",
		})
	}
	return c.JSON(s.Cameras.GetConfig())
}

// handleUpdateConfig applies partial camera configuration updates.
func (s *Server) handleUpdateConfig(c *fiber.Ctx) error {
	if s.Cameras == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "camera config not available",
		})
	}

	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid body: " + err.Error(),
		})
	}

	if err := s.Cameras.UpdateConfig(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(s.Cameras.GetConfig())
}

// --- websocket handlers ---

func (s *Server) handleStatusWS(conn *websocket.Conn) {
	hub.NewClient(s.statusHub, conn).Run()
}

func (s *Server) handleLogsWS(conn *websocket.Conn) {
	hub.NewClient(s.logHub, conn).Run()
}

func (s *Server) handleFramesWS(conn *websocket.Conn) {
	hub.NewClient(s.frameHub, conn).Run()
}
