// Package web provides the tracking dashboard: session status, debug
// frame streaming, and calibration control. It replaces the static
// page server of the browser demo with a fiber app in front of the
// tracking loop.
package web

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/jishaemilin2005-cyber/Gaze-mapping/internal/log"
	"github.com/jishaemilin2005-cyber/Gaze-mapping/pkg/camera"
	"github.com/jishaemilin2005-cyber/Gaze-mapping/pkg/gaze"
	"github.com/jishaemilin2005-cyber/Gaze-mapping/pkg/hub"
)

// TrackerState is the dashboard's view of the tracking session.
type TrackerState struct {
	CameraConnected bool        `json:"camera_connected"`
	Calibrated      bool        `json:"calibrated"`
	SessionID       string      `json:"session_id,omitempty"` // last calibration session
	Pupil           *gaze.Point `json:"pupil,omitempty"`
	Gaze            *gaze.Point `json:"gaze,omitempty"`
	Confidence      float64     `json:"confidence"`
	DetectionRate   float64     `json:"detection_rate"`
	ActiveTarget    string      `json:"active_target,omitempty"` // calibration target on screen
	TargetPoint     *gaze.Point `json:"target_point,omitempty"`
}

// LogEntry represents a log line for the dashboard
type LogEntry struct {
	Time    string `json:"time"`
	Type    string `json:"type"` // info, calibration, tracking, error
	Message string `json:"message"`
}

// Server is the dashboard server. It also implements
// gaze.TargetDisplay so the calibrator can drive the on-screen target
// through the status stream.
type Server struct {
	app  *fiber.App
	port string

	state   TrackerState
	stateMu sync.RWMutex

	// Log buffer (last 500 entries)
	logs   []LogEntry
	logsMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	logHub    *hub.Hub
	frameHub  *hub.Hub

	// Camera runtime configuration, optional.
	Cameras *camera.Manager

	// OnCalibrate requests a calibration run from the tracking loop.
	// It must not block; the loop picks the request up between frames.
	OnCalibrate func() error

	// OnReset requests a tracker reset (drop ROI lock and smoothing).
	OnReset func()

	// Targets lists the calibration targets for the dashboard page.
	Targets []gaze.Target
}

// NewServer creates a dashboard server on the given port.
func NewServer(port string) *Server {
	s := &Server{
		port:      port,
		logs:      make([]LogEntry, 0, 500),
		statusHub: hub.New("status"),
		logHub:    hub.New("logs"),
		frameHub:  hub.New("frames"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Gaze Tracker",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// The calibration and demo pages must never come from a stale
	// cache; target positions and scripts change with the config.
	app.Use(func(c *fiber.Ctx) error {
		c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
		c.Set("Expires", "0")
		return c.Next()
	})

	// Static pages (calibration UI, demo)
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/targets", s.handleTargets)
	api.Get("/logs", s.handleGetLogs)
	api.Post("/calibration/start", s.handleStartCalibration)
	api.Post("/reset", s.handleReset)
	api.Get("/config", s.handleGetConfig)
	api.Patch("/config", s.handleUpdateConfig)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/logs", websocket.New(s.handleLogsWS))
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// Start starts the server and blocks.
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", "0.0.0.0:"+s.port)

	go s.statusHub.Run()
	go s.logHub.Run()
	go s.frameHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server stopped", "error", err)
		}
	}()
}

// UpdateTracking publishes a per-frame tracking result.
func (s *Server) UpdateTracking(res gaze.Result, detectionRate float64) {
	s.UpdateState(func(st *TrackerState) {
		st.Pupil = res.Pupil
		st.Gaze = res.Gaze
		st.Confidence = res.Confidence
		st.DetectionRate = detectionRate
	})
}

// SetCalibration records a completed calibration session.
func (s *Server) SetCalibration(result *gaze.CalibrationResult) {
	s.UpdateState(func(st *TrackerState) {
		st.Calibrated = true
		st.SessionID = result.SessionID
		st.ActiveTarget = ""
		st.TargetPoint = nil
	})
	s.AddLog("calibration", "calibration complete, session "+result.SessionID)
}

// UpdateState applies an arbitrary state mutation and broadcasts the
// new state to status subscribers.
func (s *Server) UpdateState(update func(*TrackerState)) {
	s.stateMu.Lock()
	update(&s.state)
	state := s.state
	s.stateMu.Unlock()

	s.statusHub.BroadcastJSON(state)
}

// ShowTarget implements gaze.TargetDisplay: the active target travels
// to the dashboard page through the status stream.
func (s *Server) ShowTarget(name string, screen gaze.Point) {
	s.UpdateState(func(st *TrackerState) {
		st.ActiveTarget = name
		pt := screen
		st.TargetPoint = &pt
	})
	s.AddLog("calibration", "look at target: "+name)
}

// ClearTarget implements gaze.TargetDisplay.
func (s *Server) ClearTarget() {
	s.UpdateState(func(st *TrackerState) {
		st.ActiveTarget = ""
		st.TargetPoint = nil
	})
}

// AddLog adds a log entry and broadcasts it to subscribers.
func (s *Server) AddLog(logType, message string) {
	entry := LogEntry{
		Time:    time.Now().Format("15:04:05"),
		Type:    logType,
		Message: message,
	}

	s.logsMu.Lock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > 500 {
		s.logs = s.logs[1:]
	}
	s.logsMu.Unlock()

	s.logHub.BroadcastJSON(entry)
}

// SendFrame broadcasts a JPEG debug frame (annotated capture or
// threshold image) to frame subscribers.
func (s *Server) SendFrame(jpegData []byte) {
	s.frameHub.BroadcastBinary(jpegData)
}

// FrameSubscribers returns how many clients watch the debug stream,
// so the tracking loop can skip encoding when nobody is connected.
func (s *Server) FrameSubscribers() int {
	return s.frameHub.ClientCount()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
