// Package config provides environment configuration helpers for the
// gaze tracker commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the tracking session.
const (
	DefaultPort         = "8000"
	DefaultCameraDevice = "0"
	DefaultScreenWidth  = 1920
	DefaultScreenHeight = 1080
)

// Port returns the dashboard port from the PORT env var.
func Port() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return DefaultPort
}

// CameraDevice returns the capture device from CAMERA_DEVICE.
// Accepts a device index ("0") or a path ("/dev/video2").
func CameraDevice() string {
	if dev := os.Getenv("CAMERA_DEVICE"); dev != "" {
		return dev
	}
	return DefaultCameraDevice
}

// LogLevel returns the log level from LOG_LEVEL, defaulting to info.
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}

// ScreenSize returns the display resolution from SCREEN_WIDTH and
// SCREEN_HEIGHT. Calibration targets are placed relative to it.
func ScreenSize() (width, height int) {
	return envInt("SCREEN_WIDTH", DefaultScreenWidth),
		envInt("SCREEN_HEIGHT", DefaultScreenHeight)
}

func envInt(key string, def int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return def
}
