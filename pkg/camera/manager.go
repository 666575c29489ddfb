package camera

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Manager holds the current camera configuration and handles runtime
// updates from the dashboard. Capture properties cannot be changed on
// an open device, so the OnConfigChange callback is expected to
// reopen the capture with the new config.
type Manager struct {
	config Config
	mu     sync.RWMutex

	// Callback when config changes (for reopening the capture)
	OnConfigChange func(cfg Config) error
}

// NewManager creates a camera manager with the given starting config.
func NewManager(cfg Config) *Manager {
	return &Manager{config: cfg}
}

// GetConfig returns the current camera configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// SetConfig validates and stores a new configuration, then notifies
// the change callback.
func (m *Manager) SetConfig(cfg Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}

	m.mu.Lock()
	m.config = cfg
	callback := m.OnConfigChange
	m.mu.Unlock()

	if callback != nil {
		if err := callback(cfg); err != nil {
			return fmt.Errorf("failed to apply config: %w", err)
		}
	}

	return nil
}

// UpdateConfig updates specific fields of the configuration.
// Accepts a map of field names to values; "preset" switches to a
// named preset first, then the remaining overrides apply on top.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	m.mu.Lock()
	cfg := m.config
	m.mu.Unlock()

	if presetName, ok := params["preset"].(string); ok {
		preset := GetPreset(presetName)
		if preset == nil {
			return fmt.Errorf("unknown preset: %s", presetName)
		}
		cfg = *preset
		delete(params, "preset")
	}

	for key, value := range params {
		switch key {
		case "device":
			if v, ok := value.(string); ok {
				cfg.Device = v
			}
		case "width":
			if v, ok := toInt(value); ok {
				cfg.Width = v
			}
		case "height":
			if v, ok := toInt(value); ok {
				cfg.Height = v
			}
		case "framerate":
			if v, ok := toInt(value); ok {
				cfg.Framerate = v
			}
		case "horizontal_flip":
			if v, ok := value.(bool); ok {
				cfg.HorizontalFlip = v
			}
		case "max_height":
			if v, ok := toInt(value); ok {
				cfg.MaxHeight = v
			}
		case "quality":
			if v, ok := toInt(value); ok {
				cfg.Quality = v
			}
		}
	}

	return m.SetConfig(cfg)
}

// toInt converts JSON-decoded numbers to int.
func toInt(v interface{}) (int, bool) {
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		return int(val), true
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}
