package camera

// Preset names for common configurations
const (
	PresetDefault    = "default"
	PresetVirtualCam = "virtualcam"
	PresetLowRes     = "lowres"
)

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	return map[string]Config{
		PresetDefault:    DefaultConfig(),
		PresetVirtualCam: VirtualCamConfig(),
		PresetLowRes:     LowResConfig(),
	}
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	presets := Presets()
	if cfg, ok := presets[name]; ok {
		return &cfg
	}
	return nil
}
