package gaze

import (
	"testing"
	"time"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if errs := cfg.Validate(); len(errs) > 0 {
		t.Errorf("Expected default config to validate, got %v", errs)
	}
}

func TestDefaultConfig_PipelineValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ThreshBlock != 15 {
		t.Errorf("Expected ThreshBlock=15, got %v", cfg.ThreshBlock)
	}
	if cfg.ThreshC != 7 {
		t.Errorf("Expected ThreshC=7, got %v", cfg.ThreshC)
	}
	if cfg.MinPupilArea != 80 {
		t.Errorf("Expected MinPupilArea=80, got %v", cfg.MinPupilArea)
	}
	if cfg.SmoothWindow != 5 {
		t.Errorf("Expected SmoothWindow=5, got %v", cfg.SmoothWindow)
	}
	if cfg.ROIHalfSize != 90 {
		t.Errorf("Expected ROIHalfSize=90, got %v", cfg.ROIHalfSize)
	}
	if cfg.LossTimeout != time.Second {
		t.Errorf("Expected LossTimeout=1s, got %v", cfg.LossTimeout)
	}
	if cfg.MinSamples != 10 {
		t.Errorf("Expected MinSamples=10, got %v", cfg.MinSamples)
	}
}

func TestProfileConfigs_Valid(t *testing.T) {
	configs := []struct {
		name string
		cfg  Config
	}{
		{"LowLight", LowLightConfig()},
		{"Fast", FastConfig()},
	}

	for _, tc := range configs {
		if errs := tc.cfg.Validate(); len(errs) > 0 {
			t.Errorf("%s: expected valid config, got %v", tc.name, errs)
		}
	}
}

func TestFastConfig_SkipsCLAHE(t *testing.T) {
	cfg := FastConfig()
	if cfg.UseCLAHE {
		t.Error("Expected FastConfig to disable CLAHE")
	}
	if cfg.SmoothWindow >= DefaultConfig().SmoothWindow {
		t.Error("Expected FastConfig to shorten the smoothing window")
	}
}

func TestConfig_ValidateCatchesBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"thresh block too small", func(c *Config) { c.ThreshBlock = 1 }},
		{"negative area", func(c *Config) { c.MinPupilArea = -1 }},
		{"even blur kernel", func(c *Config) { c.BlurKernel = 4 }},
		{"zero smooth window", func(c *Config) { c.SmoothWindow = 0 }},
		{"negative roi", func(c *Config) { c.ROIHalfSize = -1 }},
		{"zero loss timeout", func(c *Config) { c.LossTimeout = 0 }},
		{"zero target duration", func(c *Config) { c.TargetDuration = 0 }},
		{"zero min samples", func(c *Config) { c.MinSamples = 0 }},
		{"confidence above 1", func(c *Config) { c.MinConfidence = 1.5 }},
		{"zero clahe clip", func(c *Config) { c.CLAHEClip = 0 }},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(&cfg)
		if errs := cfg.Validate(); len(errs) == 0 {
			t.Errorf("%s: expected a validation error", tc.name)
		}
	}
}

func TestConfig_BlockSizeForcedOddAndMin3(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{15, 15},
		{16, 17},
		{2, 3},
		{0, 3},
		{3, 3},
	}

	for _, tc := range cases {
		cfg := DefaultConfig()
		cfg.ThreshBlock = tc.in
		if got := cfg.blockSize(); got != tc.want {
			t.Errorf("blockSize(%d): expected %d, got %d", tc.in, tc.want, got)
		}
	}
}

func TestDefaultTargets_FivePointSequence(t *testing.T) {
	targets := DefaultTargets(1920, 1080, 100)

	if len(targets) != 5 {
		t.Fatalf("Expected 5 targets, got %d", len(targets))
	}

	want := map[string]Point{
		"center": {X: 960, Y: 540},
		"left":   {X: 100, Y: 540},
		"right":  {X: 1820, Y: 540},
		"top":    {X: 960, Y: 100},
		"bottom": {X: 960, Y: 980},
	}

	order := []string{"center", "left", "right", "top", "bottom"}
	for i, name := range order {
		if targets[i].Name != name {
			t.Errorf("Target %d: expected %q, got %q", i, name, targets[i].Name)
		}
		if targets[i].Screen != want[name] {
			t.Errorf("Target %q: expected %v, got %v", name, want[name], targets[i].Screen)
		}
	}
}
