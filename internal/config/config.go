package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Target selects where rendered frames go.
const (
	TargetVideo   = "video"
	TargetArchive = "archive"
)

// Config holds everything a render run needs. It can be populated from
// flags, from a YAML file, or both (flags win).
type Config struct {
	ScriptPath string `yaml:"script"`
	OutputPath string `yaml:"output"`
	Target     string `yaml:"target"`

	// Archive target.
	Device    string `yaml:"device"`
	Catalog   string `yaml:"catalog,omitempty"`
	Capacity  int    `yaml:"capacity"`
	ShiftSeed int64  `yaml:"shift_seed,omitempty"`
	NoShift   bool   `yaml:"no_shift,omitempty"`

	// Video target.
	FPS          int     `yaml:"fps,omitempty"`
	LineWidth    float64 `yaml:"line_width,omitempty"`
	VideoEncoder string  `yaml:"video_encoder,omitempty"`
	Quality      int     `yaml:"quality,omitempty"`
	EndCardURL   string  `yaml:"end_card_url,omitempty"`

	// Shared.
	Workers     int    `yaml:"workers,omitempty"`
	MonitorPath string `yaml:"monitor,omitempty"`
	ShowStats   bool   `yaml:"show_stats,omitempty"`

	BuildVersion string `yaml:"-"`
}

// Default returns a config with the values a run falls back to when
// neither flags nor a config file say otherwise.
func Default() *Config {
	return &Config{
		Target:    TargetVideo,
		Device:    "tek4050r12",
		Capacity:  226,
		LineWidth: 1.5,
	}
}

// Load reads a YAML config file over the top of defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config as YAML, for seeding an editable config file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Validate checks the fields every run needs before any work starts.
func (c *Config) Validate() error {
	if c.ScriptPath == "" {
		return fmt.Errorf("no animation script given")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("no output path given")
	}
	switch c.Target {
	case TargetVideo, TargetArchive:
	default:
		return fmt.Errorf("unknown target %q (want %q or %q)", c.Target, TargetVideo, TargetArchive)
	}
	if c.Capacity < 1 {
		return fmt.Errorf("archive capacity must be positive, got %d", c.Capacity)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}
