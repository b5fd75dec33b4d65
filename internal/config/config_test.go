package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Target != TargetVideo {
		t.Errorf("default target = %q", cfg.Target)
	}
	if cfg.Capacity != 226 {
		t.Errorf("default capacity = %d", cfg.Capacity)
	}
	if cfg.Device != "tek4050r12" {
		t.Errorf("default device = %q", cfg.Device)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := Default()
	cfg.ScriptPath = "anim.txt"
	cfg.OutputPath = "out"
	cfg.Target = TargetArchive
	cfg.Capacity = 100
	cfg.ShiftSeed = 42
	cfg.MonitorPath = "/dev/ttyUSB0"

	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if *loaded != *cfg {
		t.Errorf("round trip changed config:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadKeepsDefaultsForUnsetKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	partial := "script: anim.txt\noutput: out.mp4\n"
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ScriptPath != "anim.txt" || cfg.OutputPath != "out.mp4" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Capacity != 226 || cfg.Target != TargetVideo {
		t.Errorf("defaults lost under partial file: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := Default()
		cfg.ScriptPath = "anim.txt"
		cfg.OutputPath = "out.mp4"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"no script", func(c *Config) { c.ScriptPath = "" }, true},
		{"no output", func(c *Config) { c.OutputPath = "" }, true},
		{"bad target", func(c *Config) { c.Target = "paper-tape" }, true},
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"archive target", func(c *Config) { c.Target = TargetArchive }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}
