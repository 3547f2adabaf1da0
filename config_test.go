package pathtrace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Width != 1280 || cfg.Height != 720 {
		t.Errorf("size = %dx%d, want 1280x720", cfg.Width, cfg.Height)
	}
	if cfg.SceneSeed != 1 {
		t.Errorf("SceneSeed = %d, want 1", cfg.SceneSeed)
	}
	if err := cfg.Normalize(); err != nil {
		t.Errorf("Normalize() = %v", err)
	}
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"zero values get defaults", Config{}, false},
		{"explicit values kept", Config{Width: 640, Height: 480, LogLevel: "debug"}, false},
		{"negative size", Config{Width: -1, Height: 480}, true},
		{"bad log level", Config{LogLevel: "verbose"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Normalize()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Normalize() = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (tt.cfg.Width == 0 || tt.cfg.Height == 0 || tt.cfg.SceneSeed == 0) {
				t.Errorf("defaults not filled: %+v", tt.cfg)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pathtrace.toml")
	data := []byte("width = 640\nheight = 360\nscene_seed = 99\nframes = 10\nlog_level = \"warn\"\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 640 || cfg.Height != 360 {
		t.Errorf("size = %dx%d, want 640x360", cfg.Width, cfg.Height)
	}
	if cfg.SceneSeed != 99 || cfg.Frames != 10 || cfg.LogLevel != "warn" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file: want error")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("width = \"wide\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed file: want error")
	}
}
