package robot

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_SaveLoad(t *testing.T) {
	for _, name := range []string{"alvik.json", "alvik.yaml", "alvik.yml"} {
		path := filepath.Join(t.TempDir(), name)

		cfg := DefaultConfig()
		cfg.Drive.Port = "/dev/ttyACM0"
		cfg.Drive.TrimLeft = 0.05
		cfg.Drive.Reverse = true
		cfg.Link.Port = "/dev/ttyUSB0"
		cfg.InvertPitch = false

		if err := SaveFile(path, &cfg); err != nil {
			t.Fatalf("%s: save: %v", name, err)
		}

		var got Config
		if err := LoadFile(path, &got); err != nil {
			t.Fatalf("%s: load: %v", name, err)
		}
		if got != cfg {
			t.Errorf("%s: loaded %+v, want %+v", name, got, cfg)
		}
	}
}

func TestConfig_LoadKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alvik.json")
	if err := os.WriteFile(path, []byte(`{"drive":{"port":"/dev/ttyACM0"}}`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := LoadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Drive.Port != "/dev/ttyACM0" {
		t.Errorf("port = %q", cfg.Drive.Port)
	}
	if cfg.Drive.LeftID != 1 || cfg.Drive.RightID != 2 {
		t.Errorf("wheel IDs = %d/%d, want defaults 1/2", cfg.Drive.LeftID, cfg.Drive.RightID)
	}
	if cfg.Link.BaudRate != 115200 {
		t.Errorf("baud = %d, want default", cfg.Link.BaudRate)
	}
	if !cfg.InvertPitch {
		t.Error("invert_pitch default lost")
	}
}

func TestConfig_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	var cfg Config

	if err := LoadFile(filepath.Join(dir, "missing.json"), &cfg); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadFile(bad, &cfg); err == nil {
		t.Error("expected error for malformed file")
	}
}

func TestConfig_IsConfigured(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.IsConfigured() {
		t.Error("default config should not be configured")
	}
	cfg.Drive.Port = "/dev/ttyACM0"
	if cfg.IsConfigured() {
		t.Error("config without link port should not be configured")
	}
	cfg.Link.Port = "/dev/ttyUSB0"
	if !cfg.IsConfigured() {
		t.Error("config with both ports should be configured")
	}
}
