package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.yaml")
	data := []byte(`
server:
  url: wss://example.org/game
  codec: msgpack
camera:
  dead_zone: 100
  view_radius: 5
sync:
  stale_after: 1500ms
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.URL != "wss://example.org/game" || cfg.Server.Codec != "msgpack" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Sync.StaleAfter != 1500*time.Millisecond {
		t.Errorf("stale_after = %v", cfg.Sync.StaleAfter)
	}
	// Не указанные в файле значения остаются по умолчанию.
	if cfg.Sync.FrameRate != 60 || cfg.Server.AckTimeout != 5*time.Second {
		t.Errorf("defaults lost: %+v %+v", cfg.Sync, cfg.Server)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	eng := cfg.Engine()
	if eng.Camera.DeadZone.X != 100 || eng.Camera.DeadZone.Y != 100 {
		t.Errorf("dead zone = %+v", eng.Camera.DeadZone)
	}
	if want := float64(11) * cfg.Camera.CellSize; eng.Camera.Viewport.X != want {
		t.Errorf("viewport = %v, want %v", eng.Camera.Viewport.X, want)
	}
	if eng.StaleAfter != 1500*time.Millisecond {
		t.Errorf("engine stale after = %v", eng.StaleAfter)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("sync: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}

	cfg, err := Load("")
	if err != nil || cfg.Server.URL != Default().Server.URL {
		t.Errorf("Load(\"\") = %+v, %v", cfg, err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"LOG_LEVEL":     "debug",
		"BM_SERVER_URL": "ws://10.0.0.1:3000/ws",
		"BM_TOKEN":      "secret",
		"BM_DEBUG_ADDR": ":6060",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Server.URL != env["BM_SERVER_URL"] || cfg.Auth.Token != "secret" || cfg.Debug.Addr != ":6060" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"http scheme", func(c *Config) { c.Server.URL = "http://localhost" }},
		{"unknown codec", func(c *Config) { c.Server.Codec = "xml" }},
		{"zero ack timeout", func(c *Config) { c.Server.AckTimeout = 0 }},
		{"zero cell size", func(c *Config) { c.Camera.CellSize = 0 }},
		{"zero view radius", func(c *Config) { c.Camera.ViewRadius = 0 }},
		{"negative dead zone", func(c *Config) { c.Camera.DeadZone = -1 }},
		{"zero gain", func(c *Config) { c.Camera.Gain = 0 }},
		{"zero stale after", func(c *Config) { c.Sync.StaleAfter = 0 }},
		{"frame rate too high", func(c *Config) { c.Sync.FrameRate = 1000 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestWS(t *testing.T) {
	cfg := Default()
	cfg.Server.Codec = "msgpack"
	ws, err := cfg.WS(func() string { return "t" })
	if err != nil {
		t.Fatal(err)
	}
	if ws.Codec == nil || ws.Codec.Name() != "msgpack" || ws.Token() != "t" {
		t.Errorf("ws = %+v", ws)
	}

	cfg.Server.Codec = "xml"
	if _, err := cfg.WS(nil); err == nil {
		t.Error("expected codec error")
	}
}
