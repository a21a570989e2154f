package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("FromViper() error: %v", err)
	}

	if cfg.Server.Address() != "0.0.0.0:8000" {
		t.Errorf("Expected 0.0.0.0:8000, got %s", cfg.Server.Address())
	}
	if cfg.WebSocket.Path != "/ws/audio" {
		t.Errorf("Expected /ws/audio, got %s", cfg.WebSocket.Path)
	}
	if cfg.Upload.Path != "/api/audio/analyze" {
		t.Errorf("Expected /api/audio/analyze, got %s", cfg.Upload.Path)
	}
	if cfg.Upload.FormField != "file" {
		t.Errorf("Expected form field 'file', got %s", cfg.Upload.FormField)
	}
	if !cfg.CORS.AllowCredentials {
		t.Error("CORS credentials should be allowed by default")
	}
	if len(cfg.CORS.AllowOrigins) != 1 || cfg.CORS.AllowOrigins[0] != "*" {
		t.Errorf("Expected all origins, got %v", cfg.CORS.AllowOrigins)
	}
	if cfg.WebSocket.PongWait != 60*time.Second {
		t.Errorf("Expected 60s pong wait, got %s", cfg.WebSocket.PongWait)
	}
	if cfg.WebSocket.PingPeriod() >= cfg.WebSocket.PongWait {
		t.Error("Ping period must be shorter than pong wait")
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Unexpected metrics config: %+v", cfg.Metrics)
	}
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9001")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_WEBSOCKET_PATH", "/ws/listen")
	t.Setenv("APP_WEBSOCKET_PONG_WAIT", "5s")

	cfg, err := FromViper(viper.New())
	if err != nil {
		t.Fatalf("FromViper() error: %v", err)
	}

	if cfg.Server.Port != 9001 {
		t.Errorf("Expected port 9001, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.WebSocket.Path != "/ws/listen" {
		t.Errorf("Expected /ws/listen, got %s", cfg.WebSocket.Path)
	}
	if cfg.WebSocket.PongWait != 5*time.Second {
		t.Errorf("Expected 5s pong wait, got %s", cfg.WebSocket.PongWait)
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		cfg, err := FromViper(viper.New())
		if err != nil {
			t.Fatalf("FromViper() error: %v", err)
		}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "port too large", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "relative ws path", mutate: func(c *Config) { c.WebSocket.Path = "ws" }, wantErr: true},
		{name: "relative upload path", mutate: func(c *Config) { c.Upload.Path = "upload" }, wantErr: true},
		{name: "empty form field", mutate: func(c *Config) { c.Upload.FormField = "" }, wantErr: true},
		{name: "zero pong wait", mutate: func(c *Config) { c.WebSocket.PongWait = 0 }, wantErr: true},
		{name: "zero message size", mutate: func(c *Config) { c.WebSocket.MaxMessageSize = 0 }, wantErr: true},
		{name: "negative send buffer", mutate: func(c *Config) { c.WebSocket.SendBuffer = -1 }, wantErr: true},
		{name: "bad metrics path", mutate: func(c *Config) { c.Metrics.Path = "metrics" }, wantErr: true},
		{name: "bad metrics path ignored when disabled", mutate: func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.Path = "metrics"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
