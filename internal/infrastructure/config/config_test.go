package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
studio:
  id: "lab-2"
database:
  path: "/tmp/test.db"
mqtt:
  enabled: true
  broker:
    host: "broker.local"
    port: 1883
  qos: 0
api:
  port: 9090
simulation:
  speed: 2.0
  scenario: classroom-temperature
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Studio.ID != "lab-2" {
		t.Errorf("Studio.ID = %q, want %q", cfg.Studio.ID, "lab-2")
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Simulation.Speed != 2.0 || cfg.Simulation.Scenario != "classroom-temperature" {
		t.Errorf("Simulation = %+v", cfg.Simulation)
	}

	// Unset fields keep their defaults.
	if cfg.WebSocket.Path != "/ws" {
		t.Errorf("WebSocket.Path = %q, want default", cfg.WebSocket.Path)
	}
	if !cfg.Simulation.AutoFluctuation {
		t.Error("Simulation.AutoFluctuation default lost")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "invalid: [yaml: content")
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
studio:
  id: ""
simulation:
  speed: 5
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected validation error, got nil")
	}
	for _, want := range []string{"studio.id is required", "simulation.speed"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing studio id", func(c *Config) { c.Studio.ID = "" }, true},
		{"missing database path", func(c *Config) { c.Database.Path = "" }, true},
		{"database disabled without path", func(c *Config) {
			c.Database.Enabled = false
			c.Database.Path = ""
		}, false},
		{"invalid QoS", func(c *Config) { c.MQTT.QoS = 3 }, true},
		{"mqtt enabled without host", func(c *Config) {
			c.MQTT.Enabled = true
			c.MQTT.Broker.Host = ""
		}, true},
		{"invalid port low", func(c *Config) { c.API.Port = 0 }, true},
		{"invalid port high", func(c *Config) { c.API.Port = 70000 }, true},
		{"zero body limit", func(c *Config) { c.API.MaxBodyBytes = 0 }, true},
		{"influx enabled without url", func(c *Config) { c.InfluxDB.Enabled = true }, true},
		{"influx enabled", func(c *Config) {
			c.InfluxDB.Enabled = true
			c.InfluxDB.URL = "http://localhost:8086"
		}, false},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"speed too slow", func(c *Config) { c.Simulation.Speed = 0.25 }, true},
		{"speed at max", func(c *Config) { c.Simulation.Speed = 3.0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	t.Setenv("STUDIO_DATABASE_PATH", "/custom/path.db")
	t.Setenv("STUDIO_MQTT_ENABLED", "true")
	t.Setenv("STUDIO_MQTT_HOST", "mqtt.example.com")
	t.Setenv("STUDIO_MQTT_PORT", "8883")
	t.Setenv("STUDIO_MQTT_USERNAME", "testuser")
	t.Setenv("STUDIO_API_PORT", "9000")
	t.Setenv("STUDIO_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("STUDIO_SIMULATION_SPEED", "1.5")
	t.Setenv("STUDIO_CATALOG_FILE", "/etc/studio/catalog.yaml")

	if err := applyEnvOverrides(cfg); err != nil {
		t.Fatalf("applyEnvOverrides() error = %v", err)
	}

	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if !cfg.MQTT.Enabled || cfg.MQTT.Broker.Host != "mqtt.example.com" || cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q", cfg.MQTT.Auth.Username)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port = %d", cfg.API.Port)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q", cfg.InfluxDB.Token)
	}
	if cfg.Simulation.Speed != 1.5 {
		t.Errorf("Simulation.Speed = %v", cfg.Simulation.Speed)
	}
	if cfg.Catalog.File != "/etc/studio/catalog.yaml" {
		t.Errorf("Catalog.File = %q", cfg.Catalog.File)
	}
}

func TestApplyEnvOverrides_BadValues(t *testing.T) {
	cfg := Default()
	t.Setenv("STUDIO_API_PORT", "eighty")
	t.Setenv("STUDIO_MQTT_ENABLED", "maybe")

	err := applyEnvOverrides(cfg)
	if err == nil {
		t.Fatal("applyEnvOverrides() expected error")
	}
	if !strings.Contains(err.Error(), "STUDIO_API_PORT") || !strings.Contains(err.Error(), "STUDIO_MQTT_ENABLED") {
		t.Errorf("error = %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port changed to %d on bad value", cfg.API.Port)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Studio.ID == "" {
		t.Error("Default should have non-empty Studio.ID")
	}
	if cfg.Database.Path == "" {
		t.Error("Default should have non-empty Database.Path")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("Default MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("Default API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.MQTT.Enabled || cfg.InfluxDB.Enabled {
		t.Error("optional integrations should be disabled by default")
	}
}
