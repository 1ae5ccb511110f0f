package nav_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/nav"
)

func TestDefaultConfig(t *testing.T) {
	cfg := nav.DefaultConfig()

	if cfg.Observer != "slog" {
		t.Errorf("Observer = %q, want slog", cfg.Observer)
	}
	if cfg.QueueSize != 256 {
		t.Errorf("QueueSize = %d, want 256", cfg.QueueSize)
	}
	if cfg.MapCenter != geo.NewCoordinates(52.520798, 13.409408) {
		t.Errorf("MapCenter = %v, want Berlin Alexanderplatz", cfg.MapCenter)
	}
	if cfg.Simulated.SpeedFactor != 2.0 {
		t.Errorf("Simulated.SpeedFactor = %v, want 2.0", cfg.Simulated.SpeedFactor)
	}
	if cfg.Reroute.PollInterval != 10*time.Minute {
		t.Errorf("Reroute.PollInterval = %v, want 10m", cfg.Reroute.PollInterval)
	}
	if cfg.Traffic.Interval != 10*time.Minute {
		t.Errorf("Traffic.Interval = %v, want 10m", cfg.Traffic.Interval)
	}
	if cfg.Notify.DeviationDebounce != 3 {
		t.Errorf("Notify.DeviationDebounce = %d, want 3", cfg.Notify.DeviationDebounce)
	}
}

func TestConfig_MergePreservesDefaults(t *testing.T) {
	cfg := nav.DefaultConfig()
	cfg.Merge(&nav.Config{
		Observer:  "noop",
		MapCenter: geo.NewCoordinates(48.137154, 11.576124),
	})

	if cfg.Observer != "noop" {
		t.Errorf("Observer = %q, want noop", cfg.Observer)
	}
	if cfg.MapCenter.Latitude != 48.137154 {
		t.Errorf("MapCenter = %v, want Munich", cfg.MapCenter)
	}
	if cfg.QueueSize != 256 {
		t.Errorf("QueueSize = %d, want default 256 preserved", cfg.QueueSize)
	}
	if cfg.Simulated.NotificationInterval != 500*time.Millisecond {
		t.Errorf("Simulated.NotificationInterval = %v, want default preserved", cfg.Simulated.NotificationInterval)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"observer": "noop",
		"queue_size": 64,
		"map_center": {"latitude": 48.137154, "longitude": 11.576124},
		"simulated": {"speed_factor": 4},
		"reroute": {"poll_interval": 60000000000}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := nav.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Observer != "noop" {
		t.Errorf("Observer = %q, want noop", cfg.Observer)
	}
	if cfg.QueueSize != 64 {
		t.Errorf("QueueSize = %d, want 64", cfg.QueueSize)
	}
	if cfg.Simulated.SpeedFactor != 4 {
		t.Errorf("Simulated.SpeedFactor = %v, want 4", cfg.Simulated.SpeedFactor)
	}
	if cfg.Reroute.PollInterval != time.Minute {
		t.Errorf("Reroute.PollInterval = %v, want 1m", cfg.Reroute.PollInterval)
	}
	// Unspecified sections keep their defaults.
	if cfg.Traffic.Interval != 10*time.Minute {
		t.Errorf("Traffic.Interval = %v, want default 10m", cfg.Traffic.Interval)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := nav.LoadConfig(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("LoadConfig(missing file) succeeded, want error")
	}
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := nav.LoadConfig(path); err == nil {
		t.Error("LoadConfig(malformed file) succeeded, want error")
	}
}
