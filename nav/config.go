package nav

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/turnwise/navkit/core/geo"
	"github.com/turnwise/navkit/location"
	"github.com/turnwise/navkit/notify"
	"github.com/turnwise/navkit/reroute"
	"github.com/turnwise/navkit/traffic"
)

const defaultQueueSize = 256

// Config holds initialization parameters for the navigation session and
// its subsystems. Each subsystem section delegates to that subsystem's
// defaults and Merge.
type Config struct {
	// Observer names the observability registry entry to use ("noop",
	// "slog", or anything registered at startup).
	Observer string `json:"observer"`

	// QueueSize bounds the session's event queue.
	QueueSize int `json:"queue_size"`

	// MapCenter seeds the fallback waypoint sampling window.
	MapCenter geo.Coordinates `json:"map_center"`

	Simulated location.SimulatedConfig `json:"simulated"`
	Notify    notify.Config            `json:"notify"`
	Reroute   reroute.Config           `json:"reroute"`
	Traffic   traffic.Config           `json:"traffic"`
}

// DefaultConfig returns a Config with sensible defaults for all
// subsystems. The default map center is Berlin Alexanderplatz, matching
// the demo dataset.
func DefaultConfig() Config {
	return Config{
		Observer:  "slog",
		QueueSize: defaultQueueSize,
		MapCenter: geo.NewCoordinates(52.520798, 13.409408),
		Simulated: location.DefaultSimulatedConfig(),
		Notify:    notify.DefaultConfig(),
		Reroute:   reroute.DefaultConfig(),
		Traffic:   traffic.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.QueueSize > 0 {
		c.QueueSize = source.QueueSize
	}
	if source.MapCenter.Valid() && (source.MapCenter != geo.Coordinates{}) {
		c.MapCenter = source.MapCenter
	}

	c.Simulated.Merge(&source.Simulated)
	c.Notify.Merge(&source.Notify)
	c.Reroute.Merge(&source.Reroute)
	c.Traffic.Merge(&source.Traffic)
}

// LoadConfig reads a JSON config file, merges it with defaults, and
// returns the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
