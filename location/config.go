package location

import "time"

const (
	defaultSpeedFactor          = 2.0
	defaultNotificationInterval = 500 * time.Millisecond
)

// SimulatedConfig holds replay parameters for the simulated source.
type SimulatedConfig struct {
	// SpeedFactor scales the route's nominal speeds during replay.
	SpeedFactor float64 `json:"speed_factor"`

	// NotificationInterval is the fixed cadence of synthetic fixes.
	NotificationInterval time.Duration `json:"notification_interval"`
}

// DefaultSimulatedConfig returns the replay defaults: 2x speed at a 500 ms
// cadence.
func DefaultSimulatedConfig() SimulatedConfig {
	return SimulatedConfig{
		SpeedFactor:          defaultSpeedFactor,
		NotificationInterval: defaultNotificationInterval,
	}
}

// Merge applies non-zero values from source into c.
func (c *SimulatedConfig) Merge(source *SimulatedConfig) {
	if source.SpeedFactor > 0 {
		c.SpeedFactor = source.SpeedFactor
	}
	if source.NotificationInterval > 0 {
		c.NotificationInterval = source.NotificationInterval
	}
}
