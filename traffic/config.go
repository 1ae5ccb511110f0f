package traffic

import "time"

const defaultInterval = 10 * time.Minute

// Config holds the traffic refresh throttle parameters.
type Config struct {
	// Interval is the minimum time between overlay recomputations.
	Interval time.Duration `json:"interval"`
}

// DefaultConfig returns the traffic refresh defaults.
func DefaultConfig() Config {
	return Config{Interval: defaultInterval}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Interval > 0 {
		c.Interval = source.Interval
	}
}
