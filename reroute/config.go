package reroute

import "time"

const (
	defaultPollInterval     = 10 * time.Minute
	defaultMinTimeDelta     = time.Second
	defaultMinRelativeDelta = 0.10
)

// Config holds the dynamic rerouting poll parameters.
type Config struct {
	// PollInterval is the evaluation cadence while navigating.
	PollInterval time.Duration `json:"poll_interval"`

	// MinTimeDelta is the minimum absolute ETA saving an alternative must
	// offer to count as materially better.
	MinTimeDelta time.Duration `json:"min_time_delta"`

	// MinRelativeDelta is the minimum ETA saving as a fraction of the
	// remaining travel time.
	MinRelativeDelta float64 `json:"min_relative_delta"`
}

// DefaultConfig returns the rerouting defaults: poll every 10 minutes,
// report savings of at least 1 second and 10% of the remaining time.
func DefaultConfig() Config {
	return Config{
		PollInterval:     defaultPollInterval,
		MinTimeDelta:     defaultMinTimeDelta,
		MinRelativeDelta: defaultMinRelativeDelta,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.PollInterval > 0 {
		c.PollInterval = source.PollInterval
	}
	if source.MinTimeDelta > 0 {
		c.MinTimeDelta = source.MinTimeDelta
	}
	if source.MinRelativeDelta > 0 {
		c.MinRelativeDelta = source.MinRelativeDelta
	}
}
