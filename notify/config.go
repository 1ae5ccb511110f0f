package notify

// defaultDeviationDebounce is the number of consecutive deviation events
// required before the deviation hook fires. The engine emits deviations
// continuously while off route; acting on a single one would recompute
// routes on every GPS wobble.
const defaultDeviationDebounce = 3

// Config holds event routing policy parameters.
type Config struct {
	// DeviationDebounce is how many consecutive deviation events must
	// arrive before the deviation hook fires. On-route progress resets
	// the count.
	DeviationDebounce int `json:"deviation_debounce"`
}

// DefaultConfig returns the routing policy defaults.
func DefaultConfig() Config {
	return Config{DeviationDebounce: defaultDeviationDebounce}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.DeviationDebounce > 0 {
		c.DeviationDebounce = source.DeviationDebounce
	}
}
