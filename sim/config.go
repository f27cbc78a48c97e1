package sim

import "github.com/prometheus/client_golang/prometheus"

// Config groups simulator-wide parameters.
type Config struct {
	Name       string                // simulator name, used in logs (default "sim")
	Resolution Duration              // physical length of one tick (default 1ns)
	Seed       int64                 // master seed for PartitionedRNG
	Registerer prometheus.Registerer // optional registry for kernel metrics
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Resolution < 0 {
		return invalidConfig("resolution must be non-negative, got %s", c.Resolution)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = "sim"
	}
	if c.Resolution == 0 {
		c.Resolution = DefaultResolution
	}
	return c
}
