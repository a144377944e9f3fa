package cluster

import (
	"time"

	"github.com/dd0wney/cluso-centrality/pkg/comm"
)

// Config defines how a local cluster is brought up
type Config struct {
	// Workers is the number of worker ranks to start
	Workers int

	// Addrs are the communicator endpoints. Zero value means private
	// in-process endpoints, which is the right choice for a single-host run.
	Addrs comm.Addrs

	// ReadyTimeout bounds cluster bring-up (default: 10s)
	ReadyTimeout time.Duration

	// ReplicateTimeout bounds graph replication (default: 2m)
	ReplicateTimeout time.Duration

	// JobTimeout bounds one distributed computation (default: 30m)
	JobTimeout time.Duration
}

// DefaultConfig returns a safe default configuration for n workers
func DefaultConfig(workers int) Config {
	return Config{
		Workers:          workers,
		ReadyTimeout:     10 * time.Second,
		ReplicateTimeout: 2 * time.Minute,
		JobTimeout:       30 * time.Minute,
	}
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return ErrInvalidWorkerCount
	}
	return nil
}

// withDefaults fills unset fields without mutating the original
func (c Config) withDefaults() Config {
	d := DefaultConfig(c.Workers)
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = d.ReadyTimeout
	}
	if c.ReplicateTimeout <= 0 {
		c.ReplicateTimeout = d.ReplicateTimeout
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = d.JobTimeout
	}
	return c
}
