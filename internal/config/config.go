// Package config reads jobsrv configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config of jobsrv, zero values are replaced by defaults in New
type Config struct {
	Address     string        `yaml:"address,omitempty" json:"address,omitempty"`
	Workers     int           `yaml:"workers,omitempty" json:"workers,omitempty"`
	Root        string        `yaml:"root,omitempty" json:"root,omitempty"`
	SleepDelay  time.Duration `yaml:"sleep-delay,omitempty" json:"sleep-delay,omitempty"`
	ReadTimeout time.Duration `yaml:"read-timeout,omitempty" json:"read-timeout,omitempty"`
	Respawn     bool          `yaml:"respawn,omitempty" json:"respawn,omitempty"`
	Prometheus  *PromConfig   `yaml:"prometheus,omitempty" json:"prometheus,omitempty"`
}

// PromConfig enables the prometheus metrics endpoint when present
type PromConfig struct {
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
}

// New reads config from file. Empty file name means defaults only.
func New(file string) (*Config, error) {
	c := new(Config)
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if err = yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", file, err)
		}
	}
	err := c.validateSetDefaults()
	return c, err
}

func (c *Config) validateSetDefaults() error {
	if c.Workers < 0 {
		return fmt.Errorf("invalid number of workers %d", c.Workers)
	}
	if c.Workers == 0 {
		c.Workers = defaultWorkers
	}
	if c.SleepDelay < 0 {
		return fmt.Errorf("invalid sleep-delay %v", c.SleepDelay)
	}
	if c.SleepDelay == 0 {
		c.SleepDelay = defaultSleepDelay
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("invalid read-timeout %v", c.ReadTimeout)
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.Address == "" {
		c.Address = defaultAddress
	}
	if c.Root == "" {
		c.Root = defaultRoot
	}
	if c.Prometheus != nil && c.Prometheus.Address == "" {
		return errors.New("prometheus address is required")
	}
	return nil
}
