// SPDX-License-Identifier: MIT
package dicemice

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sirupsen/logrus"
)

type (
	// Config defines configuration options for the [Engine]'s operations.
	Config struct {
		// Logger for [Engine] messages; roll records carry an `actor` field.
		//
		// Preferring a public field to allow for sharing.
		Logger logrus.FieldLogger

		// Debug enables per-draw roll records & token dumps.
		Debug bool `env:"DICEMICE_DEBUG"`

		// Timeout bounds the wall-clock time of a single evaluation.
		Timeout time.Duration `env:"DICEMICE_TIMEOUT" envDefault:"2s"`

		// Workers is the size of the evaluation pool.
		Workers int `env:"DICEMICE_WORKERS" envDefault:"64"`

		// MaxDice bounds the pool of a single die; negative values disable the bound.
		MaxDice int64 `env:"DICEMICE_MAX_DICE" envDefault:"100000"`

		// Seed makes every evaluation replay the same draws when non-zero.
		Seed int64 `env:"DICEMICE_SEED"`
	}
)

const (
	// DefaultTimeout is the evaluation deadline.
	DefaultTimeout = 2 * time.Second

	// DefaultWorkers is the evaluation pool size.
	DefaultWorkers = 64

	// DefaultMaxDice is the largest pool a single die may request.
	DefaultMaxDice = 100000
)

// DefConfig obtains the package's default [Config].
func DefConfig() *Config {
	return &Config{
		Logger:  logrus.New(),
		Timeout: DefaultTimeout,
		Workers: DefaultWorkers,
		MaxDice: DefaultMaxDice,
	}
}

// ConfigFromEnv obtains a [Config] populated from the environment.
func ConfigFromEnv() (cfg *Config, err error) {
	cfg = DefConfig()
	if err = env.Parse(cfg); err != nil {
		err = fmt.Errorf("parse env: %w", err)
		return
	}
	cfg.Validate()

	return
}

// Validate populates missing Config entries with defaults.
func (c *Config) Validate() {
	if c.Logger == nil {
		c.Logger = logrus.New()
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Workers < 1 {
		c.Workers = DefaultWorkers
	}
	if c.MaxDice == 0 {
		c.MaxDice = DefaultMaxDice
	}
}
