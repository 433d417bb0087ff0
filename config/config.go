package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/fetchapi/core/validator"
	"github.com/kochabx/fetchapi/log"
)

// Config manages loading, validating and reloading a configuration target
type Config struct {
	mu       sync.RWMutex        // protects target during reloads
	viper    *viper.Viper        // viper instance used by the default loader
	validate validator.Validator // validator applied after unmarshalling
	target   any                 // destination of the configuration
	loader   Loader
}

// New creates a Config for target. Without WithLoader the configuration is read from
// "config.yaml" in the working directory.
func New(target any, opts ...Option) *Config {
	c := &Config{
		viper:    viper.New(),
		validate: validator.Validate,
		target:   target,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		c.loader = NewFileLoader("config.yaml", []string{"."}, c.viper, c.validate)
	}

	return c
}

// Load reads the configuration into the target
func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.loader.Load(c.target)
}

// Read runs fn while holding the read lock, so fn observes a consistent target
func (c *Config) Read(fn func()) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	fn()
}

// Watch reloads the target whenever the loader reports a change
func (c *Config) Watch() error {
	return c.loader.Watch(func() {
		log.Info().Msg("config change detected")

		if err := c.Load(); err != nil {
			log.Warn().Err(err).Msg("config reload failed, keeping previous values")
			return
		}

		log.Info().Msg("config reloaded successfully")
	})
}

// Viper returns the underlying viper instance
func (c *Config) Viper() *viper.Viper {
	return c.viper
}
