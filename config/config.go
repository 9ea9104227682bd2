package config

import (
	"fmt"
	"time"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/validation"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultType        = "application/json"
	DefaultCharset     = "UTF-8"
	DefaultTimeout     = 30 * time.Second
	DefaultEnvironment = "development"
)

// Config describes a restkit client: where it talks to, how requests are
// negotiated by default, and how it logs and traces.
type Config struct {
	Name        string               `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string               `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	BaseURL     string               `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,urlshape"`
	Type        string               `yaml:"type" mapstructure:"type"`
	Charset     string               `yaml:"charset" mapstructure:"charset"`
	Timeout     time.Duration        `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Headers     map[string]string    `yaml:"headers" mapstructure:"headers"`
	Logging     logger.Config        `yaml:"logging" mapstructure:"logging"`
	Tracing     observability.Config `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "restkit"
	}
	if c.Environment == "" {
		c.Environment = DefaultEnvironment
	}
	if c.Type == "" {
		c.Type = DefaultType
	}
	if c.Charset == "" {
		c.Charset = DefaultCharset
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	c.Logging.ApplyDefaults()
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = c.Name
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.Environment
	}
	c.Tracing.ApplyDefaults()
}

// Validate checks the configuration after defaults have been applied.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("config.tracing.sample_rate must be within [0, 1] (got: %v)", c.Tracing.SampleRate)
	}
	return nil
}
