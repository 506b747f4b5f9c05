package factory

import "aws-client-factory/pkg/clock"

// Instance is any client the factory builds.
type Instance interface {
	// Service returns the registered service name the instance was built for.
	Service() string
	// Config returns the resolved configuration, or nil when the instance has none of its own.
	Config() *Config
}

// Client pairs an SDK client with the configuration it was built from.
type Client[T any] struct {
	service string
	api     T
	config  *Config
}

// API returns the underlying SDK client.
func (c *Client[T]) API() T {
	if c == nil {
		var zero T

		return zero
	}

	return c.api
}

// Service implements Instance.
func (c *Client[T]) Service() string {
	if c == nil {
		return ""
	}

	return c.service
}

// Config implements Instance.
func (c *Client[T]) Config() *Config {
	if c == nil {
		return nil
	}

	return c.config
}

// ClockSetting implements clock.Configured.
func (c *Client[T]) ClockSetting() *clock.Setting {
	return c.Config().ClockSetting()
}

// ConfigOf returns the configuration instance was built from, following clock.Unwrapper for
// clients that carry none of their own.
func ConfigOf(instance Instance) *Config {
	if instance == nil {
		return nil
	}

	if cfg := instance.Config(); cfg != nil {
		return cfg
	}

	wrapper, ok := instance.(clock.Unwrapper)
	if !ok {
		return nil
	}

	inner, ok := wrapper.Unwrap().(Instance)
	if !ok || inner == nil {
		return nil
	}

	return inner.Config()
}
