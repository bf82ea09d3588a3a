// Package config provides configuration management for execshim.
package config

import (
	"github.com/victoralfred/execshim/observability"
	"github.com/victoralfred/execshim/policy"
)

// Config is the main configuration for execshim.
type Config struct {
	Telemetry      observability.TelemetryConfig
	Audit          observability.AuditConfig
	PolicyPath     string
	PolicyBasePath string
	Limits         policy.LimitsConfig
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Telemetry:      observability.DefaultTelemetryConfig(),
		Audit:          observability.DefaultAuditConfig(),
		PolicyPath:     "policy.yaml",
		PolicyBasePath: "/etc/execshim",
		Limits: policy.LimitsConfig{
			MaxPathLen:       policy.DefaultMaxPathLen,
			ShebangReadLimit: policy.DefaultShebangReadLimit,
		},
	}
}

// QuietConfig returns configuration with all observability disabled,
// suitable for preloading into processes that must not write logs.
func QuietConfig() Config {
	cfg := DefaultConfig()
	cfg.Telemetry.EnableTracing = false
	cfg.Telemetry.EnableMetrics = false
	cfg.Audit.Enabled = false
	return cfg
}

// Validate normalizes the configuration.
func (c *Config) Validate() error {
	if c.Limits.MaxPathLen <= 0 {
		c.Limits.MaxPathLen = policy.DefaultMaxPathLen
	}
	if c.Limits.ShebangReadLimit <= 2 {
		c.Limits.ShebangReadLimit = policy.DefaultShebangReadLimit
	}
	if c.Audit.Burst <= 0 {
		c.Audit.Burst = 1
	}
	return nil
}
