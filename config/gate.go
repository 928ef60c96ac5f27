package config

import "time"

// GateConfig controls how requests are classified and resolved.
type GateConfig struct {
	// PolicyFile is a YAML route policy. Empty uses the embedded default.
	PolicyFile string `env:"POLICY_FILE"`
	// ResolveTimeout bounds each session or permission lookup.
	ResolveTimeout time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"3s"`
}

// Sanitize clamps the resolver timeout.
func (c *GateConfig) Sanitize() {
	if c.ResolveTimeout <= 0 {
		c.ResolveTimeout = 3 * time.Second
	}
	if c.ResolveTimeout > 30*time.Second {
		c.ResolveTimeout = 30 * time.Second
	}
}
