package dispatch

import "fmt"

// Config defines the dispatch timing parameters loaded from configuration.
type Config struct {
	// OfferDeadlineSeconds is how long each candidate has to respond before
	// the dispatch advances. The same value applies to every offer of a
	// dispatch; it is never extended or restarted.
	OfferDeadlineSeconds int `json:"offer_deadline_seconds" yaml:"offer_deadline_seconds"`
	// SweepIntervalSeconds is the period of the escalation sweeper.
	SweepIntervalSeconds int `json:"sweep_interval_seconds" yaml:"sweep_interval_seconds"`
	// SweepGraceSeconds is added to the deadline before the sweeper forces
	// an expiry, leaving the in-process timer room to fire first.
	SweepGraceSeconds int `json:"sweep_grace_seconds" yaml:"sweep_grace_seconds"`
	// RetentionMinutes is how long terminal records are kept before the
	// sweeper evicts them.
	RetentionMinutes int `json:"retention_minutes" yaml:"retention_minutes"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.OfferDeadlineSeconds == 0 {
		c.OfferDeadlineSeconds = 10
	}
	if c.SweepIntervalSeconds == 0 {
		c.SweepIntervalSeconds = 60
	}
	if c.SweepGraceSeconds == 0 {
		c.SweepGraceSeconds = 5
	}
	if c.RetentionMinutes == 0 {
		c.RetentionMinutes = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.OfferDeadlineSeconds < 0 || c.SweepIntervalSeconds < 0 || c.SweepGraceSeconds < 0 || c.RetentionMinutes < 0 {
		return fmt.Errorf("dispatch durations must not be negative")
	}
	return nil
}
