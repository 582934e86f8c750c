package match

import "fmt"

// Config defines the matching thresholds loaded from configuration.
type Config struct {
	// DisambiguationGapMeters is the minimum distance difference between the
	// two closest candidates required to declare a single confident match.
	DisambiguationGapMeters float64 `json:"disambiguation_gap_meters" yaml:"disambiguation_gap_meters"`
	// DefaultUncertaintyMeters is used when a query does not carry its own
	// GPS accuracy estimate.
	DefaultUncertaintyMeters float64 `json:"default_uncertainty_meters" yaml:"default_uncertainty_meters"`
	// HighConfidenceMeters and MediumConfidenceMeters bound the distance
	// bands used to grade a confident match.
	HighConfidenceMeters   float64 `json:"high_confidence_meters" yaml:"high_confidence_meters"`
	MediumConfidenceMeters float64 `json:"medium_confidence_meters" yaml:"medium_confidence_meters"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.DisambiguationGapMeters == 0 {
		c.DisambiguationGapMeters = 3
	}
	if c.DefaultUncertaintyMeters == 0 {
		c.DefaultUncertaintyMeters = 30
	}
	if c.HighConfidenceMeters == 0 {
		c.HighConfidenceMeters = 10
	}
	if c.MediumConfidenceMeters == 0 {
		c.MediumConfidenceMeters = 25
	}
}

// Validate checks threshold consistency.
func (c Config) Validate() error {
	if c.DisambiguationGapMeters < 0 {
		return fmt.Errorf("disambiguation_gap_meters must not be negative")
	}
	if c.DefaultUncertaintyMeters <= 0 {
		return fmt.Errorf("default_uncertainty_meters must be positive")
	}
	if c.MediumConfidenceMeters < c.HighConfidenceMeters {
		return fmt.Errorf("medium_confidence_meters must not be below high_confidence_meters")
	}
	return nil
}
