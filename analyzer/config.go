package analyzer

import (
	"fmt"

	"github.com/zero-day-ai/orgaudit/auditerr"
)

// Defaults for Config.
const (
	DefaultMinRatio      = 1.2
	DefaultMaxRatio      = 1.5
	DefaultMaxChainDepth = 4
)

// Config holds the analysis thresholds.
type Config struct {
	// MinRatio multiplies the subordinates' average compensation to give the
	// lower bound of a supervisor's expected band. Default: 1.2
	MinRatio float64 `yaml:"min_ratio,omitempty" json:"min_ratio"`

	// MaxRatio multiplies the subordinates' average compensation to give the
	// upper bound of a supervisor's expected band. Default: 1.5
	MaxRatio float64 `yaml:"max_ratio,omitempty" json:"max_ratio"`

	// MaxChainDepth is the deepest reporting chain that is not reported.
	// Default: 4
	MaxChainDepth int `yaml:"max_chain_depth,omitempty" json:"max_chain_depth"`

	// Concurrent runs both checks in parallel.
	Concurrent bool `yaml:"concurrent,omitempty" json:"concurrent"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MinRatio:      DefaultMinRatio,
		MaxRatio:      DefaultMaxRatio,
		MaxChainDepth: DefaultMaxChainDepth,
	}
}

// Validate checks the thresholds.
func (c Config) Validate() error {
	if c.MinRatio <= 0 {
		return auditerr.NewConfigurationError("analyzer.Config.Validate",
			fmt.Errorf("min_ratio must be positive, got %v", c.MinRatio))
	}
	if c.MaxRatio < c.MinRatio {
		return auditerr.NewConfigurationError("analyzer.Config.Validate",
			fmt.Errorf("max_ratio %v must not be less than min_ratio %v", c.MaxRatio, c.MinRatio))
	}
	if c.MaxChainDepth < 0 {
		return auditerr.NewConfigurationError("analyzer.Config.Validate",
			fmt.Errorf("max_chain_depth cannot be negative, got %d", c.MaxChainDepth))
	}
	return nil
}
