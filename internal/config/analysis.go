// Package config holds the analysis configuration. The schema mirrors the
// tunable constants of the RWS pipeline so a partial JSON file can override
// any subset; omitted fields keep their defaults via the Get* methods.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults for the analysis pipeline.
const (
	DefaultCNRThresholdDb    = -20.0
	DefaultAngleToleranceDeg = 0.1
	DefaultOutputDir         = "output_rws_analysis"
	DefaultHistogramBins     = 50
)

// DefaultQuantiles are the reference quantiles reported per sample.
var DefaultQuantiles = []float64{0.1, 0.5, 0.9}

// AnalysisConfig configures one pipeline run. All fields are optional in
// JSON; nil means "use the default".
type AnalysisConfig struct {
	CNRThresholdDb    *float64  `json:"cnr_threshold_db,omitempty"`
	ApplyCNRFilter    *bool     `json:"apply_cnr_filter,omitempty"`
	AngleToleranceDeg *float64  `json:"angle_tolerance_deg,omitempty"`
	OutputDir         *string   `json:"output_dir,omitempty"`
	HistogramBins     *int      `json:"histogram_bins,omitempty"`
	Quantiles         []float64 `json:"quantiles,omitempty"`
}

// EmptyAnalysisConfig returns a config with every field unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// GetCNRThresholdDb returns the CNR quality threshold in dB.
func (c *AnalysisConfig) GetCNRThresholdDb() float64 {
	if c.CNRThresholdDb != nil {
		return *c.CNRThresholdDb
	}
	return DefaultCNRThresholdDb
}

// GetApplyCNRFilter reports whether the quality filter runs before the
// per-angle analyses. The wind rose always spans the unfiltered set.
func (c *AnalysisConfig) GetApplyCNRFilter() bool {
	if c.ApplyCNRFilter != nil {
		return *c.ApplyCNRFilter
	}
	return true
}

// GetAngleToleranceDeg returns the pointing-direction match tolerance.
func (c *AnalysisConfig) GetAngleToleranceDeg() float64 {
	if c.AngleToleranceDeg != nil {
		return *c.AngleToleranceDeg
	}
	return DefaultAngleToleranceDeg
}

// GetOutputDir returns the artifact output directory.
func (c *AnalysisConfig) GetOutputDir() string {
	if c.OutputDir != nil {
		return *c.OutputDir
	}
	return DefaultOutputDir
}

// GetHistogramBins returns the histogram bin count.
func (c *AnalysisConfig) GetHistogramBins() int {
	if c.HistogramBins != nil {
		return *c.HistogramBins
	}
	return DefaultHistogramBins
}

// GetQuantiles returns the reference quantiles, defaulting to P10/P50/P90.
func (c *AnalysisConfig) GetQuantiles() []float64 {
	if len(c.Quantiles) > 0 {
		return c.Quantiles
	}
	return DefaultQuantiles
}

// Validate checks the configuration for out-of-range values.
func (c *AnalysisConfig) Validate() error {
	if c.AngleToleranceDeg != nil && *c.AngleToleranceDeg <= 0 {
		return fmt.Errorf("angle_tolerance_deg must be positive, got %v", *c.AngleToleranceDeg)
	}
	if c.HistogramBins != nil && *c.HistogramBins < 1 {
		return fmt.Errorf("histogram_bins must be at least 1, got %d", *c.HistogramBins)
	}
	if c.OutputDir != nil && *c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	for _, q := range c.Quantiles {
		if q < 0 || q > 1 {
			return fmt.Errorf("quantile %v out of range [0, 1]", q)
		}
	}
	return nil
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file. Partial
// configs are safe: omitted fields fall back to defaults.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
