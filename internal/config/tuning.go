package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for guidance tuning.
// Every field is optional; the Get* accessors supply the default for any
// field omitted from the JSON, so partial files are safe.
type TuningConfig struct {
	// Simulation cadence
	TickLength *float64 `json:"tick_length,omitempty"` // seconds per tick

	// Lead solver
	LeadTolerance     *float64 `json:"lead_tolerance,omitempty"`
	LeadMaxIterations *int     `json:"lead_max_iterations,omitempty"`

	// Target estimator
	SanityDisplacementFactor *float64 `json:"sanity_displacement_factor,omitempty"`
	TentativeConfidence      *float64 `json:"tentative_confidence,omitempty"`
	TentativeWindow          *int     `json:"tentative_window,omitempty"`

	// Bearing/range Kalman filter
	KalmanBearingNoise    *float64 `json:"kalman_bearing_noise,omitempty"` // radians at 0 dB
	KalmanRangeNoise      *float64 `json:"kalman_range_noise,omitempty"`
	KalmanVelocityNoise   *float64 `json:"kalman_velocity_noise,omitempty"`
	KalmanMaxSamples      *int     `json:"kalman_max_samples,omitempty"`
	KalmanInitialVariance *float64 `json:"kalman_initial_variance,omitempty"`
	KalmanBeamBase        *float64 `json:"kalman_beam_base,omitempty"`

	// Radar scheduler
	SearchInitialHeading *float64 `json:"search_initial_heading,omitempty"`
	SearchInitialWidth   *float64 `json:"search_initial_width,omitempty"`
	SearchMinWidth       *float64 `json:"search_min_width,omitempty"`
	TrackSwath           *float64 `json:"track_swath,omitempty"`
	TrackRangeMargin     *float64 `json:"track_range_margin,omitempty"`
	TrackSlotTicks       *int     `json:"track_slot_ticks,omitempty"`

	// Proportional navigation
	PNGain                *float64 `json:"pn_gain,omitempty"`
	PNThrust              *float64 `json:"pn_thrust,omitempty"`
	PNAugmented           *bool    `json:"pn_augmented,omitempty"`
	FinalApproachDistance *float64 `json:"final_approach_distance,omitempty"`

	// Boost ability
	BoostActiveTicks   *int     `json:"boost_active_ticks,omitempty"`
	BoostCooldownTicks *int     `json:"boost_cooldown_ticks,omitempty"`
	BoostForwardBonus  *float64 `json:"boost_forward_bonus,omitempty"`

	// Fire control
	FireMissTolerance *float64 `json:"fire_miss_tolerance,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// from the built-in defaults.
func DefaultTuningConfig() *TuningConfig {
	e := EmptyTuningConfig()
	return &TuningConfig{
		TickLength:               ptrFloat64(e.GetTickLength()),
		LeadTolerance:            ptrFloat64(e.GetLeadTolerance()),
		LeadMaxIterations:        ptrInt(e.GetLeadMaxIterations()),
		SanityDisplacementFactor: ptrFloat64(e.GetSanityDisplacementFactor()),
		TentativeConfidence:      ptrFloat64(e.GetTentativeConfidence()),
		TentativeWindow:          ptrInt(e.GetTentativeWindow()),
		KalmanBearingNoise:       ptrFloat64(e.GetKalmanBearingNoise()),
		KalmanRangeNoise:         ptrFloat64(e.GetKalmanRangeNoise()),
		KalmanVelocityNoise:      ptrFloat64(e.GetKalmanVelocityNoise()),
		KalmanMaxSamples:         ptrInt(e.GetKalmanMaxSamples()),
		KalmanInitialVariance:    ptrFloat64(e.GetKalmanInitialVariance()),
		KalmanBeamBase:           ptrFloat64(e.GetKalmanBeamBase()),
		SearchInitialHeading:     ptrFloat64(e.GetSearchInitialHeading()),
		SearchInitialWidth:       ptrFloat64(e.GetSearchInitialWidth()),
		SearchMinWidth:           ptrFloat64(e.GetSearchMinWidth()),
		TrackSwath:               ptrFloat64(e.GetTrackSwath()),
		TrackRangeMargin:         ptrFloat64(e.GetTrackRangeMargin()),
		TrackSlotTicks:           ptrInt(e.GetTrackSlotTicks()),
		PNGain:                   ptrFloat64(e.GetPNGain()),
		PNThrust:                 ptrFloat64(e.GetPNThrust()),
		PNAugmented:              ptrBool(e.GetPNAugmented()),
		FinalApproachDistance:    ptrFloat64(e.GetFinalApproachDistance()),
		BoostActiveTicks:         ptrInt(e.GetBoostActiveTicks()),
		BoostCooldownTicks:       ptrInt(e.GetBoostCooldownTicks()),
		BoostForwardBonus:        ptrFloat64(e.GetBoostForwardBonus()),
		FireMissTolerance:        ptrFloat64(e.GetFireMissTolerance()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,       // from cmd/engage/
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.TickLength != nil && *c.TickLength <= 0 {
		return fmt.Errorf("tick_length must be positive, got %f", *c.TickLength)
	}
	if c.LeadTolerance != nil && *c.LeadTolerance <= 0 {
		return fmt.Errorf("lead_tolerance must be positive, got %f", *c.LeadTolerance)
	}
	if c.LeadMaxIterations != nil && *c.LeadMaxIterations < 1 {
		return fmt.Errorf("lead_max_iterations must be at least 1, got %d", *c.LeadMaxIterations)
	}
	if c.SanityDisplacementFactor != nil && *c.SanityDisplacementFactor <= 0 {
		return fmt.Errorf("sanity_displacement_factor must be positive, got %f", *c.SanityDisplacementFactor)
	}
	if c.KalmanMaxSamples != nil && *c.KalmanMaxSamples < 1 {
		return fmt.Errorf("kalman_max_samples must be at least 1, got %d", *c.KalmanMaxSamples)
	}
	if c.KalmanInitialVariance != nil && *c.KalmanInitialVariance <= 0 {
		return fmt.Errorf("kalman_initial_variance must be positive, got %f", *c.KalmanInitialVariance)
	}
	if c.SearchInitialWidth != nil && (*c.SearchInitialWidth <= 0 || *c.SearchInitialWidth > 2*math.Pi) {
		return fmt.Errorf("search_initial_width must be in (0, 2π], got %f", *c.SearchInitialWidth)
	}
	if c.SearchMinWidth != nil && *c.SearchMinWidth <= 0 {
		return fmt.Errorf("search_min_width must be positive, got %f", *c.SearchMinWidth)
	}
	if c.TrackSlotTicks != nil && *c.TrackSlotTicks < 1 {
		return fmt.Errorf("track_slot_ticks must be at least 1, got %d", *c.TrackSlotTicks)
	}
	if c.TentativeWindow != nil && *c.TentativeWindow < 1 {
		return fmt.Errorf("tentative_window must be at least 1, got %d", *c.TentativeWindow)
	}
	if c.BoostActiveTicks != nil && c.BoostCooldownTicks != nil && *c.BoostCooldownTicks < *c.BoostActiveTicks {
		return fmt.Errorf("boost_cooldown_ticks (%d) must not be shorter than boost_active_ticks (%d)",
			*c.BoostCooldownTicks, *c.BoostActiveTicks)
	}
	return nil
}

// GetTickLength returns the tick_length value or the default (60 Hz).
func (c *TuningConfig) GetTickLength() float64 {
	if c.TickLength == nil {
		return 1.0 / 60.0
	}
	return *c.TickLength
}

// GetLeadTolerance returns the lead_tolerance value or the default.
func (c *TuningConfig) GetLeadTolerance() float64 {
	if c.LeadTolerance == nil {
		return 1e-3
	}
	return *c.LeadTolerance
}

// GetLeadMaxIterations returns the lead_max_iterations value or the default.
func (c *TuningConfig) GetLeadMaxIterations() int {
	if c.LeadMaxIterations == nil {
		return 100
	}
	return *c.LeadMaxIterations
}

// GetSanityDisplacementFactor returns the sanity_displacement_factor value or the default.
func (c *TuningConfig) GetSanityDisplacementFactor() float64 {
	if c.SanityDisplacementFactor == nil {
		return 4.0
	}
	return *c.SanityDisplacementFactor
}

// GetTentativeConfidence returns the tentative_confidence value or the default.
func (c *TuningConfig) GetTentativeConfidence() float64 {
	if c.TentativeConfidence == nil {
		return 10.0
	}
	return *c.TentativeConfidence
}

// GetTentativeWindow returns the tentative_window value or the default.
func (c *TuningConfig) GetTentativeWindow() int {
	if c.TentativeWindow == nil {
		return 10
	}
	return *c.TentativeWindow
}

// GetKalmanBearingNoise returns the kalman_bearing_noise value or the default (10°).
func (c *TuningConfig) GetKalmanBearingNoise() float64 {
	if c.KalmanBearingNoise == nil {
		return 10 * math.Pi / 180
	}
	return *c.KalmanBearingNoise
}

// GetKalmanRangeNoise returns the kalman_range_noise value or the default.
func (c *TuningConfig) GetKalmanRangeNoise() float64 {
	if c.KalmanRangeNoise == nil {
		return 1e4
	}
	return *c.KalmanRangeNoise
}

// GetKalmanVelocityNoise returns the kalman_velocity_noise value or the default.
func (c *TuningConfig) GetKalmanVelocityNoise() float64 {
	if c.KalmanVelocityNoise == nil {
		return 1e2
	}
	return *c.KalmanVelocityNoise
}

// GetKalmanMaxSamples returns the kalman_max_samples value or the default.
func (c *TuningConfig) GetKalmanMaxSamples() int {
	if c.KalmanMaxSamples == nil {
		return 100
	}
	return *c.KalmanMaxSamples
}

// GetKalmanInitialVariance returns the kalman_initial_variance value or the default.
func (c *TuningConfig) GetKalmanInitialVariance() float64 {
	if c.KalmanInitialVariance == nil {
		return 1e6
	}
	return *c.KalmanInitialVariance
}

// GetKalmanBeamBase returns the kalman_beam_base value or the default.
func (c *TuningConfig) GetKalmanBeamBase() float64 {
	if c.KalmanBeamBase == nil {
		return 25.0
	}
	return *c.KalmanBeamBase
}

// GetSearchInitialHeading returns the search_initial_heading value or the default.
func (c *TuningConfig) GetSearchInitialHeading() float64 {
	if c.SearchInitialHeading == nil {
		return math.Pi / 2
	}
	return *c.SearchInitialHeading
}

// GetSearchInitialWidth returns the search_initial_width value or the default.
func (c *TuningConfig) GetSearchInitialWidth() float64 {
	if c.SearchInitialWidth == nil {
		return math.Pi / 2
	}
	return *c.SearchInitialWidth
}

// GetSearchMinWidth returns the search_min_width value or the default.
func (c *TuningConfig) GetSearchMinWidth() float64 {
	if c.SearchMinWidth == nil {
		return 2 * math.Pi / 360
	}
	return *c.SearchMinWidth
}

// GetTrackSwath returns the track_swath value or the default.
func (c *TuningConfig) GetTrackSwath() float64 {
	if c.TrackSwath == nil {
		return 50.0
	}
	return *c.TrackSwath
}

// GetTrackRangeMargin returns the track_range_margin value or the default.
func (c *TuningConfig) GetTrackRangeMargin() float64 {
	if c.TrackRangeMargin == nil {
		return 20.0
	}
	return *c.TrackRangeMargin
}

// GetTrackSlotTicks returns the track_slot_ticks value or the default.
func (c *TuningConfig) GetTrackSlotTicks() int {
	if c.TrackSlotTicks == nil {
		return 1
	}
	return *c.TrackSlotTicks
}

// GetPNGain returns the pn_gain value or the default.
func (c *TuningConfig) GetPNGain() float64 {
	if c.PNGain == nil {
		return 4.0
	}
	return *c.PNGain
}

// GetPNThrust returns the pn_thrust value or the default.
func (c *TuningConfig) GetPNThrust() float64 {
	if c.PNThrust == nil {
		return 100.0
	}
	return *c.PNThrust
}

// GetPNAugmented returns the pn_augmented value or the default.
func (c *TuningConfig) GetPNAugmented() bool {
	if c.PNAugmented == nil {
		return false
	}
	return *c.PNAugmented
}

// GetFinalApproachDistance returns the final_approach_distance value or the default.
func (c *TuningConfig) GetFinalApproachDistance() float64 {
	if c.FinalApproachDistance == nil {
		return 400.0
	}
	return *c.FinalApproachDistance
}

// GetBoostActiveTicks returns the boost_active_ticks value or the default.
func (c *TuningConfig) GetBoostActiveTicks() int {
	if c.BoostActiveTicks == nil {
		return 120
	}
	return *c.BoostActiveTicks
}

// GetBoostCooldownTicks returns the boost_cooldown_ticks value or the default.
func (c *TuningConfig) GetBoostCooldownTicks() int {
	if c.BoostCooldownTicks == nil {
		return 600
	}
	return *c.BoostCooldownTicks
}

// GetBoostForwardBonus returns the boost_forward_bonus value or the default.
func (c *TuningConfig) GetBoostForwardBonus() float64 {
	if c.BoostForwardBonus == nil {
		return 100.0
	}
	return *c.BoostForwardBonus
}

// GetFireMissTolerance returns the fire_miss_tolerance value or the default.
func (c *TuningConfig) GetFireMissTolerance() float64 {
	if c.FireMissTolerance == nil {
		return 7.0
	}
	return *c.FireMissTolerance
}
