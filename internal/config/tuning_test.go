package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	// Test that defaults are set via pointers
	if cfg.TickLength == nil || *cfg.TickLength != 1.0/60.0 {
		t.Errorf("Expected TickLength 1/60, got %v", cfg.TickLength)
	}
	if cfg.LeadMaxIterations == nil || *cfg.LeadMaxIterations != 100 {
		t.Errorf("Expected LeadMaxIterations 100, got %v", cfg.LeadMaxIterations)
	}
	if cfg.PNAugmented == nil || *cfg.PNAugmented != false {
		t.Errorf("Expected PNAugmented false, got %v", cfg.PNAugmented)
	}

	// Test getter methods
	if cfg.GetPNGain() != 4.0 {
		t.Errorf("GetPNGain() = %f, want 4.0", cfg.GetPNGain())
	}
	if cfg.GetSanityDisplacementFactor() != 4.0 {
		t.Errorf("GetSanityDisplacementFactor() = %f, want 4.0", cfg.GetSanityDisplacementFactor())
	}
	if cfg.GetKalmanMaxSamples() != 100 {
		t.Errorf("GetKalmanMaxSamples() = %d, want 100", cfg.GetKalmanMaxSamples())
	}
	if cfg.GetSearchInitialWidth() != math.Pi/2 {
		t.Errorf("GetSearchInitialWidth() = %f, want π/2", cfg.GetSearchInitialWidth())
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "tick_length": 0.02,
  "pn_gain": 3.5,
  "pn_augmented": true,
  "kalman_max_samples": 40,
  "track_swath": 80
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetTickLength() != 0.02 {
		t.Errorf("Expected TickLength 0.02, got %f", cfg.GetTickLength())
	}
	if cfg.GetPNGain() != 3.5 {
		t.Errorf("Expected PNGain 3.5, got %f", cfg.GetPNGain())
	}
	if !cfg.GetPNAugmented() {
		t.Error("Expected PNAugmented true")
	}
	if cfg.GetKalmanMaxSamples() != 40 {
		t.Errorf("Expected KalmanMaxSamples 40, got %d", cfg.GetKalmanMaxSamples())
	}
	if cfg.GetTrackSwath() != 80 {
		t.Errorf("Expected TrackSwath 80, got %f", cfg.GetTrackSwath())
	}
	// Untouched fields fall back to defaults
	if cfg.GetFinalApproachDistance() != 400 {
		t.Errorf("Expected default FinalApproachDistance 400, got %f", cfg.GetFinalApproachDistance())
	}
	if cfg.GetBoostCooldownTicks() != 600 {
		t.Errorf("Expected default BoostCooldownTicks 600, got %d", cfg.GetBoostCooldownTicks())
	}
}

func TestLoadTuningConfigMissing(t *testing.T) {
	_, err := LoadTuningConfig("/nonexistent/path/to/config.json")
	if err == nil {
		t.Error("Expected error when loading missing file, got nil")
	}
}

func TestLoadTuningConfigInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.json")

	invalidJSON := `{
  "pn_gain": "invalid"
`
	if err := os.WriteFile(configPath, []byte(invalidJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error when loading invalid JSON, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *TuningConfig
		wantErr bool
	}{
		{
			name:    "valid config",
			cfg:     DefaultTuningConfig(),
			wantErr: false,
		},
		{
			name:    "empty config is valid",
			cfg:     &TuningConfig{},
			wantErr: false,
		},
		{
			name:    "zero tick length",
			cfg:     &TuningConfig{TickLength: ptrFloat64(0)},
			wantErr: true,
		},
		{
			name:    "zero lead iterations",
			cfg:     &TuningConfig{LeadMaxIterations: ptrInt(0)},
			wantErr: true,
		},
		{
			name:    "search width over a full turn",
			cfg:     &TuningConfig{SearchInitialWidth: ptrFloat64(7)},
			wantErr: true,
		},
		{
			name:    "negative min search width",
			cfg:     &TuningConfig{SearchMinWidth: ptrFloat64(-0.1)},
			wantErr: true,
		},
		{
			name:    "empty kalman window",
			cfg:     &TuningConfig{KalmanMaxSamples: ptrInt(0)},
			wantErr: true,
		},
		{
			name: "cooldown shorter than active period",
			cfg: &TuningConfig{
				BoostActiveTicks:   ptrInt(120),
				BoostCooldownTicks: ptrInt(60),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDefaultConfigFile(t *testing.T) {
	cfg, err := LoadTuningConfig("../../config/tuning.defaults.json")
	if err != nil {
		t.Fatalf("Failed to load defaults: %v", err)
	}
	def := DefaultTuningConfig()
	if cfg.GetTickLength() != def.GetTickLength() {
		t.Errorf("tick_length drifted: file %f, built-in %f", cfg.GetTickLength(), def.GetTickLength())
	}
	if cfg.GetKalmanRangeNoise() != def.GetKalmanRangeNoise() {
		t.Errorf("kalman_range_noise drifted: file %f, built-in %f", cfg.GetKalmanRangeNoise(), def.GetKalmanRangeNoise())
	}
	if cfg.GetFireMissTolerance() != def.GetFireMissTolerance() {
		t.Errorf("fire_miss_tolerance drifted: file %f, built-in %f", cfg.GetFireMissTolerance(), def.GetFireMissTolerance())
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if cfg.GetLeadMaxIterations() != 100 {
		t.Errorf("Expected 100, got %d", cfg.GetLeadMaxIterations())
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	_, err := LoadTuningConfig("/some/path/config.yaml")
	if err == nil {
		t.Error("Expected error for non-.json extension, got nil")
	}
}

func TestLoadTuningConfigRejectsLargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "large.json")

	largeData := make([]byte, 2*1024*1024) // 2MB
	if err := os.WriteFile(configPath, largeData, 0644); err != nil {
		t.Fatalf("Failed to write large file: %v", err)
	}

	_, err := LoadTuningConfig(configPath)
	if err == nil {
		t.Error("Expected error for file size > 1MB, got nil")
	}
}
