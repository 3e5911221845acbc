// Package config loads the tuning parameters for the analysis engine and
// the feedback subsystem from a canonical JSON defaults file. Fields are
// pointer-typed so partial config files are safe: anything omitted falls
// back to the compiled-in default in its Get* accessor.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root tuning configuration. All thresholds consumed by
// the analyzers and the feedback manager hydrate from here at construction
// time; there is no global mutable configuration.
type TuningConfig struct {
	// Engine params
	MinVisibility       *float64 `json:"min_visibility,omitempty"`
	SmoothingAlpha      *float64 `json:"smoothing_alpha,omitempty"`
	PhaseMinDwellFrames *int     `json:"phase_min_dwell_frames,omitempty"`
	SymmetryMin         *float64 `json:"symmetry_min,omitempty"`

	// Squat phase + criteria params
	SquatPhaseDownDeg    *float64 `json:"squat_phase_down_deg,omitempty"`
	SquatPhaseBottomDeg  *float64 `json:"squat_phase_bottom_deg,omitempty"`
	SquatPhaseTopDeg     *float64 `json:"squat_phase_top_deg,omitempty"`
	SquatDepthTargetDeg  *float64 `json:"squat_depth_target_deg,omitempty"`
	SquatTrunkLeanMaxDeg *float64 `json:"squat_trunk_lean_max_deg,omitempty"`
	SquatKneeOverToeTol  *float64 `json:"squat_knee_over_toe_tolerance,omitempty"`
	SquatHeelLiftTol     *float64 `json:"squat_heel_lift_tolerance,omitempty"`

	// Bicep curl params
	CurlPhaseDownDeg    *float64 `json:"curl_phase_down_deg,omitempty"`
	CurlPhaseBottomDeg  *float64 `json:"curl_phase_bottom_deg,omitempty"`
	CurlPhaseTopDeg     *float64 `json:"curl_phase_top_deg,omitempty"`
	CurlROMTargetDeg    *float64 `json:"curl_rom_target_deg,omitempty"`
	CurlElbowDriftTol   *float64 `json:"curl_elbow_drift_tolerance,omitempty"`
	CurlShoulderRiseTol *float64 `json:"curl_shoulder_rise_tolerance,omitempty"`
	CurlMaxVelocityDps  *float64 `json:"curl_max_velocity_dps,omitempty"`

	// Lateral raise params
	RaisePhaseDownDeg   *float64 `json:"raise_phase_down_deg,omitempty"`
	RaisePhaseBottomDeg *float64 `json:"raise_phase_bottom_deg,omitempty"`
	RaisePhaseTopDeg    *float64 `json:"raise_phase_top_deg,omitempty"`
	RaiseMinDeg         *float64 `json:"raise_min_deg,omitempty"`
	RaiseMaxDeg         *float64 `json:"raise_max_deg,omitempty"`
	RaiseElbowMinDeg    *float64 `json:"raise_elbow_min_deg,omitempty"`
	RaiseTorsoSwayTol   *float64 `json:"raise_torso_sway_tolerance,omitempty"`
	RaiseShrugTol       *float64 `json:"raise_shrug_tolerance,omitempty"`

	// Shoulder press params
	PressPhaseDownDeg    *float64 `json:"press_phase_down_deg,omitempty"`
	PressPhaseBottomDeg  *float64 `json:"press_phase_bottom_deg,omitempty"`
	PressPhaseTopDeg     *float64 `json:"press_phase_top_deg,omitempty"`
	PressLockoutMinDeg   *float64 `json:"press_lockout_min_deg,omitempty"`
	PressPathTol         *float64 `json:"press_path_tolerance,omitempty"`
	PressWristBalanceTol *float64 `json:"press_wrist_balance_tolerance,omitempty"`
	PressBackArchMaxDeg  *float64 `json:"press_back_arch_max_deg,omitempty"`

	// Push-up params
	PushupPhaseDownDeg   *float64 `json:"pushup_phase_down_deg,omitempty"`
	PushupPhaseBottomDeg *float64 `json:"pushup_phase_bottom_deg,omitempty"`
	PushupPhaseTopDeg    *float64 `json:"pushup_phase_top_deg,omitempty"`
	PushupDepthTargetDeg *float64 `json:"pushup_depth_target_deg,omitempty"`
	PushupBodyLineMinDeg *float64 `json:"pushup_body_line_min_deg,omitempty"`
	PushupNeckMinDeg     *float64 `json:"pushup_neck_min_deg,omitempty"`

	// Feedback policy params
	VoiceEnabled     *bool    `json:"voice_enabled,omitempty"`
	VisualEnabled    *bool    `json:"visual_enabled,omitempty"`
	VoiceMinPriority *string  `json:"voice_min_priority,omitempty"`
	VoiceQueueSize   *int     `json:"voice_queue_size,omitempty"`
	VoiceMinGap      *string  `json:"voice_min_gap,omitempty"`    // duration string like "3s"
	VoiceRepeatGap   *string  `json:"voice_repeat_gap,omitempty"` // duration string like "10s"
	DrainInterval    *string  `json:"drain_interval,omitempty"`   // duration string like "500ms"
	SpeechRate       *float64 `json:"speech_rate,omitempty"`
	SpeechVolume     *float64 `json:"speech_volume,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must
// have a .json extension and be under 1MB. Fields omitted from the JSON
// retain their compiled-in defaults, so partial configs are safe.
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

// MustLoadDefaultConfig loads the canonical tuning defaults from
// DefaultConfigPath, searching upward from the current directory. Panics if
// the file cannot be loaded; intended for test setup and binaries that have
// already validated config availability.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/engine/geom/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that configured values are in range.
func (c *TuningConfig) Validate() error {
	if c.MinVisibility != nil {
		if *c.MinVisibility < 0 || *c.MinVisibility > 1 {
			return fmt.Errorf("min_visibility must be between 0 and 1, got %f", *c.MinVisibility)
		}
	}
	if c.SmoothingAlpha != nil {
		if *c.SmoothingAlpha <= 0 || *c.SmoothingAlpha > 1 {
			return fmt.Errorf("smoothing_alpha must be in (0,1], got %f", *c.SmoothingAlpha)
		}
	}
	if c.PhaseMinDwellFrames != nil && *c.PhaseMinDwellFrames < 0 {
		return fmt.Errorf("phase_min_dwell_frames must be non-negative, got %d", *c.PhaseMinDwellFrames)
	}
	if c.SymmetryMin != nil {
		if *c.SymmetryMin < 0 || *c.SymmetryMin > 1 {
			return fmt.Errorf("symmetry_min must be between 0 and 1, got %f", *c.SymmetryMin)
		}
	}
	if c.VoiceQueueSize != nil && *c.VoiceQueueSize < 1 {
		return fmt.Errorf("voice_queue_size must be positive, got %d", *c.VoiceQueueSize)
	}
	if c.VoiceMinPriority != nil {
		switch *c.VoiceMinPriority {
		case "critical", "high", "medium", "low":
		default:
			return fmt.Errorf("voice_min_priority must be one of critical/high/medium/low, got %q", *c.VoiceMinPriority)
		}
	}
	for name, v := range map[string]*string{
		"voice_min_gap":    c.VoiceMinGap,
		"voice_repeat_gap": c.VoiceRepeatGap,
		"drain_interval":   c.DrainInterval,
	} {
		if v != nil && *v != "" {
			if _, err := time.ParseDuration(*v); err != nil {
				return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
			}
		}
	}
	if c.SpeechRate != nil && (*c.SpeechRate <= 0 || *c.SpeechRate > 2) {
		return fmt.Errorf("speech_rate must be in (0,2], got %f", *c.SpeechRate)
	}
	if c.SpeechVolume != nil && (*c.SpeechVolume < 0 || *c.SpeechVolume > 1) {
		return fmt.Errorf("speech_volume must be between 0 and 1, got %f", *c.SpeechVolume)
	}
	return nil
}

func getFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func getInt(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func getBool(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func getDuration(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}

// Engine accessors.

// GetMinVisibility returns the per-landmark visibility threshold below which
// a landmark is treated as missing.
func (c *TuningConfig) GetMinVisibility() float64 { return getFloat(c.MinVisibility, 0.5) }

// GetSmoothingAlpha returns the EMA alpha for joint angle smoothing.
func (c *TuningConfig) GetSmoothingAlpha() float64 { return getFloat(c.SmoothingAlpha, 0.3) }

// GetPhaseMinDwellFrames returns the minimum frames a phase must hold
// before a transition out of it is accepted.
func (c *TuningConfig) GetPhaseMinDwellFrames() int { return getInt(c.PhaseMinDwellFrames, 2) }

// GetSymmetryMin returns the symmetry score below which a left/right
// imbalance issue is raised.
func (c *TuningConfig) GetSymmetryMin() float64 { return getFloat(c.SymmetryMin, 0.85) }

// Squat accessors.

func (c *TuningConfig) GetSquatPhaseDownDeg() float64   { return getFloat(c.SquatPhaseDownDeg, 150) }
func (c *TuningConfig) GetSquatPhaseBottomDeg() float64 { return getFloat(c.SquatPhaseBottomDeg, 100) }
func (c *TuningConfig) GetSquatPhaseTopDeg() float64    { return getFloat(c.SquatPhaseTopDeg, 160) }

// GetSquatDepthTargetDeg returns the knee angle at or below which squat
// depth scores full marks.
func (c *TuningConfig) GetSquatDepthTargetDeg() float64  { return getFloat(c.SquatDepthTargetDeg, 95) }
func (c *TuningConfig) GetSquatTrunkLeanMaxDeg() float64 { return getFloat(c.SquatTrunkLeanMaxDeg, 40) }
func (c *TuningConfig) GetSquatKneeOverToeTol() float64  { return getFloat(c.SquatKneeOverToeTol, 0.04) }
func (c *TuningConfig) GetSquatHeelLiftTol() float64     { return getFloat(c.SquatHeelLiftTol, 0.03) }

// Bicep curl accessors.

func (c *TuningConfig) GetCurlPhaseDownDeg() float64    { return getFloat(c.CurlPhaseDownDeg, 150) }
func (c *TuningConfig) GetCurlPhaseBottomDeg() float64  { return getFloat(c.CurlPhaseBottomDeg, 60) }
func (c *TuningConfig) GetCurlPhaseTopDeg() float64     { return getFloat(c.CurlPhaseTopDeg, 160) }
func (c *TuningConfig) GetCurlROMTargetDeg() float64    { return getFloat(c.CurlROMTargetDeg, 55) }
func (c *TuningConfig) GetCurlElbowDriftTol() float64   { return getFloat(c.CurlElbowDriftTol, 0.05) }
func (c *TuningConfig) GetCurlShoulderRiseTol() float64 { return getFloat(c.CurlShoulderRiseTol, 0.03) }

// GetCurlMaxVelocityDps returns the elbow angular speed above which a rep
// is flagged as momentum-assisted.
func (c *TuningConfig) GetCurlMaxVelocityDps() float64 { return getFloat(c.CurlMaxVelocityDps, 300) }

// Lateral raise accessors.

func (c *TuningConfig) GetRaisePhaseDownDeg() float64   { return getFloat(c.RaisePhaseDownDeg, 30) }
func (c *TuningConfig) GetRaisePhaseBottomDeg() float64 { return getFloat(c.RaisePhaseBottomDeg, 70) }
func (c *TuningConfig) GetRaisePhaseTopDeg() float64    { return getFloat(c.RaisePhaseTopDeg, 25) }
func (c *TuningConfig) GetRaiseMinDeg() float64         { return getFloat(c.RaiseMinDeg, 65) }
func (c *TuningConfig) GetRaiseMaxDeg() float64         { return getFloat(c.RaiseMaxDeg, 100) }
func (c *TuningConfig) GetRaiseElbowMinDeg() float64    { return getFloat(c.RaiseElbowMinDeg, 150) }
func (c *TuningConfig) GetRaiseTorsoSwayTol() float64   { return getFloat(c.RaiseTorsoSwayTol, 0.04) }
func (c *TuningConfig) GetRaiseShrugTol() float64       { return getFloat(c.RaiseShrugTol, 0.03) }

// Shoulder press accessors.

func (c *TuningConfig) GetPressPhaseDownDeg() float64   { return getFloat(c.PressPhaseDownDeg, 100) }
func (c *TuningConfig) GetPressPhaseBottomDeg() float64 { return getFloat(c.PressPhaseBottomDeg, 155) }
func (c *TuningConfig) GetPressPhaseTopDeg() float64    { return getFloat(c.PressPhaseTopDeg, 95) }
func (c *TuningConfig) GetPressLockoutMinDeg() float64  { return getFloat(c.PressLockoutMinDeg, 160) }
func (c *TuningConfig) GetPressPathTol() float64        { return getFloat(c.PressPathTol, 0.06) }
func (c *TuningConfig) GetPressWristBalanceTol() float64 {
	return getFloat(c.PressWristBalanceTol, 0.04)
}
func (c *TuningConfig) GetPressBackArchMaxDeg() float64 { return getFloat(c.PressBackArchMaxDeg, 12) }

// Push-up accessors.

func (c *TuningConfig) GetPushupPhaseDownDeg() float64 { return getFloat(c.PushupPhaseDownDeg, 150) }
func (c *TuningConfig) GetPushupPhaseBottomDeg() float64 {
	return getFloat(c.PushupPhaseBottomDeg, 100)
}
func (c *TuningConfig) GetPushupPhaseTopDeg() float64    { return getFloat(c.PushupPhaseTopDeg, 160) }
func (c *TuningConfig) GetPushupDepthTargetDeg() float64 { return getFloat(c.PushupDepthTargetDeg, 95) }
func (c *TuningConfig) GetPushupBodyLineMinDeg() float64 {
	return getFloat(c.PushupBodyLineMinDeg, 160)
}
func (c *TuningConfig) GetPushupNeckMinDeg() float64 { return getFloat(c.PushupNeckMinDeg, 140) }

// Feedback accessors.

func (c *TuningConfig) GetVoiceEnabled() bool    { return getBool(c.VoiceEnabled, true) }
func (c *TuningConfig) GetVisualEnabled() bool   { return getBool(c.VisualEnabled, true) }
func (c *TuningConfig) GetVoiceQueueSize() int   { return getInt(c.VoiceQueueSize, 8) }
func (c *TuningConfig) GetSpeechRate() float64   { return getFloat(c.SpeechRate, 1.0) }
func (c *TuningConfig) GetSpeechVolume() float64 { return getFloat(c.SpeechVolume, 1.0) }

// GetVoiceMinPriority returns the minimum priority an issue must carry to
// be considered for voice delivery.
func (c *TuningConfig) GetVoiceMinPriority() string {
	if c.VoiceMinPriority == nil || *c.VoiceMinPriority == "" {
		return "medium"
	}
	return *c.VoiceMinPriority
}

// GetVoiceMinGap returns the minimum gap between any two spoken messages.
func (c *TuningConfig) GetVoiceMinGap() time.Duration {
	return getDuration(c.VoiceMinGap, 3*time.Second)
}

// GetVoiceRepeatGap returns the window within which the same issue type is
// not voiced twice.
func (c *TuningConfig) GetVoiceRepeatGap() time.Duration {
	return getDuration(c.VoiceRepeatGap, 10*time.Second)
}

// GetDrainInterval returns the feedback queue drain tick interval.
func (c *TuningConfig) GetDrainInterval() time.Duration {
	return getDuration(c.DrainInterval, 500*time.Millisecond)
}
