package engine

import (
	"fmt"

	"github.com/formsense-data/form.report/internal/config"
)

// ExerciseInfo is display metadata for one exercise type, for UI
// consumption.
type ExerciseInfo struct {
	Type         ExerciseType `json:"type"`
	DisplayName  string       `json:"display_name"`
	Description  string       `json:"description"`
	KeyBodyParts []string     `json:"key_body_parts"`
}

var exerciseInfos = map[ExerciseType]ExerciseInfo{
	ExerciseSquat: {
		Type:         ExerciseSquat,
		DisplayName:  "Squat",
		Description:  "Hip-dominant knee bend to parallel depth and back up",
		KeyBodyParts: []string{"hips", "knees", "ankles", "back"},
	},
	ExerciseBicepCurl: {
		Type:         ExerciseBicepCurl,
		DisplayName:  "Bicep Curl",
		Description:  "Elbow flexion from full extension to full flexion",
		KeyBodyParts: []string{"elbows", "shoulders", "wrists"},
	},
	ExerciseLateralRaise: {
		Type:         ExerciseLateralRaise,
		DisplayName:  "Lateral Raise",
		Description:  "Straight-arm raise to shoulder height",
		KeyBodyParts: []string{"shoulders", "elbows", "torso"},
	},
	ExerciseShoulderPress: {
		Type:         ExerciseShoulderPress,
		DisplayName:  "Shoulder Press",
		Description:  "Overhead press from the rack position to lockout",
		KeyBodyParts: []string{"shoulders", "elbows", "lower back"},
	},
	ExercisePushUp: {
		Type:         ExercisePushUp,
		DisplayName:  "Push-Up",
		Description:  "Plank-position press with a straight body line",
		KeyBodyParts: []string{"chest", "arms", "core"},
	},
}

// NewAnalyzer builds a configured analyzer for the given exercise type.
// An unrecognised type is a programming error and returns an error rather
// than silently defaulting.
func NewAnalyzer(exercise ExerciseType, cfg *config.TuningConfig) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.EmptyTuningConfig()
	}
	var spec exerciseSpec
	switch exercise {
	case ExerciseSquat:
		spec = newSquatSpec(cfg)
	case ExerciseBicepCurl:
		spec = newBicepCurlSpec(cfg)
	case ExerciseLateralRaise:
		spec = newLateralRaiseSpec(cfg)
	case ExerciseShoulderPress:
		spec = newShoulderPressSpec(cfg)
	case ExercisePushUp:
		spec = newPushUpSpec(cfg)
	default:
		return nil, fmt.Errorf("unknown exercise type %q", exercise)
	}
	return newAnalyzer(spec, cfg), nil
}

// Info returns display metadata for an exercise type.
func Info(exercise ExerciseType) (ExerciseInfo, error) {
	info, ok := exerciseInfos[exercise]
	if !ok {
		return ExerciseInfo{}, fmt.Errorf("unknown exercise type %q", exercise)
	}
	return info, nil
}

// ParseExerciseType validates an exercise tag from external input.
func ParseExerciseType(s string) (ExerciseType, error) {
	et := ExerciseType(s)
	if _, ok := exerciseInfos[et]; !ok {
		return "", fmt.Errorf("unknown exercise type %q", s)
	}
	return et, nil
}
