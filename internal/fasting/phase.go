package fasting

import (
	"fmt"
	"time"
)

const (
	PhaseDigestion    = "Digestion"
	PhaseGlycogen     = "Glycogen"
	PhaseEarlyKetosis = "Early ketosis"
	PhaseAutophagy    = "Autophagy"
	PhaseDeepKetosis  = "Deep ketosis"
)

// PhaseForElapsed maps time spent fasting to the metabolic phase label.
// Boundaries are half-open, so exactly 4h of fasting is already
// glycogen burning, not digestion.
func PhaseForElapsed(elapsed time.Duration) string {
	switch {
	case elapsed < 4*time.Hour:
		return PhaseDigestion
	case elapsed < 12*time.Hour:
		return PhaseGlycogen
	case elapsed < 18*time.Hour:
		return PhaseEarlyKetosis
	case elapsed < 24*time.Hour:
		return PhaseAutophagy
	default:
		return PhaseDeepKetosis
	}
}

// FormatClock renders a second count as HH:MM:SS. The hour field is
// not capped, so a 40 hour fast shows up as 40:00:00.
func FormatClock(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// Progress returns the share of the fast already behind the user,
// as a percentage clamped to [0, 100].
func Progress(durationSeconds, timeRemainingSeconds int) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	elapsed := durationSeconds - timeRemainingSeconds
	progress := float64(elapsed) / float64(durationSeconds) * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
