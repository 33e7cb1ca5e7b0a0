package fasting

import (
	"time"
)

// Session is a single fasting attempt, active or finished.
// An active session has a nil EndTime; a finished one carries the
// Completed flag telling natural completion apart from a manual stop.
type Session struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	PlanType           string     `json:"planType"`
	StartTime          time.Time  `json:"startTime"`
	EndTime            *time.Time `json:"endTime,omitempty"`
	DurationSeconds    int        `json:"durationSeconds"`
	Completed          bool       `json:"completed"`
	TotalPausedSeconds int        `json:"totalPausedSeconds"`
	Mood               string     `json:"mood,omitempty"`
	Energy             int        `json:"energy,omitempty"`
	Notes              string     `json:"notes,omitempty"`
}

// IsActive reports whether the session is still running.
func (s *Session) IsActive() bool {
	return s.EndTime == nil
}

// DurationHours is the target duration expressed in hours.
func (s *Session) DurationHours() float64 {
	return float64(s.DurationSeconds) / 3600
}

const (
	PlanEasy     = "12:12"
	PlanClassic  = "16:8"
	PlanExtended = "18:6"
	PlanFullDay  = "24:0"

	defaultPlanPoints = 50
)

var planPoints = map[string]int{
	PlanEasy:    20,
	PlanClassic: 50,
	PlanFullDay: 150,
}

var planDurationSeconds = map[string]int{
	PlanEasy:     12 * 3600,
	PlanClassic:  16 * 3600,
	PlanExtended: 18 * 3600,
	PlanFullDay:  24 * 3600,
}

// PointsForPlan returns the reward points granted when a fast of the
// given plan completes. Unknown plans fall back to the classic reward.
func PointsForPlan(planType string) int {
	if points, ok := planPoints[planType]; ok {
		return points
	}
	return defaultPlanPoints
}

// DurationForPlan returns the preset duration for a known plan,
// or false when the plan has no preset and the client must send
// an explicit duration.
func DurationForPlan(planType string) (int, bool) {
	seconds, ok := planDurationSeconds[planType]
	return seconds, ok
}
