package weights

import (
	"time"
)

type WeightEntry struct {
	ID        int       `json:"id"`
	UserID    string    `json:"userId"`
	Kilos     float64   `json:"kilos"`
	CreatedAt time.Time `json:"createdAt"`
	Notes     string    `json:"notes,omitempty"`
}

// GoalProgress tells how far the user got from their starting weight
// towards the goal weight, as a percentage clamped to [0, 100].
func GoalProgress(startKilos, currentKilos, goalKilos float64) float64 {
	if startKilos == goalKilos {
		return 100
	}
	progress := (startKilos - currentKilos) / (startKilos - goalKilos) * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
