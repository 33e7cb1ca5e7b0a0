package achievements

import (
	"time"
)

const (
	FirstFast = "first_fast"
	Streak7   = "streak_7"
	Streak30  = "streak_30"
	Fasts10   = "fasts_10"
	Fasts50   = "fasts_50"
)

type Definition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Definitions in unlock-difficulty order, the way the client lists them.
var Definitions = []Definition{
	{ID: FirstFast, Title: "First Fast", Description: "Complete your first fast"},
	{ID: Fasts10, Title: "Ten Strong", Description: "Complete 10 fasts"},
	{ID: Streak7, Title: "Week Warrior", Description: "Keep a 7 day fasting streak"},
	{ID: Fasts50, Title: "Half Century", Description: "Complete 50 fasts"},
	{ID: Streak30, Title: "Iron Month", Description: "Keep a 30 day fasting streak"},
}

func definition(id string) (Definition, bool) {
	for _, def := range Definitions {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

type Achievement struct {
	Definition
	UnlockedAt time.Time `json:"unlockedAt"`
}
