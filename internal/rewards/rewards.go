package rewards

// Points come from completed fasts. Every 100 points is a level, so a
// fresh user starts at level 1.
const pointsPerLevel = 100

func Level(totalPoints int) int {
	return totalPoints/pointsPerLevel + 1
}

type UserRewards struct {
	TotalPoints int `json:"totalPoints"`
	Level       int `json:"level"`
}
