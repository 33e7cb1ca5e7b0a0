package achievements

import (
	"context"
	"fmt"
	"time"

	"github.com/fastwell/backend/internal/fasting"
	"github.com/fastwell/backend/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
)

type achievementsRepo interface {
	Unlock(ctx context.Context, userID, achievementID string, unlockedAt time.Time) error
	Unlocked(ctx context.Context, userID string) (map[string]time.Time, error)
}

// Evaluator checks a user's fasting history against the achievement
// definitions after every completed fast and persists new unlocks.
type Evaluator struct {
	repo    achievementsRepo
	nowFunc func() time.Time
}

func NewEvaluator(repo achievementsRepo) *Evaluator {
	return &Evaluator{
		repo:    repo,
		nowFunc: time.Now,
	}
}

// EvaluateOnCompletion returns the titles of achievements newly earned
// by the given history. Already unlocked ones stay quiet.
func (e *Evaluator) EvaluateOnCompletion(ctx context.Context, userID string, history []fasting.Session) (_ []string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "achievements.evaluate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	alreadyUnlocked, err := e.repo.Unlocked(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get unlocked achievements: %w", err)
	}

	now := e.nowFunc()
	earned := earnedAchievements(history, now)

	var newlyUnlocked []string
	for _, achievementID := range earned {
		if _, ok := alreadyUnlocked[achievementID]; ok {
			continue
		}
		if err := e.repo.Unlock(ctx, userID, achievementID, now); err != nil {
			log.Errorf("unlock achievement %s for user %s: %s", achievementID, userID, err)
			continue
		}
		def, ok := definition(achievementID)
		if !ok {
			continue
		}
		newlyUnlocked = append(newlyUnlocked, def.Title)
	}

	return newlyUnlocked, nil
}

func earnedAchievements(history []fasting.Session, now time.Time) []string {
	completedCount := 0
	for _, session := range history {
		if session.Completed {
			completedCount++
		}
	}
	streak := fasting.CalculateCurrentStreak(history, now)

	var earned []string
	if completedCount >= 1 {
		earned = append(earned, FirstFast)
	}
	if completedCount >= 10 {
		earned = append(earned, Fasts10)
	}
	if completedCount >= 50 {
		earned = append(earned, Fasts50)
	}
	if streak >= 7 {
		earned = append(earned, Streak7)
	}
	if streak >= 30 {
		earned = append(earned, Streak30)
	}
	return earned
}
