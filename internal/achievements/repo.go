package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fastwell/backend/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Unlock records an achievement for the user. Unlocking the same
// achievement twice is a no-op, the first unlock time wins.
func (r *Repo) Unlock(ctx context.Context, userID, achievementID string, unlockedAt time.Time) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.unlock")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("achievement.id", achievementID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO user_achievement (user_id, achievement_id, unlocked_at)
				VALUES ($1, $2, $3)
			ON CONFLICT (user_id, achievement_id) DO NOTHING;`,
		userID, achievementID, unlockedAt,
	)
	if err != nil {
		return fmt.Errorf("unlock achievement: %w", err)
	}

	return nil
}

// Unlocked returns the user's unlocked achievement ids with their
// unlock times.
func (r *Repo) Unlocked(ctx context.Context, userID string) (_ map[string]time.Time, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.achievements.unlocked")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT achievement_id, unlocked_at
			FROM user_achievement
			WHERE user_id = $1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocked := make(map[string]time.Time)
	for rows.Next() {
		var achievementID string
		var unlockedAt time.Time
		if err := rows.Scan(&achievementID, &unlockedAt); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		unlocked[achievementID] = unlockedAt
	}

	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	return unlocked, nil
}
