package rewards

import (
	"context"
	"errors"
	"fmt"

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

// AddPoints adds to the user's balance and returns the new total.
func (r *Repo) AddPoints(ctx context.Context, userID string, points int) (total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.rewards.addPoints")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("points", points))

	if err := r.db.QueryRow(
		ctx,
		`INSERT INTO user_points (user_id, total_points)
				VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET total_points = user_points.total_points + $2
			RETURNING total_points;`,
		userID, points,
	).Scan(&total); err != nil {
		return 0, fmt.Errorf("add points: %w", err)
	}

	return total, nil
}

// TotalPoints returns the user's balance, zero for users that never
// completed a fast.
func (r *Repo) TotalPoints(ctx context.Context, userID string) (total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.rewards.totalPoints")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`SELECT total_points FROM user_points WHERE user_id = $1;`,
		userID,
	).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}

	return total, nil
}
