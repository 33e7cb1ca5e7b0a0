package fasting

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

// Upsert writes a session to the store, insert or update by session id.
// Safe to call repeatedly with the same session.
func (r *Repo) Upsert(ctx context.Context, session Session) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fasting.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("session.id", session.ID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO fasting_session
				(id, user_id, plan_type, start_time, end_time, duration_seconds, completed, total_paused_seconds, mood, energy, notes)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (id) DO UPDATE SET
				end_time = EXCLUDED.end_time,
				completed = EXCLUDED.completed,
				total_paused_seconds = EXCLUDED.total_paused_seconds,
				mood = EXCLUDED.mood,
				energy = EXCLUDED.energy,
				notes = EXCLUDED.notes;`,
		session.ID, session.UserID, session.PlanType, session.StartTime, session.EndTime,
		session.DurationSeconds, session.Completed, session.TotalPausedSeconds,
		session.Mood, session.Energy, session.Notes,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

// ActiveSession returns the most recent session without an end time,
// or ErrNoActiveSession.
func (r *Repo) ActiveSession(ctx context.Context, userID string) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fasting.activeSession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, plan_type, start_time, end_time, duration_seconds, completed, total_paused_seconds, mood, energy, notes
			FROM fasting_session
			WHERE user_id = $1 AND end_time IS NULL
			ORDER BY start_time DESC
			LIMIT 1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	sessions, err := rows2sessions(rows)
	if err != nil {
		return nil, fmt.Errorf("rows to sessions: %w", err)
	}
	if len(sessions) == 0 {
		return nil, ErrNoActiveSession
	}

	return &sessions[0], nil
}

// History returns all finished sessions for the user, newest first.
func (r *Repo) History(ctx context.Context, userID string) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.fasting.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, plan_type, start_time, end_time, duration_seconds, completed, total_paused_seconds, mood, energy, notes
			FROM fasting_session
			WHERE user_id = $1 AND end_time IS NOT NULL
			ORDER BY start_time DESC;`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	sessions, err := rows2sessions(rows)
	if err != nil {
		return nil, fmt.Errorf("rows to sessions: %w", err)
	}

	span.SetAttributes(attribute.Int("sessions.count", len(sessions)))

	return sessions, nil
}

func rows2sessions(rows pgx.Rows) ([]Session, error) {
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var session Session
		if err := rows.Scan(
			&session.ID, &session.UserID, &session.PlanType, &session.StartTime, &session.EndTime,
			&session.DurationSeconds, &session.Completed, &session.TotalPausedSeconds,
			&session.Mood, &session.Energy, &session.Notes,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	return sessions, nil
}
