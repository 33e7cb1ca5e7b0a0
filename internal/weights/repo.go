package weights

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastwell/backend/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrEntryNotFound = errors.New("weight entry not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, entry WeightEntry) (_ *WeightEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO weight_entry (user_id, kilos, created_at, notes)
				VALUES ($1, $2, $3, $4)
			RETURNING id;`,
		entry.UserID, entry.Kilos, entry.CreatedAt, entry.Notes,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !rows.Next() {
		return nil, errors.New("unexpected error [no rows next]")
	}

	var id int
	if err := rows.Scan(&id); err != nil {
		return nil, fmt.Errorf("rows scan: %w", err)
	}

	span.SetAttributes(attribute.Int("entry.id", id))

	entry.ID = id
	return &entry, nil
}

func (r *Repo) List(ctx context.Context, userID string, page, size int) (_ []WeightEntry, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM weight_entry WHERE user_id = $1;`,
		userID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, kilos, created_at, notes
			FROM weight_entry
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3;`,
		userID, size, (page-1)*size,
	)
	if err != nil {
		return nil, 0, err
	}

	entries, err := rows2entries(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("rows to entries: %w", err)
	}

	return entries, total, nil
}

// Latest returns the most recent entry, or ErrEntryNotFound when the
// user has none yet.
func (r *Repo) Latest(ctx context.Context, userID string) (_ *WeightEntry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.latest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, kilos, created_at, notes
			FROM weight_entry
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT 1;`,
		userID,
	)
	if err != nil {
		return nil, err
	}

	entries, err := rows2entries(rows)
	if err != nil {
		return nil, fmt.Errorf("rows to entries: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEntryNotFound
	}

	return &entries[0], nil
}

func (r *Repo) Delete(ctx context.Context, userID string, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.weights.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("entry.id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM weight_entry WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}

	return nil
}

func rows2entries(rows pgx.Rows) ([]WeightEntry, error) {
	defer rows.Close()

	var entries []WeightEntry
	for rows.Next() {
		var entry WeightEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Kilos, &entry.CreatedAt, &entry.Notes); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	return entries, nil
}
