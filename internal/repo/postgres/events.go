package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seembe/seembe/internal/domain/event"
)

type EventsRepo struct {
	pool *pgxpool.Pool
}

func NewEventsRepo(pool *pgxpool.Pool) *EventsRepo {
	return &EventsRepo{pool: pool}
}

const eventColumns = `id, user_id, celebrant_id, title, date, status, remind_before_days, reminded_at, created_at, updated_at`

func scanEvent(row pgx.Row) (event.Event, error) {
	var e event.Event

	err := row.Scan(
		&e.ID,
		&e.UserID,
		&e.CelebrantID,
		&e.Title,
		&e.Date,
		&e.Status,
		&e.RemindBeforeDays,
		&e.RemindedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Event{}, event.ErrNotFound
		}

		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (event.Event, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (id, user_id, celebrant_id, title, date, status, remind_before_days, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		e.ID, e.UserID, e.CelebrantID, e.Title, e.Date, e.Status, e.RemindBeforeDays, e.CreatedAt, e.UpdatedAt,
	)

	if err != nil {
		return event.Event{}, err
	}

	return e, nil
}

func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (r *EventsRepo) List(ctx context.Context, filter event.ListFilter) ([]event.Event, int, error) {
	baseQuery := `SELECT ` + eventColumns + `, COUNT(*) OVER() AS total FROM events`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.OwnerID != nil {
		conds = append(conds, fmt.Sprintf("user_id = $%d", argsPosition))
		args = append(args, *filter.OwnerID)
		argsPosition++
	}

	if filter.CelebrantID != nil {
		conds = append(conds, fmt.Sprintf("celebrant_id = $%d", argsPosition))
		args = append(args, *filter.CelebrantID)
		argsPosition++
	}

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPosition))
		args = append(args, *filter.Status)
		argsPosition++
	}

	if filter.From != nil {
		conds = append(conds, fmt.Sprintf("date >= $%d", argsPosition))
		args = append(args, *filter.From)
		argsPosition++
	}

	if filter.To != nil {
		conds = append(conds, fmt.Sprintf("date <= $%d", argsPosition))
		args = append(args, *filter.To)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY date ASC, id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]event.Event, 0, filter.Limit)
	total := 0

	for rows.Next() {
		var e event.Event
		var t int

		err = rows.Scan(&e.ID, &e.UserID, &e.CelebrantID, &e.Title, &e.Date, &e.Status, &e.RemindBeforeDays, &e.RemindedAt, &e.CreatedAt, &e.UpdatedAt, &t)

		if err != nil {
			return nil, 0, err
		}

		total = t
		out = append(out, e)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *EventsRepo) Update(ctx context.Context, id string, req event.UpdateEventRequest) (event.Event, error) {
	status := req.Status

	if status == "" {
		status = event.StatusUpcoming
	}

	return scanEvent(r.pool.QueryRow(ctx,
		`UPDATE events
			SET title = $2,
					date = $3,
					status = $4,
					remind_before_days = $5,
					updated_at = NOW()
		WHERE id = $1
		RETURNING `+eventColumns,
		id, req.Title, req.Date, status, req.RemindBeforeDays,
	))
}

func (r *EventsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return event.ErrNotFound
	}

	return nil
}

// CountByCelebrant backs the "cannot delete a celebrant with events" rule.
func (r *EventsRepo) CountByCelebrant(ctx context.Context, celebrantID string) (int, error) {
	var n int

	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM events WHERE celebrant_id = $1`, celebrantID).Scan(&n)

	if err != nil {
		return 0, err
	}

	return n, nil
}

// DueReminders returns upcoming events whose reminder window has opened and
// which have not been reminded yet. The window stays open until a full day
// past the event, so a zero lead time still fires on the day of the event
// instead of requiring a poll to land on the exact event instant.
func (r *EventsRepo) DueReminders(ctx context.Context, now time.Time, limit int) ([]event.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+`
		FROM events
		WHERE reminded_at IS NULL
			AND status = $1
			AND date - (remind_before_days * INTERVAL '1 day') <= $2
			AND date >= $2 - INTERVAL '1 day'
		ORDER BY date ASC
		LIMIT $3`,
		event.StatusUpcoming, now, limit,
	)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]event.Event, 0, limit)

	for rows.Next() {
		var e event.Event

		err = rows.Scan(&e.ID, &e.UserID, &e.CelebrantID, &e.Title, &e.Date, &e.Status, &e.RemindBeforeDays, &e.RemindedAt, &e.CreatedAt, &e.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *EventsRepo) MarkReminded(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET reminded_at = $2, updated_at = NOW() WHERE id = $1 AND reminded_at IS NULL`, id, at)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return event.ErrNotFound
	}

	return nil
}
