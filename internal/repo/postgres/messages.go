package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seembe/seembe/internal/domain/message"
)

type MessagesRepo struct {
	pool *pgxpool.Pool
}

func NewMessagesRepo(pool *pgxpool.Pool) *MessagesRepo {
	return &MessagesRepo{pool: pool}
}

const messageColumns = `id, user_id, event_id, content, created_at, updated_at`

func scanMessage(row pgx.Row) (message.Message, error) {
	var m message.Message

	err := row.Scan(&m.ID, &m.UserID, &m.EventID, &m.Content, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return message.Message{}, message.ErrNotFound
		}

		return message.Message{}, err
	}

	return m, nil
}

func (r *MessagesRepo) Create(ctx context.Context, m message.Message) (message.Message, error) {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, user_id, event_id, content, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		m.ID, m.UserID, m.EventID, m.Content, m.CreatedAt, m.UpdatedAt,
	)

	if err != nil {
		return message.Message{}, err
	}

	return m, nil
}

func (r *MessagesRepo) GetByID(ctx context.Context, id string) (message.Message, error) {
	return scanMessage(r.pool.QueryRow(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id))
}

func (r *MessagesRepo) ListByEvent(ctx context.Context, eventID string) ([]message.Message, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageColumns+` FROM messages WHERE event_id = $1 ORDER BY created_at ASC, id ASC`, eventID)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	out := make([]message.Message, 0)

	for rows.Next() {
		var m message.Message

		err = rows.Scan(&m.ID, &m.UserID, &m.EventID, &m.Content, &m.CreatedAt, &m.UpdatedAt)

		if err != nil {
			return nil, err
		}

		out = append(out, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *MessagesRepo) Update(ctx context.Context, id, content string) (message.Message, error) {
	return scanMessage(r.pool.QueryRow(ctx,
		`UPDATE messages SET content = $2, updated_at = NOW() WHERE id = $1 RETURNING `+messageColumns,
		id, content,
	))
}

func (r *MessagesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return message.ErrNotFound
	}

	return nil
}
