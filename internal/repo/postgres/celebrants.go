package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seembe/seembe/internal/domain/celebrant"
)

type CelebrantsRepo struct {
	pool *pgxpool.Pool
}

func NewCelebrantsRepo(pool *pgxpool.Pool) *CelebrantsRepo {
	return &CelebrantsRepo{pool: pool}
}

const celebrantColumns = `id, user_id, name, relationship, photo_url, favourite_tags, key_dates, notes, created_at, updated_at`

// key dates live in a JSONB column; tags in a text array.
func scanCelebrant(row pgx.Row) (celebrant.Celebrant, error) {
	var c celebrant.Celebrant
	var keyDates []byte

	err := row.Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Relationship,
		&c.PhotoURL,
		&c.FavouriteTags,
		&keyDates,
		&c.Notes,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return celebrant.Celebrant{}, celebrant.ErrNotFound
		}

		return celebrant.Celebrant{}, err
	}

	if len(keyDates) > 0 {
		if err := json.Unmarshal(keyDates, &c.KeyDates); err != nil {
			return celebrant.Celebrant{}, err
		}
	}

	return c, nil
}

func (r *CelebrantsRepo) Create(ctx context.Context, c celebrant.Celebrant) (celebrant.Celebrant, error) {
	keyDates, err := json.Marshal(c.KeyDates)

	if err != nil {
		return celebrant.Celebrant{}, err
	}

	if c.FavouriteTags == nil {
		c.FavouriteTags = []string{}
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO celebrants (id, user_id, name, relationship, photo_url, favourite_tags, key_dates, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.UserID, c.Name, c.Relationship, c.PhotoURL, c.FavouriteTags, keyDates, c.Notes, c.CreatedAt, c.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return celebrant.Celebrant{}, celebrant.ErrNameTaken
		}

		return celebrant.Celebrant{}, err
	}

	return c, nil
}

func (r *CelebrantsRepo) GetByID(ctx context.Context, id string) (celebrant.Celebrant, error) {
	return scanCelebrant(r.pool.QueryRow(ctx,
		`SELECT `+celebrantColumns+` FROM celebrants WHERE id = $1`, id))
}

func (r *CelebrantsRepo) List(ctx context.Context, filter celebrant.ListFilter) ([]celebrant.Celebrant, int, error) {
	baseQuery := `SELECT ` + celebrantColumns + `, COUNT(*) OVER() AS total FROM celebrants`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.OwnerID != nil {
		conds = append(conds, fmt.Sprintf("user_id = $%d", argsPosition))
		args = append(args, *filter.OwnerID)
		argsPosition++
	}

	if filter.Name != nil {
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", argsPosition))
		args = append(args, "%"+*filter.Name+"%")
		argsPosition++
	}

	if filter.Relationship != nil {
		conds = append(conds, fmt.Sprintf("relationship = $%d", argsPosition))
		args = append(args, *filter.Relationship)
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY name ASC, id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)

	if err != nil {
		return nil, 0, err
	}

	defer rows.Close()

	out := make([]celebrant.Celebrant, 0, filter.Limit)
	total := 0

	for rows.Next() {
		var c celebrant.Celebrant
		var keyDates []byte
		var t int

		err = rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Relationship, &c.PhotoURL, &c.FavouriteTags, &keyDates, &c.Notes, &c.CreatedAt, &c.UpdatedAt, &t)

		if err != nil {
			return nil, 0, err
		}

		if len(keyDates) > 0 {
			if err := json.Unmarshal(keyDates, &c.KeyDates); err != nil {
				return nil, 0, err
			}
		}

		total = t
		out = append(out, c)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, err
	}

	return out, total, nil
}

func (r *CelebrantsRepo) Update(ctx context.Context, id string, req celebrant.UpdateCelebrantRequest) (celebrant.Celebrant, error) {
	keyDates, err := json.Marshal(req.KeyDates)

	if err != nil {
		return celebrant.Celebrant{}, err
	}

	tags := req.FavouriteTags

	if tags == nil {
		tags = []string{}
	}

	updated, err := scanCelebrant(r.pool.QueryRow(ctx,
		`UPDATE celebrants
			SET name = $2,
					relationship = $3,
					photo_url = $4,
					favourite_tags = $5,
					key_dates = $6,
					notes = $7,
					updated_at = NOW()
		WHERE id = $1
		RETURNING `+celebrantColumns,
		id, req.Name, req.Relationship, req.PhotoURL, tags, keyDates, req.Notes,
	))

	if err != nil {
		if isUniqueViolation(err) {
			return celebrant.Celebrant{}, celebrant.ErrNameTaken
		}

		return celebrant.Celebrant{}, err
	}

	return updated, nil
}

func (r *CelebrantsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM celebrants WHERE id = $1`, id)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return celebrant.ErrNotFound
	}

	return nil
}
