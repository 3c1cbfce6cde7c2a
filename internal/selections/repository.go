package selections

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepost/tradepost/internal/platform/db"
)

// ErrNotFound indicates that the requested selection does not exist.
var ErrNotFound = errors.New("selection not found")

// ErrInvalidReference indicates that an item points at a listing that does
// not exist.
var ErrInvalidReference = errors.New("selection references an unknown listing")

// Repository encapsulates DB operations for selections.
type Repository interface {
	Get(ctx context.Context, id int64) (*Selection, error)
	OwnerName(ctx context.Context, ownerID int64) (string, error)
	List(ctx context.Context) ([]Summary, error)
	Create(ctx context.Context, s Selection) (int64, error)
	Update(ctx context.Context, id int64, name *string, items *[]int64) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*Selection, error) {
	var s Selection
	err := r.pool.QueryRow(ctx, `SELECT id, name, owner_id FROM selections WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("selections: get: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT listing_id FROM selection_items WHERE selection_id = $1 ORDER BY listing_id`, id)
	if err != nil {
		return nil, fmt.Errorf("selections: items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var listingID int64
		if err := rows.Scan(&listingID); err != nil {
			return nil, fmt.Errorf("selections: scan item: %w", err)
		}
		s.Items = append(s.Items, listingID)
	}
	return &s, rows.Err()
}

func (r *repository) OwnerName(ctx context.Context, ownerID int64) (string, error) {
	var username string
	err := r.pool.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, ownerID).Scan(&username)
	if err != nil {
		return "", fmt.Errorf("selections: owner name: %w", err)
	}
	return username, nil
}

func (r *repository) List(ctx context.Context) ([]Summary, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM selections ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("selections: list: %w", err)
	}
	defer rows.Close()

	var result []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("selections: scan: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *repository) Create(ctx context.Context, s Selection) (int64, error) {
	var id int64
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`INSERT INTO selections (name, owner_id) VALUES ($1, $2) RETURNING id`,
			s.Name, s.OwnerID,
		).Scan(&id); err != nil {
			return err
		}
		return insertItems(ctx, tx, id, s.Items)
	})
	if err != nil {
		return 0, fmt.Errorf("selections: create: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, name *string, items *[]int64) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if name != nil {
			tag, err := tx.Exec(ctx, `UPDATE selections SET name = $2 WHERE id = $1`, id, *name)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return ErrNotFound
			}
		}
		if items != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM selection_items WHERE selection_id = $1`, id); err != nil {
				return err
			}
			return insertItems(ctx, tx, id, *items)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("selections: update: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM selection_items WHERE selection_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM selections WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("selections: delete: %w", err)
	}
	return nil
}

// insertItems writes membership rows with set semantics: duplicates in
// the input collapse to one row.
func insertItems(ctx context.Context, tx pgx.Tx, selectionID int64, items []int64) error {
	seen := make(map[int64]struct{}, len(items))
	for _, listingID := range items {
		if _, ok := seen[listingID]; ok {
			continue
		}
		seen[listingID] = struct{}{}
		if _, err := tx.Exec(ctx,
			`INSERT INTO selection_items (selection_id, listing_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			selectionID, listingID,
		); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23503" {
				return fmt.Errorf("%w: listing %d", ErrInvalidReference, listingID)
			}
			return err
		}
	}
	return nil
}
