package listings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested listing does not exist.
var ErrNotFound = errors.New("listing not found")

// ErrInvalidReference indicates that a write points at a row that does not
// exist, such as an unknown category.
var ErrInvalidReference = errors.New("listing references an unknown row")

// Repository encapsulates DB operations for listings. Snapshot is the
// read seam the filter composer runs over: one query, one consistent view.
type Repository interface {
	Get(ctx context.Context, id int64) (*ListingView, error)
	ViewsByIDs(ctx context.Context, ids []int64) ([]ListingView, error)
	Snapshot(ctx context.Context) ([]ListingView, error)
	Create(ctx context.Context, l Listing) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	SetImage(ctx context.Context, id int64, image string) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const viewColumns = `
	a.id, a.name, a.price, a.description, a.is_published, a.image,
	a.author_id, u.username, a.category_id, c.name, a.created_at,
	COALESCE(array_agg(l.name ORDER BY l.name) FILTER (WHERE l.name IS NOT NULL), '{}')
`

const viewJoins = `
	FROM listings a
	JOIN users u ON u.id = a.author_id
	LEFT JOIN categories c ON c.id = a.category_id
	LEFT JOIN user_locations ul ON ul.user_id = u.id
	LEFT JOIN locations l ON l.id = ul.location_id
`

const viewGroup = `GROUP BY a.id, u.username, c.name`

func (r *repository) Get(ctx context.Context, id int64) (*ListingView, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = $1 %s", viewColumns, viewJoins, viewGroup)
	v, err := scanView(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("listings: get: %w", err)
	}
	return v, nil
}

// ViewsByIDs loads the given listings in one query, in id order. Missing
// ids are skipped, not reported.
func (r *repository) ViewsByIDs(ctx context.Context, ids []int64) ([]ListingView, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf("SELECT %s %s WHERE a.id = ANY($1) %s ORDER BY a.id", viewColumns, viewJoins, viewGroup)
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("listings: views by ids: %w", err)
	}
	defer rows.Close()

	var result []ListingView
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("listings: scan: %w", err)
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

// Snapshot loads every listing with author/category identity and author
// locations resolved, in insertion order. Filtering happens in memory so
// the tie-break order stays deterministic.
func (r *repository) Snapshot(ctx context.Context) ([]ListingView, error) {
	query := fmt.Sprintf("SELECT %s %s %s ORDER BY a.id", viewColumns, viewJoins, viewGroup)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listings: snapshot: %w", err)
	}
	defer rows.Close()

	var result []ListingView
	for rows.Next() {
		v, err := scanView(rows)
		if err != nil {
			return nil, fmt.Errorf("listings: scan: %w", err)
		}
		result = append(result, *v)
	}
	return result, rows.Err()
}

func (r *repository) Create(ctx context.Context, l Listing) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO listings (name, price, description, is_published, author_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, l.Name, l.Price, l.Description, l.IsPublished, l.AuthorID, l.CategoryID).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: unknown category", ErrInvalidReference)
		}
		return 0, fmt.Errorf("listings: create: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	query := "UPDATE listings SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "price", "description", "is_published", "category_id"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: unknown category", ErrInvalidReference)
		}
		return fmt.Errorf("listings: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetImage(ctx context.Context, id int64, image string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE listings SET image = $2, updated_at = NOW() WHERE id = $1`, id, image)
	if err != nil {
		return fmt.Errorf("listings: set image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("listings: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanView(row pgx.Row) (*ListingView, error) {
	var v ListingView
	var description, image, category pgtype.Text
	var createdAt pgtype.Timestamptz

	err := row.Scan(
		&v.ID, &v.Name, &v.Price, &description, &v.IsPublished, &image,
		&v.AuthorID, &v.Author, &v.CategoryID, &category, &createdAt,
		&v.AuthorLocations,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		val := description.String
		v.Description = &val
	}
	if image.Valid {
		val := image.String
		v.Image = &val
	}
	if category.Valid {
		v.Category = category.String
	}
	if createdAt.Valid {
		v.CreatedAt = createdAt.Time
	}
	return &v, nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
