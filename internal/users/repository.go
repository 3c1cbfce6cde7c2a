package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tradepost/tradepost/internal/access"
)

// ErrNotFound indicates that the requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Repository exposes read access to the user and location directory.
type Repository interface {
	Get(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	ListLocations(ctx context.Context) ([]Location, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*User, error) {
	const query = `
		SELECT id, username, first_name, last_name, email, role, age, created_at
		FROM users
		WHERE id = $1
	`
	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users: get: %w", err)
	}

	locations, err := r.userLocations(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Locations = locations
	return u, nil
}

func (r *repository) List(ctx context.Context) ([]User, error) {
	const query = `
		SELECT id, username, first_name, last_name, email, role, age, created_at
		FROM users
		ORDER BY username
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var result []User
	var ids []int64
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan: %w", err)
		}
		result = append(result, *u)
		ids = append(ids, u.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	byUser, err := r.locationsByUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	attachLocations(result, byUser)
	return result, nil
}

func (r *repository) ListLocations(ctx context.Context) ([]Location, error) {
	const query = `SELECT id, name, lat, lng FROM locations ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("users: list locations: %w", err)
	}
	defer rows.Close()

	var result []Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan location: %w", err)
		}
		result = append(result, loc)
	}
	return result, rows.Err()
}

func (r *repository) userLocations(ctx context.Context, userID int64) ([]Location, error) {
	const query = `
		SELECT l.id, l.name, l.lat, l.lng
		FROM locations l
		JOIN user_locations ul ON ul.location_id = l.id
		WHERE ul.user_id = $1
		ORDER BY l.name
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("users: user locations: %w", err)
	}
	defer rows.Close()

	result := []Location{}
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("users: scan location: %w", err)
		}
		result = append(result, loc)
	}
	return result, rows.Err()
}

// locationsByUsers loads the locations of all given users in one query.
func (r *repository) locationsByUsers(ctx context.Context, userIDs []int64) (map[int64][]Location, error) {
	byUser := make(map[int64][]Location, len(userIDs))
	if len(userIDs) == 0 {
		return byUser, nil
	}
	const query = `
		SELECT ul.user_id, l.id, l.name, l.lat, l.lng
		FROM locations l
		JOIN user_locations ul ON ul.location_id = l.id
		WHERE ul.user_id = ANY($1)
		ORDER BY l.name
	`
	rows, err := r.pool.Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("users: locations by users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID int64
		var loc Location
		var lat, lng pgtype.Float8
		if err := rows.Scan(&userID, &loc.ID, &loc.Name, &lat, &lng); err != nil {
			return nil, fmt.Errorf("users: scan location: %w", err)
		}
		if lat.Valid {
			val := lat.Float64
			loc.Lat = &val
		}
		if lng.Valid {
			val := lng.Float64
			loc.Lng = &val
		}
		byUser[userID] = append(byUser[userID], loc)
	}
	return byUser, rows.Err()
}

// attachLocations assigns every user their loaded locations. Users without
// any get an empty slice so list and show serialize the field the same way.
func attachLocations(users []User, byUser map[int64][]Location) {
	for i := range users {
		if locs, ok := byUser[users[i].ID]; ok {
			users[i].Locations = locs
			continue
		}
		users[i].Locations = []Location{}
	}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var firstName, lastName, email pgtype.Text
	var age pgtype.Int4
	var role string
	var createdAt pgtype.Timestamptz

	if err := row.Scan(&u.ID, &u.Username, &firstName, &lastName, &email, &role, &age, &createdAt); err != nil {
		return nil, err
	}

	parsed, err := access.ParseRole(role)
	if err != nil {
		return nil, err
	}
	u.Role = parsed

	if firstName.Valid {
		u.FirstName = firstName.String
	}
	if lastName.Valid {
		u.LastName = lastName.String
	}
	if email.Valid {
		val := email.String
		u.Email = &val
	}
	if age.Valid {
		val := int(age.Int32)
		u.Age = &val
	}
	if createdAt.Valid {
		u.CreatedAt = createdAt.Time
	}
	return &u, nil
}

func scanLocation(row pgx.Row) (Location, error) {
	var loc Location
	var lat, lng pgtype.Float8
	if err := row.Scan(&loc.ID, &loc.Name, &lat, &lng); err != nil {
		return loc, err
	}
	if lat.Valid {
		val := lat.Float64
		loc.Lat = &val
	}
	if lng.Valid {
		val := lng.Float64
		loc.Lng = &val
	}
	return loc, nil
}
