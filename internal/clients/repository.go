package clients

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petroflow/petroflow/internal/platform/httpx"
	"github.com/petroflow/petroflow/internal/shared"
)

type Repository interface {
	List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Client, int, error)
	Get(ctx context.Context, ownerID, id int64) (Client, error)
	Create(ctx context.Context, client Client) (Client, error)
	Update(ctx context.Context, client Client, baseVersion int64) (Client, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const clientColumns = `id, owner_id, name, contact, email, phone, address, version, created_at, updated_at`

func scanClient(row pgx.Row) (Client, error) {
	var c Client
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Contact, &c.Email, &c.Phone, &c.Address, &c.Version, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *repository) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Client, int, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = $1`
	countQuery := `SELECT COUNT(*) FROM clients WHERE owner_id = $1`
	args := []interface{}{ownerID}
	argCount := 1

	if filters.Search != "" {
		argCount++
		ph := strconv.Itoa(argCount)
		clause := ` AND (unaccent(name) ILIKE $` + ph + ` OR unaccent(contact) ILIKE $` + ph + ` OR email ILIKE $` + ph + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+shared.FoldSearchTerm(filters.Search)+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += " ORDER BY " + sortOrder(filters.SortBy, filters.SortDir)
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, filters.Limit)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, filters.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, c)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, ownerID, id int64) (Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE owner_id = $1 AND id = $2`
	c, err := scanClient(r.db.QueryRow(ctx, query, ownerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, httpx.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, client Client) (Client, error) {
	query := `
		INSERT INTO clients (owner_id, name, contact, email, phone, address, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, NOW(), NOW())
		RETURNING ` + clientColumns
	return scanClient(r.db.QueryRow(ctx, query, client.OwnerID, client.Name, client.Contact, client.Email, client.Phone, client.Address))
}

func (r *repository) Update(ctx context.Context, client Client, baseVersion int64) (Client, error) {
	query := `
		UPDATE clients
		SET name = $1, contact = $2, email = $3, phone = $4, address = $5,
		    version = version + 1, updated_at = NOW()
		WHERE owner_id = $6 AND id = $7 AND version = $8
		RETURNING ` + clientColumns
	updated, err := scanClient(r.db.QueryRow(ctx, query,
		client.Name, client.Contact, client.Email, client.Phone, client.Address,
		client.OwnerID, client.ID, baseVersion))
	if errors.Is(err, pgx.ErrNoRows) {
		// Distinguish a missing row from a concurrent edit.
		current, getErr := r.Get(ctx, client.OwnerID, client.ID)
		if getErr != nil {
			return Client{}, getErr
		}
		return current, httpx.ErrStaleVersion
	}
	return updated, err
}

func (r *repository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM clients WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func sortOrder(sortBy, sortDir string) string {
	dir := "ASC"
	if sortDir == "desc" {
		dir = "DESC"
	}
	switch sortBy {
	case "name":
		return "name " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
