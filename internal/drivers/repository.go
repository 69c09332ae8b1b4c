package drivers

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
	List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Driver, int, error)
	Get(ctx context.Context, ownerID, id int64) (Driver, error)
	Create(ctx context.Context, driver Driver) (Driver, error)
	Update(ctx context.Context, driver Driver, baseVersion int64) (Driver, error)
	SetAvatar(ctx context.Context, ownerID, id int64, avatarKey string) error
	Delete(ctx context.Context, ownerID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const driverColumns = `id, owner_id, name, phone, avatar_key, status, version, created_at, updated_at`

func scanDriver(row pgx.Row) (Driver, error) {
	var d Driver
	err := row.Scan(&d.ID, &d.OwnerID, &d.Name, &d.Phone, &d.AvatarKey, &d.Status, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *repository) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Driver, int, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE owner_id = $1`
	countQuery := `SELECT COUNT(*) FROM drivers WHERE owner_id = $1`
	args := []interface{}{ownerID}
	argCount := 1

	if filters.Search != "" {
		argCount++
		ph := strconv.Itoa(argCount)
		clause := ` AND (unaccent(name) ILIKE $` + ph + ` OR phone ILIKE $` + ph + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+shared.FoldSearchTerm(filters.Search)+"%")
	}
	if filters.Status != "" {
		argCount++
		clause := ` AND status = $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Status)
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

	var out []Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, ownerID, id int64) (Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE owner_id = $1 AND id = $2`
	d, err := scanDriver(r.db.QueryRow(ctx, query, ownerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Driver{}, httpx.ErrNotFound
	}
	return d, err
}

func (r *repository) Create(ctx context.Context, driver Driver) (Driver, error) {
	query := `
		INSERT INTO drivers (owner_id, name, phone, avatar_key, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, '', $4, 1, NOW(), NOW())
		RETURNING ` + driverColumns
	return scanDriver(r.db.QueryRow(ctx, query, driver.OwnerID, driver.Name, driver.Phone, driver.Status))
}

func (r *repository) Update(ctx context.Context, driver Driver, baseVersion int64) (Driver, error) {
	query := `
		UPDATE drivers
		SET name = $1, phone = $2, status = $3, version = version + 1, updated_at = NOW()
		WHERE owner_id = $4 AND id = $5 AND version = $6
		RETURNING ` + driverColumns
	updated, err := scanDriver(r.db.QueryRow(ctx, query,
		driver.Name, driver.Phone, driver.Status, driver.OwnerID, driver.ID, baseVersion))
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := r.Get(ctx, driver.OwnerID, driver.ID)
		if getErr != nil {
			return Driver{}, getErr
		}
		return current, httpx.ErrStaleVersion
	}
	return updated, err
}

// SetAvatar stores the object key without bumping the row version: the avatar
// is not part of the edit form the version token protects.
func (r *repository) SetAvatar(ctx context.Context, ownerID, id int64, avatarKey string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE drivers SET avatar_key = $1, updated_at = NOW() WHERE owner_id = $2 AND id = $3`,
		avatarKey, ownerID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM drivers WHERE owner_id = $1 AND id = $2`, ownerID, id)
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
	case "status":
		return "status " + dir
	case "created_at":
		return "created_at " + dir
	default:
		return "name " + dir
	}
}
