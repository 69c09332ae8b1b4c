package tankers

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petroflow/petroflow/internal/platform/httpx"
	"github.com/petroflow/petroflow/internal/shared"
)

type Repository interface {
	List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Tanker, int, error)
	ListAll(ctx context.Context, ownerID int64) ([]Tanker, error)
	Get(ctx context.Context, ownerID, id int64) (Tanker, error)
	Create(ctx context.Context, tanker Tanker) (Tanker, error)
	Update(ctx context.Context, tanker Tanker, baseVersion int64) (Tanker, error)
	UpdateStatus(ctx context.Context, ownerID, id int64, status string, baseVersion int64) (Tanker, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const tankerColumns = `id, owner_id, registration, capacity_liters, status, driver_id, version, created_at, updated_at`

func scanTanker(row pgx.Row) (Tanker, error) {
	var t Tanker
	err := row.Scan(&t.ID, &t.OwnerID, &t.Registration, &t.CapacityLiters, &t.Status, &t.DriverID, &t.Version, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func duplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.ErrDuplicate
	}
	return err
}

func (r *repository) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Tanker, int, error) {
	query := `SELECT ` + tankerColumns + ` FROM tankers WHERE owner_id = $1`
	countQuery := `SELECT COUNT(*) FROM tankers WHERE owner_id = $1`
	args := []interface{}{ownerID}
	argCount := 1

	if filters.Search != "" {
		argCount++
		clause := ` AND registration ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
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

	var out []Tanker
	for rows.Next() {
		t, err := scanTanker(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	return out, total, rows.Err()
}

func (r *repository) ListAll(ctx context.Context, ownerID int64) ([]Tanker, error) {
	query := `SELECT ` + tankerColumns + ` FROM tankers WHERE owner_id = $1 ORDER BY registration ASC`
	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tanker
	for rows.Next() {
		t, err := scanTanker(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, ownerID, id int64) (Tanker, error) {
	query := `SELECT ` + tankerColumns + ` FROM tankers WHERE owner_id = $1 AND id = $2`
	t, err := scanTanker(r.db.QueryRow(ctx, query, ownerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Tanker{}, httpx.ErrNotFound
	}
	return t, err
}

func (r *repository) Create(ctx context.Context, tanker Tanker) (Tanker, error) {
	query := `
		INSERT INTO tankers (owner_id, registration, capacity_liters, status, driver_id, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, NOW(), NOW())
		RETURNING ` + tankerColumns
	created, err := scanTanker(r.db.QueryRow(ctx, query,
		tanker.OwnerID, tanker.Registration, tanker.CapacityLiters, tanker.Status, tanker.DriverID))
	if err != nil {
		return Tanker{}, duplicateErr(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, tanker Tanker, baseVersion int64) (Tanker, error) {
	query := `
		UPDATE tankers
		SET registration = $1, capacity_liters = $2, status = $3, driver_id = $4,
		    version = version + 1, updated_at = NOW()
		WHERE owner_id = $5 AND id = $6 AND version = $7
		RETURNING ` + tankerColumns
	updated, err := scanTanker(r.db.QueryRow(ctx, query,
		tanker.Registration, tanker.CapacityLiters, tanker.Status, tanker.DriverID,
		tanker.OwnerID, tanker.ID, baseVersion))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, getErr := r.Get(ctx, tanker.OwnerID, tanker.ID)
			if getErr != nil {
				return Tanker{}, getErr
			}
			return current, httpx.ErrStaleVersion
		}
		return Tanker{}, duplicateErr(err)
	}
	return updated, nil
}

// UpdateStatus is the single write a board move issues.
func (r *repository) UpdateStatus(ctx context.Context, ownerID, id int64, status string, baseVersion int64) (Tanker, error) {
	query := `
		UPDATE tankers
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE owner_id = $2 AND id = $3 AND version = $4
		RETURNING ` + tankerColumns
	updated, err := scanTanker(r.db.QueryRow(ctx, query, status, ownerID, id, baseVersion))
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := r.Get(ctx, ownerID, id)
		if getErr != nil {
			return Tanker{}, getErr
		}
		return current, httpx.ErrStaleVersion
	}
	return updated, err
}

func (r *repository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tankers WHERE owner_id = $1 AND id = $2`, ownerID, id)
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
	case "registration":
		return "registration " + dir
	case "capacity_liters":
		return "capacity_liters " + dir
	case "status":
		return "status " + dir
	default:
		return "registration " + dir
	}
}
