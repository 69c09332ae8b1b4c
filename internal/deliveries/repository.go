package deliveries

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petroflow/petroflow/internal/platform/db"
	"github.com/petroflow/petroflow/internal/platform/httpx"
	"github.com/petroflow/petroflow/internal/shared"
)

type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Delivery, int, error)
	ListBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]Delivery, error)
	ListRecent(ctx context.Context, ownerID int64, limit int) ([]Delivery, error)
	Get(ctx context.Context, ownerID, id int64) (Delivery, error)
	OrderQuantity(ctx context.Context, ownerID, orderID int64) (float64, error)
	Create(ctx context.Context, delivery Delivery) (Delivery, error)
	Update(ctx context.Context, delivery Delivery, baseVersion int64) (Delivery, error)
	SetOrderStatus(ctx context.Context, orderID int64, status string) error
	Delete(ctx context.Context, ownerID, id int64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const deliveryColumns = `d.id, d.owner_id, d.order_id, o.number, c.name, d.tanker_id, t.registration,
	d.volume_livre, d.volume_manquant, d.delivery_date, d.status, d.payment, d.version, d.created_at, d.updated_at`

const deliveryFrom = ` FROM deliveries d
	JOIN orders o ON o.id = d.order_id
	LEFT JOIN clients c ON c.id = o.client_id
	LEFT JOIN tankers t ON t.id = d.tanker_id`

func scanDelivery(row pgx.Row) (Delivery, error) {
	var d Delivery
	var clientName, registration *string
	err := row.Scan(&d.ID, &d.OwnerID, &d.OrderID, &d.OrderNumber, &clientName, &d.TankerID, &registration,
		&d.VolumeLivre, &d.VolumeManquant, &d.DeliveryDate, &d.Status, &d.Payment, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	if clientName != nil {
		d.ClientName = *clientName
	}
	if registration != nil {
		d.TankerRegistration = *registration
	}
	return d, err
}

func (r *repository) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Delivery, int, error) {
	where := ` WHERE d.owner_id = $1`
	args := []interface{}{ownerID}
	argCount := 1

	if filters.Search != "" {
		argCount++
		ph := strconv.Itoa(argCount)
		where += ` AND (o.number ILIKE $` + ph + ` OR unaccent(c.name) ILIKE $` + ph + ` OR t.registration ILIKE $` + ph + `)`
		args = append(args, "%"+shared.FoldSearchTerm(filters.Search)+"%")
	}
	if filters.Status != "" {
		argCount++
		where += ` AND d.status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+deliveryFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + deliveryColumns + deliveryFrom + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
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

	var out []Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

func (r *repository) ListBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]Delivery, error) {
	query := `SELECT ` + deliveryColumns + deliveryFrom + `
		WHERE d.owner_id = $1 AND d.delivery_date >= $2 AND d.delivery_date < $3
		ORDER BY d.delivery_date ASC`
	rows, err := r.db.Query(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) ListRecent(ctx context.Context, ownerID int64, limit int) ([]Delivery, error) {
	query := `SELECT ` + deliveryColumns + deliveryFrom + `
		WHERE d.owner_id = $1
		ORDER BY d.delivery_date DESC, d.id DESC
		LIMIT $2`
	rows, err := r.db.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, ownerID, id int64) (Delivery, error) {
	query := `SELECT ` + deliveryColumns + deliveryFrom + ` WHERE d.owner_id = $1 AND d.id = $2`
	d, err := scanDelivery(r.db.QueryRow(ctx, query, ownerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Delivery{}, httpx.ErrNotFound
	}
	return d, err
}

// OrderQuantity reads the linked order's current quantity, the input of the
// delivered-volume derivation.
func (r *repository) OrderQuantity(ctx context.Context, ownerID, orderID int64) (float64, error) {
	var quantity float64
	err := r.db.QueryRow(ctx,
		`SELECT quantity FROM orders WHERE owner_id = $1 AND id = $2`, ownerID, orderID).Scan(&quantity)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: order %d", httpx.ErrValidation, orderID)
	}
	return quantity, err
}

func (r *repository) Create(ctx context.Context, delivery Delivery) (Delivery, error) {
	query := `
		INSERT INTO deliveries (owner_id, order_id, tanker_id, volume_livre, volume_manquant,
			delivery_date, status, payment, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		delivery.OwnerID, delivery.OrderID, delivery.TankerID, delivery.VolumeLivre,
		delivery.VolumeManquant, delivery.DeliveryDate, delivery.Status, delivery.Payment,
	).Scan(&delivery.ID, &delivery.CreatedAt, &delivery.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Delivery{}, fmt.Errorf("%w: order %d already has a delivery", httpx.ErrDuplicate, delivery.OrderID)
			case "23503":
				return Delivery{}, fmt.Errorf("%w: unknown order or tanker", httpx.ErrValidation)
			}
		}
		return Delivery{}, err
	}
	delivery.Version = 1
	return delivery, nil
}

func (r *repository) Update(ctx context.Context, delivery Delivery, baseVersion int64) (Delivery, error) {
	query := `
		UPDATE deliveries
		SET tanker_id = $1, volume_livre = $2, volume_manquant = $3, delivery_date = $4,
		    status = $5, payment = $6, version = version + 1, updated_at = NOW()
		WHERE owner_id = $7 AND id = $8 AND version = $9
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		delivery.TankerID, delivery.VolumeLivre, delivery.VolumeManquant, delivery.DeliveryDate,
		delivery.Status, delivery.Payment, delivery.OwnerID, delivery.ID, baseVersion).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, getErr := r.Get(ctx, delivery.OwnerID, delivery.ID)
			if getErr != nil {
				return Delivery{}, getErr
			}
			return current, httpx.ErrStaleVersion
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Delivery{}, fmt.Errorf("%w: unknown tanker", httpx.ErrValidation)
		}
		return Delivery{}, err
	}
	return r.Get(ctx, delivery.OwnerID, delivery.ID)
}

// SetOrderStatus writes the delivery's status through to the linked order.
// Runs inside the same transaction as the delivery write.
func (r *repository) SetOrderStatus(ctx context.Context, orderID int64, status string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, orderID)
	return err
}

func (r *repository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM deliveries WHERE owner_id = $1 AND id = $2`, ownerID, id)
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
	case "delivery_date":
		return "d.delivery_date " + dir
	case "order":
		return "o.number " + dir
	case "status":
		return "d.status " + dir
	default:
		return "d.delivery_date " + dir
	}
}
