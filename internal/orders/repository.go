package orders

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
	List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Order, int, error)
	ListBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]Order, error)
	ListRecentInProgress(ctx context.Context, ownerID int64, limit int) ([]Order, error)
	Get(ctx context.Context, ownerID, id int64) (Order, error)
	GenerateNumber(ctx context.Context, ownerID int64, date time.Time) (string, error)
	Create(ctx context.Context, order Order) (Order, error)
	Update(ctx context.Context, order Order, baseVersion int64) (Order, error)
	DeliveryInputs(ctx context.Context, orderID int64) (deliveryID int64, missingVolume float64, exists bool, err error)
	SetDeliveryVolume(ctx context.Context, deliveryID int64, volume float64) error
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

const orderColumns = `o.id, o.owner_id, o.number, o.client_id, c.name, o.product, o.quantity,
	o.unit_price, o.estimated_amount, o.order_date, o.status, o.version, o.created_at, o.updated_at`

const orderFrom = ` FROM orders o LEFT JOIN clients c ON c.id = o.client_id`

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	var clientName *string
	err := row.Scan(&o.ID, &o.OwnerID, &o.Number, &o.ClientID, &clientName, &o.Product, &o.Quantity,
		&o.UnitPrice, &o.EstimatedAmount, &o.OrderDate, &o.Status, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if clientName != nil {
		o.ClientName = *clientName
	}
	return o, err
}

func (r *repository) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Order, int, error) {
	where := ` WHERE o.owner_id = $1`
	args := []interface{}{ownerID}
	argCount := 1

	if filters.Search != "" {
		argCount++
		ph := strconv.Itoa(argCount)
		where += ` AND (o.number ILIKE $` + ph + ` OR unaccent(c.name) ILIKE $` + ph + `)`
		args = append(args, "%"+shared.FoldSearchTerm(filters.Search)+"%")
	}
	if filters.Status != "" {
		argCount++
		where += ` AND o.status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+orderFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + orderColumns + orderFrom + where + ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)
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

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, o)
	}
	return out, total, rows.Err()
}

func (r *repository) ListBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + `
		WHERE o.owner_id = $1 AND o.order_date >= $2 AND o.order_date < $3
		ORDER BY o.order_date ASC`
	rows, err := r.db.Query(ctx, query, ownerID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repository) ListRecentInProgress(ctx context.Context, ownerID int64, limit int) ([]Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + `
		WHERE o.owner_id = $1 AND o.status = $2
		ORDER BY o.order_date DESC, o.id DESC
		LIMIT $3`
	rows, err := r.db.Query(ctx, query, ownerID, StatusNotDelivered, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, ownerID, id int64) (Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.owner_id = $1 AND o.id = $2`
	o, err := scanOrder(r.db.QueryRow(ctx, query, ownerID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, httpx.ErrNotFound
	}
	return o, err
}

// GenerateNumber draws the next CMD-YYMM-NNNN number from a per-owner monthly
// sequence. The upsert keeps numbering gap-free under concurrent creates.
func (r *repository) GenerateNumber(ctx context.Context, ownerID int64, date time.Time) (string, error) {
	var seq int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (owner_id, doc_type, period, seq)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (owner_id, doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, ownerID, "CMD", date.Format("200601")).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CMD-%s-%04d", date.Format("0601"), seq), nil
}

func (r *repository) Create(ctx context.Context, order Order) (Order, error) {
	query := `
		INSERT INTO orders (owner_id, number, client_id, product, quantity, unit_price,
			estimated_amount, order_date, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, NOW(), NOW())
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		order.OwnerID, order.Number, order.ClientID, order.Product, order.Quantity,
		order.UnitPrice, order.EstimatedAmount, order.OrderDate, order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return Order{}, httpx.ErrDuplicate
			case "23503":
				return Order{}, fmt.Errorf("%w: client %d", httpx.ErrValidation, order.ClientID)
			}
		}
		return Order{}, err
	}
	order.Version = 1
	return order, nil
}

// Update rewrites the editable fields behind a version guard. The number is
// never touched.
func (r *repository) Update(ctx context.Context, order Order, baseVersion int64) (Order, error) {
	query := `
		UPDATE orders
		SET client_id = $1, product = $2, quantity = $3, unit_price = $4,
		    estimated_amount = $5, order_date = $6, status = $7,
		    version = version + 1, updated_at = NOW()
		WHERE owner_id = $8 AND id = $9 AND version = $10
		RETURNING id`
	var id int64
	err := r.db.QueryRow(ctx, query,
		order.ClientID, order.Product, order.Quantity, order.UnitPrice,
		order.EstimatedAmount, order.OrderDate, order.Status,
		order.OwnerID, order.ID, baseVersion).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, getErr := r.Get(ctx, order.OwnerID, order.ID)
			if getErr != nil {
				return Order{}, getErr
			}
			return current, httpx.ErrStaleVersion
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Order{}, fmt.Errorf("%w: client %d", httpx.ErrValidation, order.ClientID)
		}
		return Order{}, err
	}
	return r.Get(ctx, order.OwnerID, order.ID)
}

// DeliveryInputs returns the linked delivery's id and declared missing volume,
// if a delivery exists for the order.
func (r *repository) DeliveryInputs(ctx context.Context, orderID int64) (int64, float64, bool, error) {
	var id int64
	var missing float64
	err := r.db.QueryRow(ctx,
		`SELECT id, volume_manquant FROM deliveries WHERE order_id = $1`, orderID).Scan(&id, &missing)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, false, err
	}
	return id, missing, true, nil
}

// SetDeliveryVolume rewrites a delivery's derived delivered volume after its
// order's quantity changed.
func (r *repository) SetDeliveryVolume(ctx context.Context, deliveryID int64, volume float64) error {
	_, err := r.db.Exec(ctx,
		`UPDATE deliveries SET volume_livre = $1, updated_at = NOW() WHERE id = $2`, volume, deliveryID)
	return err
}

func (r *repository) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE owner_id = $1 AND id = $2`, ownerID, id)
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
	case "number":
		return "o.number " + dir
	case "client":
		return "c.name " + dir
	case "order_date":
		return "o.order_date " + dir
	case "estimated_amount":
		return "o.estimated_amount " + dir
	default:
		return "o.order_date " + dir
	}
}
