package orders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petroflow/petroflow/internal/platform/httpx"
	"github.com/petroflow/petroflow/internal/shared"
)

type fakeDelivery struct {
	id          int64
	orderID     int64
	missing     float64
	volumeLivre float64
}

type fakeRepo struct {
	orders     map[int64]Order
	deliveries map[int64]*fakeDelivery
	nextID     int64
	seq        int64
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[int64]Order), deliveries: make(map[int64]*fakeDelivery), nextID: 1}
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, f)
}

func (f *fakeRepo) List(context.Context, int64, shared.ListFilters) ([]Order, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) ListBetween(context.Context, int64, time.Time, time.Time) ([]Order, error) {
	return nil, nil
}

func (f *fakeRepo) ListRecentInProgress(context.Context, int64, int) ([]Order, error) {
	return nil, nil
}

func (f *fakeRepo) Get(_ context.Context, ownerID, id int64) (Order, error) {
	o, ok := f.orders[id]
	if !ok || o.OwnerID != ownerID {
		return Order{}, httpx.ErrNotFound
	}
	return o, nil
}

func (f *fakeRepo) GenerateNumber(_ context.Context, _ int64, date time.Time) (string, error) {
	f.seq++
	return fmt.Sprintf("CMD-%s-%04d", date.Format("0601"), f.seq), nil
}

func (f *fakeRepo) Create(_ context.Context, order Order) (Order, error) {
	order.ID = f.nextID
	f.nextID++
	order.Version = 1
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeRepo) Update(_ context.Context, order Order, baseVersion int64) (Order, error) {
	current, ok := f.orders[order.ID]
	if !ok {
		return Order{}, httpx.ErrNotFound
	}
	if current.Version != baseVersion {
		return current, httpx.ErrStaleVersion
	}
	order.Number = current.Number
	order.Version = current.Version + 1
	order.CreatedAt = current.CreatedAt
	f.orders[order.ID] = order
	return order, nil
}

func (f *fakeRepo) DeliveryInputs(_ context.Context, orderID int64) (int64, float64, bool, error) {
	for _, d := range f.deliveries {
		if d.orderID == orderID {
			return d.id, d.missing, true, nil
		}
	}
	return 0, 0, false, nil
}

func (f *fakeRepo) SetDeliveryVolume(_ context.Context, deliveryID int64, volume float64) error {
	d, ok := f.deliveries[deliveryID]
	if !ok {
		return httpx.ErrNotFound
	}
	d.volumeLivre = volume
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, ownerID, id int64) error {
	o, ok := f.orders[id]
	if !ok || o.OwnerID != ownerID {
		return httpx.ErrNotFound
	}
	delete(f.orders, id)
	return nil
}

func seedOrder(repo *fakeRepo) Order {
	created, _ := repo.Create(context.Background(), Order{
		OwnerID:         7,
		Number:          "CMD-2508-0001",
		ClientID:        1,
		Product:         ProductDiesel,
		Quantity:        5000,
		UnitPrice:       850,
		EstimatedAmount: 4250000,
		OrderDate:       time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC),
		Status:          StatusNotDelivered,
	})
	return created
}

func TestCreateDerivesAmountAndNumber(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), Order{
		OwnerID:   7,
		ClientID:  1,
		Product:   ProductGasoline,
		Quantity:  5000,
		UnitPrice: 850,
		OrderDate: time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Equal(t, float64(4250000), created.EstimatedAmount)
	require.Equal(t, "CMD-2508-0001", created.Number)
	require.Equal(t, StatusNotDelivered, created.Status)
	require.Equal(t, int64(1), created.Version)
}

func TestUpdateReDerivesAmount(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	order := seedOrder(repo)

	order.Quantity = 6000
	updated, err := svc.Update(context.Background(), order, 1)
	require.NoError(t, err)
	require.Equal(t, float64(6000*850), updated.EstimatedAmount)
	require.Equal(t, int64(2), updated.Version)
}

func TestUpdateQuantityRecomputesLinkedDelivery(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	order := seedOrder(repo)
	repo.deliveries[1] = &fakeDelivery{id: 1, orderID: order.ID, missing: 500, volumeLivre: 4500}

	order.Quantity = 8000
	_, err := svc.Update(context.Background(), order, 1)
	require.NoError(t, err)
	require.Equal(t, float64(7500), repo.deliveries[1].volumeLivre)
}

func TestUpdateOverDeclaredShortageClampsAtZero(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	order := seedOrder(repo)
	repo.deliveries[1] = &fakeDelivery{id: 1, orderID: order.ID, missing: 9000, volumeLivre: 0}

	order.Quantity = 8000
	_, err := svc.Update(context.Background(), order, 1)
	require.NoError(t, err)
	require.Equal(t, float64(0), repo.deliveries[1].volumeLivre)
}

func TestUpdateStatusRejectedWhileDeliveryExists(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	order := seedOrder(repo)
	repo.deliveries[1] = &fakeDelivery{id: 1, orderID: order.ID, missing: 0, volumeLivre: 5000}

	order.Status = StatusDelivered
	_, err := svc.Update(context.Background(), order, 1)
	require.ErrorIs(t, err, httpx.ErrConflict)
	require.Equal(t, StatusNotDelivered, repo.orders[order.ID].Status)
}

func TestUpdateStaleVersionReturnsCurrentRow(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	order := seedOrder(repo)

	order.Quantity = 6000
	current, err := svc.Update(context.Background(), order, 99)
	require.ErrorIs(t, err, httpx.ErrStaleVersion)
	require.Equal(t, float64(5000), current.Quantity)
	require.Equal(t, int64(1), current.Version)
}

func TestUpdateRejectsUnknownProduct(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, nil)
	order := seedOrder(repo)

	order.Product = "kerosene"
	_, err := svc.Update(context.Background(), order, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)
}
