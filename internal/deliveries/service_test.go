package deliveries

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petroflow/petroflow/internal/platform/httpx"
	"github.com/petroflow/petroflow/internal/shared"
)

type fakeOrder struct {
	quantity float64
	status   string
}

type fakeRepo struct {
	orders     map[int64]*fakeOrder
	deliveries map[int64]Delivery
	nextID     int64

	failCreate bool
	committed  bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{orders: make(map[int64]*fakeOrder), deliveries: make(map[int64]Delivery), nextID: 1}
}

// WithTx snapshots state and restores it when fn fails, mirroring a rollback.
func (f *fakeRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	ordersSnap := make(map[int64]*fakeOrder, len(f.orders))
	for id, o := range f.orders {
		cp := *o
		ordersSnap[id] = &cp
	}
	deliveriesSnap := make(map[int64]Delivery, len(f.deliveries))
	for id, d := range f.deliveries {
		deliveriesSnap[id] = d
	}

	if err := fn(ctx, f); err != nil {
		f.orders = ordersSnap
		f.deliveries = deliveriesSnap
		return err
	}
	f.committed = true
	return nil
}

func (f *fakeRepo) List(context.Context, int64, shared.ListFilters) ([]Delivery, int, error) {
	return nil, 0, nil
}

func (f *fakeRepo) ListBetween(context.Context, int64, time.Time, time.Time) ([]Delivery, error) {
	return nil, nil
}

func (f *fakeRepo) ListRecent(context.Context, int64, int) ([]Delivery, error) { return nil, nil }

func (f *fakeRepo) Get(_ context.Context, ownerID, id int64) (Delivery, error) {
	d, ok := f.deliveries[id]
	if !ok || d.OwnerID != ownerID {
		return Delivery{}, httpx.ErrNotFound
	}
	return d, nil
}

func (f *fakeRepo) OrderQuantity(_ context.Context, _, orderID int64) (float64, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return 0, httpx.ErrValidation
	}
	return o.quantity, nil
}

func (f *fakeRepo) Create(_ context.Context, d Delivery) (Delivery, error) {
	if f.failCreate {
		return Delivery{}, httpx.ErrDuplicate
	}
	for _, existing := range f.deliveries {
		if existing.OrderID == d.OrderID {
			return Delivery{}, httpx.ErrDuplicate
		}
	}
	d.ID = f.nextID
	f.nextID++
	d.Version = 1
	f.deliveries[d.ID] = d
	return d, nil
}

func (f *fakeRepo) Update(_ context.Context, d Delivery, baseVersion int64) (Delivery, error) {
	current, ok := f.deliveries[d.ID]
	if !ok {
		return Delivery{}, httpx.ErrNotFound
	}
	if current.Version != baseVersion {
		return current, httpx.ErrStaleVersion
	}
	d.Version = current.Version + 1
	f.deliveries[d.ID] = d
	return d, nil
}

func (f *fakeRepo) SetOrderStatus(_ context.Context, orderID int64, status string) error {
	o, ok := f.orders[orderID]
	if !ok {
		return httpx.ErrNotFound
	}
	o.status = status
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, ownerID, id int64) error {
	d, ok := f.deliveries[id]
	if !ok || d.OwnerID != ownerID {
		return httpx.ErrNotFound
	}
	delete(f.deliveries, id)
	return nil
}

func TestCreateDerivesVolumeAndPropagatesStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[10] = &fakeOrder{quantity: 8000, status: "not-delivered"}
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), Delivery{
		OwnerID:        7,
		OrderID:        10,
		TankerID:       3,
		VolumeManquant: 500,
		Status:         StatusDelivered,
		Payment:        PaymentPaid,
	})
	require.NoError(t, err)
	require.Equal(t, float64(7500), created.VolumeLivre)
	require.Equal(t, StatusDelivered, repo.orders[10].status)
	require.True(t, repo.committed)
}

func TestCreateClampsOverDeclaredShortage(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[10] = &fakeOrder{quantity: 8000, status: "not-delivered"}
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), Delivery{
		OwnerID:        7,
		OrderID:        10,
		TankerID:       3,
		VolumeManquant: 9000,
		Status:         StatusNotDelivered,
		Payment:        PaymentUnpaid,
	})
	require.NoError(t, err)
	require.Equal(t, float64(0), created.VolumeLivre)
}

func TestCreateFailureRollsBackOrderStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[10] = &fakeOrder{quantity: 8000, status: "not-delivered"}
	repo.failCreate = true
	svc := NewService(repo, nil)

	_, err := svc.Create(context.Background(), Delivery{
		OwnerID:        7,
		OrderID:        10,
		TankerID:       3,
		VolumeManquant: 0,
		Status:         StatusDelivered,
		Payment:        PaymentPaid,
	})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
	require.Equal(t, "not-delivered", repo.orders[10].status)
}

func TestCreateSecondDeliveryForOrderRejected(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[10] = &fakeOrder{quantity: 8000, status: "not-delivered"}
	svc := NewService(repo, nil)

	first := Delivery{OwnerID: 7, OrderID: 10, TankerID: 3, Status: StatusDelivered, Payment: PaymentPaid}
	_, err := svc.Create(context.Background(), first)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), first)
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateStatusChangePropagates(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[10] = &fakeOrder{quantity: 8000, status: "not-delivered"}
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), Delivery{
		OwnerID: 7, OrderID: 10, TankerID: 3, Status: StatusNotDelivered, Payment: PaymentUnpaid,
	})
	require.NoError(t, err)

	created.Status = StatusDelivered
	updated, err := svc.Update(context.Background(), created, created.Version)
	require.NoError(t, err)
	require.Equal(t, StatusDelivered, updated.Status)
	require.Equal(t, StatusDelivered, repo.orders[10].status)
}

func TestUpdateRecomputesVolumeAgainstCurrentQuantity(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[10] = &fakeOrder{quantity: 8000, status: "not-delivered"}
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), Delivery{
		OwnerID: 7, OrderID: 10, TankerID: 3, VolumeManquant: 500,
		Status: StatusNotDelivered, Payment: PaymentUnpaid,
	})
	require.NoError(t, err)
	require.Equal(t, float64(7500), created.VolumeLivre)

	// The order quantity changed since the delivery was recorded.
	repo.orders[10].quantity = 6000
	created.VolumeManquant = 1000
	updated, err := svc.Update(context.Background(), created, created.Version)
	require.NoError(t, err)
	require.Equal(t, float64(5000), updated.VolumeLivre)
}

func TestUpdateStaleVersionReturnsCurrentRow(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[10] = &fakeOrder{quantity: 8000, status: "not-delivered"}
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), Delivery{
		OwnerID: 7, OrderID: 10, TankerID: 3, Status: StatusNotDelivered, Payment: PaymentUnpaid,
	})
	require.NoError(t, err)

	created.Status = StatusDelivered
	current, err := svc.Update(context.Background(), created, created.Version+5)
	require.ErrorIs(t, err, httpx.ErrStaleVersion)
	require.Equal(t, StatusNotDelivered, current.Status)
	require.Equal(t, "not-delivered", repo.orders[10].status)
}

func TestDeleteLeavesOrderStatus(t *testing.T) {
	repo := newFakeRepo()
	repo.orders[10] = &fakeOrder{quantity: 8000, status: "not-delivered"}
	svc := NewService(repo, nil)

	created, err := svc.Create(context.Background(), Delivery{
		OwnerID: 7, OrderID: 10, TankerID: 3, Status: StatusDelivered, Payment: PaymentPaid,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), 7, created.ID))
	require.Equal(t, StatusDelivered, repo.orders[10].status)
	require.Empty(t, repo.deliveries)
}
