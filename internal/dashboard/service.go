package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/petroflow/petroflow/internal/deliveries"
	"github.com/petroflow/petroflow/internal/orders"
)

// OrdersSource is the slice of the orders repository the dashboard reads.
type OrdersSource interface {
	ListBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]orders.Order, error)
	ListRecentInProgress(ctx context.Context, ownerID int64, limit int) ([]orders.Order, error)
}

// DeliveriesSource is the slice of the deliveries repository the dashboard reads.
type DeliveriesSource interface {
	ListBetween(ctx context.Context, ownerID int64, from, to time.Time) ([]deliveries.Delivery, error)
	ListRecent(ctx context.Context, ownerID int64, limit int) ([]deliveries.Delivery, error)
}

// Service recomputes the stats bundle from the owner's rows on demand. Nothing
// is incrementally patched: a fresh window fetch feeds a pure fold, and the
// cache in front absorbs repeat reads until the next mutation bumps it.
type Service struct {
	orders     OrdersSource
	deliveries DeliveriesSource
	cache      *Cache
	now        func() time.Time
}

func NewService(ordersSrc OrdersSource, deliveriesSrc DeliveriesSource, cache *Cache) *Service {
	return &Service{orders: ordersSrc, deliveries: deliveriesSrc, cache: cache, now: time.Now}
}

// Stats returns the cached or freshly computed bundle for the period.
func (s *Service) Stats(ctx context.Context, ownerID int64, period string) (Bundle, error) {
	current, previous, err := Windows(period, s.now())
	if err != nil {
		return Bundle{}, err
	}

	key, err := s.cache.BuildKey(ctx, ownerID, "dashboard", "stats", period)
	if err != nil {
		return Bundle{}, err
	}

	var bundle Bundle
	err = s.cache.FetchJSON(ctx, key, &bundle, func(ctx context.Context) (interface{}, error) {
		return s.computeBundle(ctx, ownerID, period, current, previous)
	})
	return bundle, err
}

// Warm precomputes and caches the bundles for every period.
func (s *Service) Warm(ctx context.Context, ownerID int64) error {
	for _, period := range []string{PeriodDay, PeriodWeek, PeriodMonth} {
		if _, err := s.Stats(ctx, ownerID, period); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) computeBundle(ctx context.Context, ownerID int64, period string, current, previous Window) (Bundle, error) {
	var cur, prev windowData
	var recentOrders []orders.Order
	var recentDeliveries []deliveries.Delivery

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cur.orders, err = s.orders.ListBetween(ctx, ownerID, current.From, current.To)
		return err
	})
	g.Go(func() error {
		var err error
		cur.deliveries, err = s.deliveries.ListBetween(ctx, ownerID, current.From, current.To)
		return err
	})
	g.Go(func() error {
		var err error
		prev.orders, err = s.orders.ListBetween(ctx, ownerID, previous.From, previous.To)
		return err
	})
	g.Go(func() error {
		var err error
		prev.deliveries, err = s.deliveries.ListBetween(ctx, ownerID, previous.From, previous.To)
		return err
	})
	g.Go(func() error {
		var err error
		recentOrders, err = s.orders.ListRecentInProgress(ctx, ownerID, recentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		recentDeliveries, err = s.deliveries.ListRecent(ctx, ownerID, recentLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return Bundle{}, err
	}

	bundle := compute(period, current, previous, cur, prev, s.now())
	if recentOrders == nil {
		recentOrders = []orders.Order{}
	}
	if recentDeliveries == nil {
		recentDeliveries = []deliveries.Delivery{}
	}
	bundle.RecentOrders = recentOrders
	bundle.RecentDeliveries = recentDeliveries
	return bundle, nil
}
