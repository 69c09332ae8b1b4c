package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/petroflow/petroflow/internal/calc"
	"github.com/petroflow/petroflow/internal/platform/httpx"
	"github.com/petroflow/petroflow/internal/shared"
)

// StatsInvalidator marks the owner's dashboard aggregates stale after a write.
type StatsInvalidator interface {
	Bump(ctx context.Context, ownerID int64) error
}

type Service struct {
	repo  Repository
	stats StatsInvalidator
}

func NewService(repo Repository, stats StatsInvalidator) *Service {
	return &Service{repo: repo, stats: stats}
}

func (s *Service) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Order, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, ownerID, filters)
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (Order, error) {
	return s.repo.Get(ctx, ownerID, id)
}

func (s *Service) validate(order Order) error {
	if !ValidProduct(order.Product) {
		return fmt.Errorf("%w: unknown product %q", httpx.ErrValidation, order.Product)
	}
	if !ValidStatus(order.Status) {
		return fmt.Errorf("%w: unknown order status %q", httpx.ErrValidation, order.Status)
	}
	if order.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
	}
	if order.UnitPrice < 0 {
		return fmt.Errorf("%w: unit price must not be negative", httpx.ErrValidation)
	}
	return nil
}

// Create generates the order number and stores the derived amount, atomically.
func (s *Service) Create(ctx context.Context, order Order) (Order, error) {
	if order.Status == "" {
		order.Status = StatusNotDelivered
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	if err := s.validate(order); err != nil {
		return Order{}, err
	}
	order.EstimatedAmount = calc.EstimatedAmount(order.Quantity, order.UnitPrice)

	var created Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		number, err := r.GenerateNumber(ctx, order.OwnerID, order.OrderDate)
		if err != nil {
			return fmt.Errorf("generate order number: %w", err)
		}
		order.Number = number
		created, err = r.Create(ctx, order)
		return err
	})
	if err != nil {
		return Order{}, err
	}
	s.bump(ctx, order.OwnerID)
	return created, nil
}

// Update rewrites an order under its version guard. Inside one transaction it
// re-derives the estimated amount, refuses a direct status change while a
// delivery owns the status, and recomputes the linked delivery's delivered
// volume when the quantity moved.
func (s *Service) Update(ctx context.Context, order Order, baseVersion int64) (Order, error) {
	if err := s.validate(order); err != nil {
		return Order{}, err
	}
	order.EstimatedAmount = calc.EstimatedAmount(order.Quantity, order.UnitPrice)

	var updated Order
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		current, err := r.Get(ctx, order.OwnerID, order.ID)
		if err != nil {
			return err
		}
		if current.Version != baseVersion {
			updated = current
			return httpx.ErrStaleVersion
		}

		deliveryID, missing, hasDelivery, err := r.DeliveryInputs(ctx, order.ID)
		if err != nil {
			return err
		}
		if hasDelivery && order.Status != current.Status {
			return fmt.Errorf("%w: order status is managed by its delivery", httpx.ErrConflict)
		}

		updated, err = r.Update(ctx, order, baseVersion)
		if err != nil {
			return err
		}

		if hasDelivery && updated.Quantity != current.Quantity {
			volume := calc.DeliveredVolume(updated.Quantity, missing)
			if err := r.SetDeliveryVolume(ctx, deliveryID, volume); err != nil {
				return fmt.Errorf("recompute delivered volume: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return updated, err
	}
	s.bump(ctx, order.OwnerID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.bump(ctx, ownerID)
	return nil
}

func (s *Service) bump(ctx context.Context, ownerID int64) {
	if s.stats == nil {
		return
	}
	_ = s.stats.Bump(ctx, ownerID)
}
