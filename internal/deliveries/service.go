package deliveries

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

func (s *Service) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Delivery, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, ownerID, filters)
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (Delivery, error) {
	return s.repo.Get(ctx, ownerID, id)
}

func (s *Service) validate(delivery Delivery) error {
	if !ValidStatus(delivery.Status) {
		return fmt.Errorf("%w: unknown delivery status %q", httpx.ErrValidation, delivery.Status)
	}
	if !ValidPayment(delivery.Payment) {
		return fmt.Errorf("%w: unknown payment state %q", httpx.ErrValidation, delivery.Payment)
	}
	if delivery.VolumeManquant < 0 {
		return fmt.Errorf("%w: missing volume must not be negative", httpx.ErrValidation)
	}
	return nil
}

// Create records a delivery against an order. In one transaction it derives
// the delivered volume from the order's current quantity and writes the
// delivery status through to the order: both rows commit or neither does.
func (s *Service) Create(ctx context.Context, delivery Delivery) (Delivery, error) {
	if delivery.Status == "" {
		delivery.Status = StatusNotDelivered
	}
	if delivery.Payment == "" {
		delivery.Payment = PaymentUnpaid
	}
	if delivery.DeliveryDate.IsZero() {
		delivery.DeliveryDate = time.Now()
	}
	if err := s.validate(delivery); err != nil {
		return Delivery{}, err
	}

	var created Delivery
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		quantity, err := r.OrderQuantity(ctx, delivery.OwnerID, delivery.OrderID)
		if err != nil {
			return err
		}
		delivery.VolumeLivre = calc.DeliveredVolume(quantity, delivery.VolumeManquant)

		created, err = r.Create(ctx, delivery)
		if err != nil {
			return err
		}
		return r.SetOrderStatus(ctx, delivery.OrderID, delivery.Status)
	})
	if err != nil {
		return Delivery{}, err
	}
	s.bump(ctx, delivery.OwnerID)
	return created, nil
}

// Update rewrites a delivery under its version guard, re-derives the delivered
// volume against the order's current quantity, and propagates a status change
// to the order in the same transaction.
func (s *Service) Update(ctx context.Context, delivery Delivery, baseVersion int64) (Delivery, error) {
	if err := s.validate(delivery); err != nil {
		return Delivery{}, err
	}

	var updated Delivery
	err := s.repo.WithTx(ctx, func(ctx context.Context, r Repository) error {
		current, err := r.Get(ctx, delivery.OwnerID, delivery.ID)
		if err != nil {
			return err
		}
		if current.Version != baseVersion {
			updated = current
			return httpx.ErrStaleVersion
		}

		// The order link is immutable; only its status can follow the delivery.
		delivery.OrderID = current.OrderID

		quantity, err := r.OrderQuantity(ctx, delivery.OwnerID, delivery.OrderID)
		if err != nil {
			return err
		}
		delivery.VolumeLivre = calc.DeliveredVolume(quantity, delivery.VolumeManquant)

		updated, err = r.Update(ctx, delivery, baseVersion)
		if err != nil {
			return err
		}
		if updated.Status != current.Status {
			return r.SetOrderStatus(ctx, updated.OrderID, updated.Status)
		}
		return nil
	})
	if err != nil {
		return updated, err
	}
	s.bump(ctx, delivery.OwnerID)
	return updated, nil
}

// Delete removes the delivery. The order keeps its last written status.
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
