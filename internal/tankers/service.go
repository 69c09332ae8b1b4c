package tankers

import (
	"context"
	"fmt"

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

func (s *Service) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Tanker, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, ownerID, filters)
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (Tanker, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// GetBoard loads the whole fleet partitioned into the two board columns.
func (s *Service) GetBoard(ctx context.Context, ownerID int64) (Board, error) {
	tankers, err := s.repo.ListAll(ctx, ownerID)
	if err != nil {
		return Board{}, err
	}
	return Partition(tankers), nil
}

// MoveResult reports the outcome of a board move.
type MoveResult struct {
	Moved  bool
	Tanker Tanker
}

// Move drags a tanker to the target board column. A same-column move writes
// nothing. A cross-column move issues exactly one status write guarded by the
// caller's base version so a concurrent move surfaces as a conflict instead of
// silently winning.
func (s *Service) Move(ctx context.Context, ownerID, id int64, targetColumn string, baseVersion int64) (MoveResult, error) {
	if !ValidColumn(targetColumn) {
		return MoveResult{}, fmt.Errorf("%w: unknown board column %q", httpx.ErrValidation, targetColumn)
	}

	tanker, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return MoveResult{}, err
	}
	if ColumnFor(tanker.Status) == targetColumn {
		return MoveResult{Moved: false, Tanker: tanker}, nil
	}

	newStatus := StatusAvailable
	if targetColumn == ColumnInDelivery {
		newStatus = StatusInDelivery
	}
	updated, err := s.repo.UpdateStatus(ctx, ownerID, id, newStatus, baseVersion)
	if err != nil {
		return MoveResult{Tanker: updated}, err
	}
	s.bump(ctx, ownerID)
	return MoveResult{Moved: true, Tanker: updated}, nil
}

func (s *Service) Create(ctx context.Context, tanker Tanker) (Tanker, error) {
	if tanker.Status == "" {
		tanker.Status = StatusAvailable
	}
	if !ValidStatus(tanker.Status) {
		return Tanker{}, fmt.Errorf("%w: unknown tanker status %q", httpx.ErrValidation, tanker.Status)
	}
	created, err := s.repo.Create(ctx, tanker)
	if err != nil {
		return Tanker{}, err
	}
	s.bump(ctx, tanker.OwnerID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, tanker Tanker, baseVersion int64) (Tanker, error) {
	if !ValidStatus(tanker.Status) {
		return Tanker{}, fmt.Errorf("%w: unknown tanker status %q", httpx.ErrValidation, tanker.Status)
	}
	updated, err := s.repo.Update(ctx, tanker, baseVersion)
	if err != nil {
		return updated, err
	}
	s.bump(ctx, tanker.OwnerID)
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
