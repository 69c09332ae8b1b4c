package clients

import (
	"context"

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

func (s *Service) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Client, int, error) {
	filters.Normalize()
	return s.repo.List(ctx, ownerID, filters)
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (Client, error) {
	return s.repo.Get(ctx, ownerID, id)
}

func (s *Service) Create(ctx context.Context, client Client) (Client, error) {
	created, err := s.repo.Create(ctx, client)
	if err != nil {
		return Client{}, err
	}
	s.bump(ctx, client.OwnerID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, client Client, baseVersion int64) (Client, error) {
	updated, err := s.repo.Update(ctx, client, baseVersion)
	if err != nil {
		return updated, err
	}
	s.bump(ctx, client.OwnerID)
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
