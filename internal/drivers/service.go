package drivers

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/petroflow/petroflow/internal/platform/httpx"
	"github.com/petroflow/petroflow/internal/platform/storage"
	"github.com/petroflow/petroflow/internal/shared"
)

const avatarURLTTL = 15 * time.Minute

// StatsInvalidator marks the owner's dashboard aggregates stale after a write.
type StatsInvalidator interface {
	Bump(ctx context.Context, ownerID int64) error
}

type Service struct {
	repo    Repository
	avatars *storage.Store
	stats   StatsInvalidator
}

func NewService(repo Repository, avatars *storage.Store, stats StatsInvalidator) *Service {
	return &Service{repo: repo, avatars: avatars, stats: stats}
}

func (s *Service) List(ctx context.Context, ownerID int64, filters shared.ListFilters) ([]Driver, int, error) {
	filters.Normalize()
	items, total, err := s.repo.List(ctx, ownerID, filters)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		s.attachAvatarURL(ctx, &items[i])
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, ownerID, id int64) (Driver, error) {
	driver, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Driver{}, err
	}
	s.attachAvatarURL(ctx, &driver)
	return driver, nil
}

func (s *Service) Create(ctx context.Context, driver Driver) (Driver, error) {
	if driver.Status == "" {
		driver.Status = StatusAvailable
	}
	if !ValidStatus(driver.Status) {
		return Driver{}, fmt.Errorf("%w: unknown driver status %q", httpx.ErrValidation, driver.Status)
	}
	created, err := s.repo.Create(ctx, driver)
	if err != nil {
		return Driver{}, err
	}
	s.bump(ctx, driver.OwnerID)
	return created, nil
}

func (s *Service) Update(ctx context.Context, driver Driver, baseVersion int64) (Driver, error) {
	if !ValidStatus(driver.Status) {
		return Driver{}, fmt.Errorf("%w: unknown driver status %q", httpx.ErrValidation, driver.Status)
	}
	updated, err := s.repo.Update(ctx, driver, baseVersion)
	if err != nil {
		return updated, err
	}
	s.bump(ctx, driver.OwnerID)
	return updated, nil
}

// UploadAvatar stores the image in the object store and records its key,
// removing the previous object when one exists.
func (s *Service) UploadAvatar(ctx context.Context, ownerID, id int64, r io.Reader, size int64, contentType, filename string) (Driver, error) {
	if s.avatars == nil {
		return Driver{}, fmt.Errorf("%w: avatar storage not configured", httpx.ErrValidation)
	}
	driver, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return Driver{}, err
	}

	key := fmt.Sprintf("avatars/%d/%s%s", ownerID, uuid.NewString(), path.Ext(filename))
	if err := s.avatars.Put(ctx, key, r, size, contentType); err != nil {
		return Driver{}, err
	}
	if err := s.repo.SetAvatar(ctx, ownerID, id, key); err != nil {
		return Driver{}, err
	}
	_ = s.avatars.Remove(ctx, driver.AvatarKey)

	driver.AvatarKey = key
	s.attachAvatarURL(ctx, &driver)
	return driver, nil
}

func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	driver, err := s.repo.Get(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	if s.avatars != nil {
		_ = s.avatars.Remove(ctx, driver.AvatarKey)
	}
	s.bump(ctx, ownerID)
	return nil
}

func (s *Service) attachAvatarURL(ctx context.Context, driver *Driver) {
	if s.avatars == nil || driver.AvatarKey == "" {
		return
	}
	if url, err := s.avatars.PresignedURL(ctx, driver.AvatarKey, avatarURLTTL); err == nil {
		driver.AvatarURL = url
	}
}

func (s *Service) bump(ctx context.Context, ownerID int64) {
	if s.stats == nil {
		return
	}
	_ = s.stats.Bump(ctx, ownerID)
}
