package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/repositories"
	"pvb-admin/pkg/constants"
	"pvb-admin/pkg/types"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
)

type HardwareServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.Hardware, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.Hardware, error)
	Create(ctx context.Context, payload dto.CreateHardwareDTO) (*entities.Hardware, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateHardwareDTO) (*entities.Hardware, error)
	Delete(ctx context.Context, id uint64) error

	All(ctx context.Context) ([]entities.Hardware, error)
	// ForProfile returns the hardware of the profile given by id or name.
	ForProfile(ctx context.Context, profileRef string) (*entities.ReferenceProfile, []entities.Hardware, error)
	// Additional returns hardware outside the profile, or everything when profileRef is empty.
	Additional(ctx context.Context, profileRef string) ([]entities.Hardware, error)
	Categories(ctx context.Context) ([]string, error)
	ByCategory(ctx context.Context, categoryRef string) (*entities.LookupItem, []entities.Hardware, error)
	Search(ctx context.Context, query string) ([]entities.Hardware, error)
}

type HardwareService struct {
	repository repositories.HardwareRepositoryInterface
	profiles   repositories.ReferenceProfileRepositoryInterface
	categories LookupServiceInterface
	cache      readCache
	logger     *zap.Logger
}

func NewHardwareService(
	repository repositories.HardwareRepositoryInterface,
	profiles repositories.ReferenceProfileRepositoryInterface,
	categories LookupServiceInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) HardwareServiceInterface {
	return &HardwareService{
		repository: repository,
		profiles:   profiles,
		categories: categories,
		cache:      newReadCache(cache, cacheTTL, logger),
		logger:     logger,
	}
}

func (s *HardwareService) List(ctx context.Context, filter types.Filter) ([]entities.Hardware, uint64, error) {
	return s.repository.List(ctx, filter)
}

func (s *HardwareService) Find(ctx context.Context, id uint64) (*entities.Hardware, error) {
	return s.repository.Find(ctx, id)
}

func (s *HardwareService) Create(ctx context.Context, payload dto.CreateHardwareDTO) (*entities.Hardware, error) {
	created, err := s.repository.Create(ctx, entities.Hardware{
		Name:           strings.TrimSpace(payload.Name),
		CategoryID:     payload.CategoryID,
		Specifications: null.StringFromPtr(payload.Specifications),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("hardware created", zap.Uint64("id", created.ID), zap.String("name", created.Name))
	s.cache.invalidate(ctx, constants.CacheKeyHardwareList)
	return created, nil
}

func (s *HardwareService) Update(ctx context.Context, id uint64, payload dto.UpdateHardwareDTO) (*entities.Hardware, error) {
	updated, err := s.repository.Update(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, constants.CacheKeyHardwareList)
	return updated, nil
}

func (s *HardwareService) Delete(ctx context.Context, id uint64) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("hardware deleted", zap.Uint64("id", id))
	s.cache.invalidate(ctx, constants.CacheKeyHardwareList)
	return nil
}

func (s *HardwareService) All(ctx context.Context) ([]entities.Hardware, error) {
	return cached(ctx, s.cache, constants.CacheKeyHardwareList, func(ctx context.Context) ([]entities.Hardware, error) {
		items, _, err := s.repository.List(ctx, types.Filter{})
		return items, err
	})
}

func (s *HardwareService) ForProfile(ctx context.Context, profileRef string) (*entities.ReferenceProfile, []entities.Hardware, error) {
	profile, err := s.profiles.FindByRef(ctx, profileRef)
	if err != nil {
		return nil, nil, err
	}
	items, _, err := s.repository.List(ctx, profileFilter("profile", profile.ID))
	if err != nil {
		return nil, nil, err
	}
	return profile, items, nil
}

func (s *HardwareService) Additional(ctx context.Context, profileRef string) ([]entities.Hardware, error) {
	if strings.TrimSpace(profileRef) == "" {
		return s.All(ctx)
	}
	profile, err := s.profiles.FindByRef(ctx, profileRef)
	if err != nil {
		return nil, err
	}
	items, _, err := s.repository.List(ctx, profileFilter("not_in_profile", profile.ID))
	return items, err
}

func (s *HardwareService) Categories(ctx context.Context) ([]string, error) {
	return lookupNames(ctx, s.categories)
}

func (s *HardwareService) ByCategory(ctx context.Context, categoryRef string) (*entities.LookupItem, []entities.Hardware, error) {
	category, err := ResolveLookup(ctx, s.categories, categoryRef)
	if err != nil {
		return nil, nil, err
	}
	filter := types.Filter{Filter: map[string]interface{}{"category_id": category.ID}}
	items, _, err := s.repository.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return category, items, nil
}

func (s *HardwareService) Search(ctx context.Context, query string) ([]entities.Hardware, error) {
	items, _, err := s.repository.List(ctx, types.Filter{Search: strings.TrimSpace(query)})
	return items, err
}

func profileFilter(key string, profileID uint64) types.Filter {
	return types.Filter{Filter: map[string]interface{}{key: strconv.FormatUint(profileID, 10)}}
}

func lookupNames(ctx context.Context, lookup LookupServiceInterface) ([]string, error) {
	items, err := lookup.Names(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names, nil
}
