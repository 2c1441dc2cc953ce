package services

import (
	"context"
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

type SoftwareServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.Software, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.Software, error)
	Create(ctx context.Context, payload dto.CreateSoftwareDTO) (*entities.Software, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateSoftwareDTO) (*entities.Software, error)
	Delete(ctx context.Context, id uint64) error

	// All returns active software only.
	All(ctx context.Context) ([]entities.Software, error)
	ForProfile(ctx context.Context, profileRef string) (*entities.ReferenceProfile, []entities.Software, error)
	Additional(ctx context.Context, profileRef string) ([]entities.Software, error)
	Manufacturers(ctx context.Context) ([]string, error)
	ByManufacturer(ctx context.Context, manufacturerRef string) (*entities.LookupItem, []entities.Software, error)
	Search(ctx context.Context, query string) ([]entities.Software, error)
}

type SoftwareService struct {
	repository    repositories.SoftwareRepositoryInterface
	profiles      repositories.ReferenceProfileRepositoryInterface
	manufacturers LookupServiceInterface
	cache         readCache
	logger        *zap.Logger
}

func NewSoftwareService(
	repository repositories.SoftwareRepositoryInterface,
	profiles repositories.ReferenceProfileRepositoryInterface,
	manufacturers LookupServiceInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) SoftwareServiceInterface {
	return &SoftwareService{
		repository:    repository,
		profiles:      profiles,
		manufacturers: manufacturers,
		cache:         newReadCache(cache, cacheTTL, logger),
		logger:        logger,
	}
}

func activeOnly(filter types.Filter) types.Filter {
	filters := make(map[string]interface{}, len(filter.Filter)+1)
	for k, v := range filter.Filter {
		filters[k] = v
	}
	filters["active"] = "true"
	filter.Filter = filters
	return filter
}

func (s *SoftwareService) List(ctx context.Context, filter types.Filter) ([]entities.Software, uint64, error) {
	return s.repository.List(ctx, filter)
}

func (s *SoftwareService) Find(ctx context.Context, id uint64) (*entities.Software, error) {
	return s.repository.Find(ctx, id)
}

func (s *SoftwareService) Create(ctx context.Context, payload dto.CreateSoftwareDTO) (*entities.Software, error) {
	active := true
	if payload.Active != nil {
		active = *payload.Active
	}
	created, err := s.repository.Create(ctx, entities.Software{
		Name:           strings.TrimSpace(payload.Name),
		ManufacturerID: payload.ManufacturerID,
		Version:        null.StringFromPtr(payload.Version),
		Active:         active,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("software created", zap.Uint64("id", created.ID), zap.String("name", created.Name))
	s.cache.invalidate(ctx, constants.CacheKeySoftwareList)
	return created, nil
}

func (s *SoftwareService) Update(ctx context.Context, id uint64, payload dto.UpdateSoftwareDTO) (*entities.Software, error) {
	updated, err := s.repository.Update(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, constants.CacheKeySoftwareList)
	return updated, nil
}

func (s *SoftwareService) Delete(ctx context.Context, id uint64) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("software deleted", zap.Uint64("id", id))
	s.cache.invalidate(ctx, constants.CacheKeySoftwareList)
	return nil
}

func (s *SoftwareService) All(ctx context.Context) ([]entities.Software, error) {
	return cached(ctx, s.cache, constants.CacheKeySoftwareList, func(ctx context.Context) ([]entities.Software, error) {
		items, _, err := s.repository.List(ctx, activeOnly(types.Filter{}))
		return items, err
	})
}

func (s *SoftwareService) ForProfile(ctx context.Context, profileRef string) (*entities.ReferenceProfile, []entities.Software, error) {
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

func (s *SoftwareService) Additional(ctx context.Context, profileRef string) ([]entities.Software, error) {
	if strings.TrimSpace(profileRef) == "" {
		return s.All(ctx)
	}
	profile, err := s.profiles.FindByRef(ctx, profileRef)
	if err != nil {
		return nil, err
	}
	items, _, err := s.repository.List(ctx, activeOnly(profileFilter("not_in_profile", profile.ID)))
	return items, err
}

func (s *SoftwareService) Manufacturers(ctx context.Context) ([]string, error) {
	return lookupNames(ctx, s.manufacturers)
}

func (s *SoftwareService) ByManufacturer(ctx context.Context, manufacturerRef string) (*entities.LookupItem, []entities.Software, error) {
	manufacturer, err := ResolveLookup(ctx, s.manufacturers, manufacturerRef)
	if err != nil {
		return nil, nil, err
	}
	filter := activeOnly(types.Filter{Filter: map[string]interface{}{"manufacturer_id": manufacturer.ID}})
	items, _, err := s.repository.List(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	return manufacturer, items, nil
}

func (s *SoftwareService) Search(ctx context.Context, query string) ([]entities.Software, error) {
	items, _, err := s.repository.List(ctx, activeOnly(types.Filter{Search: strings.TrimSpace(query)}))
	return items, err
}
