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
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/types"

	"github.com/aarondl/null/v8"
	"go.uber.org/zap"
)

type SapRoleServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.SapRole, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.SapRole, error)
	Create(ctx context.Context, payload dto.CreateSapRoleDTO) (*entities.SapRole, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateSapRoleDTO) (*entities.SapRole, error)
	Delete(ctx context.Context, id uint64) error

	// Groups returns every role group with its roles, groups without roles included.
	Groups(ctx context.Context) ([]dto.SapGroupDTO, error)
	Categories(ctx context.Context) ([]dto.SapCategoryDTO, error)
	// GroupsByCategory matches a group id or a case-insensitive group name.
	GroupsByCategory(ctx context.Context, category string) ([]dto.SapGroupDTO, error)
	Statistics(ctx context.Context) (*entities.SapStatistics, error)
	Search(ctx context.Context, query string) ([]entities.SapRole, error)
}

type SapRoleService struct {
	repository repositories.SapRoleRepositoryInterface
	roleGroups LookupServiceInterface
	cache      readCache
	logger     *zap.Logger
}

func NewSapRoleService(
	repository repositories.SapRoleRepositoryInterface,
	roleGroups LookupServiceInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) SapRoleServiceInterface {
	return &SapRoleService{
		repository: repository,
		roleGroups: roleGroups,
		cache:      newReadCache(cache, cacheTTL, logger),
		logger:     logger,
	}
}

func (s *SapRoleService) List(ctx context.Context, filter types.Filter) ([]entities.SapRole, uint64, error) {
	return s.repository.List(ctx, filter)
}

func (s *SapRoleService) Find(ctx context.Context, id uint64) (*entities.SapRole, error) {
	return s.repository.Find(ctx, id)
}

func (s *SapRoleService) Create(ctx context.Context, payload dto.CreateSapRoleDTO) (*entities.SapRole, error) {
	created, err := s.repository.Create(ctx, entities.SapRole{
		Name:        strings.TrimSpace(payload.Name),
		Key:         strings.TrimSpace(payload.Key),
		RoleGroupID: payload.RoleGroupID,
		Description: null.StringFromPtr(payload.Description),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("SAP role created", zap.Uint64("id", created.ID), zap.String("key", created.Key))
	s.cache.invalidate(ctx, constants.CacheKeySapRoleList)
	return created, nil
}

func (s *SapRoleService) Update(ctx context.Context, id uint64, payload dto.UpdateSapRoleDTO) (*entities.SapRole, error) {
	updated, err := s.repository.Update(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, constants.CacheKeySapRoleList)
	return updated, nil
}

func (s *SapRoleService) Delete(ctx context.Context, id uint64) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("SAP role deleted", zap.Uint64("id", id))
	s.cache.invalidate(ctx, constants.CacheKeySapRoleList)
	return nil
}

func (s *SapRoleService) roles(ctx context.Context) ([]entities.SapRole, error) {
	return cached(ctx, s.cache, constants.CacheKeySapRoleList, func(ctx context.Context) ([]entities.SapRole, error) {
		items, _, err := s.repository.List(ctx, types.Filter{})
		return items, err
	})
}

func (s *SapRoleService) Groups(ctx context.Context) ([]dto.SapGroupDTO, error) {
	groups, err := s.roleGroups.Names(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles(ctx)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[uint64][]dto.SapProfileDTO, len(groups))
	for _, role := range roles {
		byGroup[role.RoleGroupID] = append(byGroup[role.RoleGroupID], dto.NewSapProfileDTO(role))
	}

	out := make([]dto.SapGroupDTO, 0, len(groups))
	for _, g := range groups {
		profiles := byGroup[g.ID]
		if profiles == nil {
			profiles = []dto.SapProfileDTO{}
		}
		out = append(out, dto.SapGroupDTO{ID: g.ID, Name: g.Name, Profiles: profiles})
	}
	return out, nil
}

func (s *SapRoleService) Categories(ctx context.Context) ([]dto.SapCategoryDTO, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SapCategoryDTO, 0, len(groups))
	for _, g := range groups {
		out = append(out, dto.SapCategoryDTO{ID: g.ID, Name: g.Name, ProfileCount: int64(len(g.Profiles))})
	}
	return out, nil
}

func (s *SapRoleService) GroupsByCategory(ctx context.Context, category string) ([]dto.SapGroupDTO, error) {
	groups, err := s.Groups(ctx)
	if err != nil {
		return nil, err
	}
	category = strings.TrimSpace(category)
	id, idErr := strconv.ParseUint(category, 10, 64)

	var out []dto.SapGroupDTO
	for _, g := range groups {
		if (idErr == nil && g.ID == id) || strings.EqualFold(g.Name, category) {
			out = append(out, g)
		}
	}
	if len(out) == 0 {
		return nil, apperrors.NotFound("role group", 0)
	}
	return out, nil
}

func (s *SapRoleService) Statistics(ctx context.Context) (*entities.SapStatistics, error) {
	return s.repository.Statistics(ctx)
}

func (s *SapRoleService) Search(ctx context.Context, query string) ([]entities.SapRole, error) {
	items, _, err := s.repository.List(ctx, types.Filter{Search: strings.TrimSpace(query)})
	return items, err
}
