package services

import (
	"context"
	"fmt"
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

type LookupServiceInterface interface {
	Table() repositories.LookupTable
	List(ctx context.Context, filter types.Filter) ([]entities.LookupItem, uint64, error)
	// Names returns every row ordered by name, served from the read cache.
	Names(ctx context.Context) ([]entities.LookupItem, error)
	Find(ctx context.Context, id uint64) (*entities.LookupItem, error)
	FindByName(ctx context.Context, name string) (*entities.LookupItem, error)
	Create(ctx context.Context, payload dto.CreateLookupDTO) (*entities.LookupItem, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateLookupDTO) (*entities.LookupItem, error)
	Delete(ctx context.Context, id uint64) error
}

type LookupService struct {
	repository repositories.LookupRepositoryInterface
	cache      readCache
	// dependentKeys are cache entries embedding names of this table.
	dependentKeys []string
	logger        *zap.Logger
}

func NewLookupService(
	repository repositories.LookupRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) LookupServiceInterface {
	return &LookupService{
		repository:    repository,
		cache:         newReadCache(cache, cacheTTL, logger),
		dependentKeys: dependentCacheKeys(repository.Table()),
		logger:        logger,
	}
}

func lookupListKey(table repositories.LookupTable) string {
	return fmt.Sprintf(constants.CacheKeyLookupList, table.Table)
}

// dependentCacheKeys lists cached reads that join this table's names, child tables included.
func dependentCacheKeys(table repositories.LookupTable) []string {
	switch table.Table {
	case repositories.DivisionTable.Table:
		return []string{lookupListKey(repositories.TeamTable)}
	case repositories.TeamTable.Table:
		return []string{lookupListKey(repositories.FunctionTable)}
	case repositories.CategoryTable.Table:
		return []string{constants.CacheKeyHardwareList}
	case repositories.ManufacturerTable.Table:
		return []string{constants.CacheKeySoftwareList}
	case repositories.RoleGroupTable.Table:
		return []string{constants.CacheKeySapRoleList}
	}
	return nil
}

func (s *LookupService) Table() repositories.LookupTable { return s.repository.Table() }

func (s *LookupService) cacheKey() string {
	return lookupListKey(s.repository.Table())
}

func (s *LookupService) List(ctx context.Context, filter types.Filter) ([]entities.LookupItem, uint64, error) {
	return s.repository.List(ctx, filter)
}

func (s *LookupService) Names(ctx context.Context) ([]entities.LookupItem, error) {
	return cached(ctx, s.cache, s.cacheKey(), func(ctx context.Context) ([]entities.LookupItem, error) {
		items, _, err := s.repository.List(ctx, types.Filter{})
		return items, err
	})
}

func (s *LookupService) Find(ctx context.Context, id uint64) (*entities.LookupItem, error) {
	return s.repository.Find(ctx, id)
}

func (s *LookupService) FindByName(ctx context.Context, name string) (*entities.LookupItem, error) {
	return s.repository.FindByName(ctx, name)
}

func (s *LookupService) validateParent(payloadParent *uint64) error {
	if payloadParent == nil || *payloadParent == 0 {
		return nil
	}
	if !s.repository.Table().HasParent() {
		return apperrors.NewValidationError("parent_id", "is not supported for "+s.repository.Table().Entity)
	}
	return nil
}

func (s *LookupService) Create(ctx context.Context, payload dto.CreateLookupDTO) (*entities.LookupItem, error) {
	if err := s.validateParent(payload.ParentID); err != nil {
		return nil, err
	}

	parent := null.Uint64FromPtr(payload.ParentID)
	if parent.Valid && parent.Uint64 == 0 {
		parent = null.Uint64{}
	}
	created, err := s.repository.Create(ctx, entities.LookupItem{Name: payload.Name, ParentID: parent})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lookup row created",
		zap.String("table", s.repository.Table().Table),
		zap.Uint64("id", created.ID),
		zap.String("name", created.Name),
	)
	s.invalidate(ctx)
	return created, nil
}

func (s *LookupService) Update(ctx context.Context, id uint64, payload dto.UpdateLookupDTO) (*entities.LookupItem, error) {
	if err := s.validateParent(payload.ParentID); err != nil {
		return nil, err
	}

	updated, err := s.repository.Update(ctx, id, payload.Name, payload.ParentID)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *LookupService) Delete(ctx context.Context, id uint64) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("lookup row deleted", zap.String("table", s.repository.Table().Table), zap.Uint64("id", id))
	s.invalidate(ctx)
	return nil
}

func (s *LookupService) invalidate(ctx context.Context) {
	s.cache.invalidate(ctx, append([]string{s.cacheKey()}, s.dependentKeys...)...)
}

// ResolveLookup finds a row by numeric id or case-insensitive name.
func ResolveLookup(ctx context.Context, lookup LookupServiceInterface, ref string) (*entities.LookupItem, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		return lookup.Find(ctx, id)
	}
	return lookup.FindByName(ctx, ref)
}
