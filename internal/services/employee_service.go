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

type EmployeeServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.Employee, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.Employee, error)
	Create(ctx context.Context, payload dto.CreateEmployeeDTO) (*entities.Employee, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateEmployeeDTO) (*entities.Employee, error)
	Delete(ctx context.Context, id uint64) error
	// Supervisors lists the distinct supervisor names, served from the read cache.
	Supervisors(ctx context.Context) ([]string, error)
}

type EmployeeService struct {
	repository repositories.EmployeeRepositoryInterface
	cache      readCache
	logger     *zap.Logger
}

func NewEmployeeService(
	repository repositories.EmployeeRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	cacheTTL time.Duration,
	logger *zap.Logger,
) EmployeeServiceInterface {
	return &EmployeeService{
		repository: repository,
		cache:      newReadCache(cache, cacheTTL, logger),
		logger:     logger,
	}
}

func (s *EmployeeService) List(ctx context.Context, filter types.Filter) ([]entities.Employee, uint64, error) {
	return s.repository.List(ctx, filter)
}

func (s *EmployeeService) Find(ctx context.Context, id uint64) (*entities.Employee, error) {
	return s.repository.Find(ctx, id)
}

func optionalRef(id *uint64) null.Uint64 {
	if id == nil || *id == 0 {
		return null.Uint64{}
	}
	return null.Uint64From(*id)
}

func optionalText(s *string) null.String {
	if s == nil || strings.TrimSpace(*s) == "" {
		return null.String{}
	}
	return null.StringFrom(strings.TrimSpace(*s))
}

func (s *EmployeeService) Create(ctx context.Context, payload dto.CreateEmployeeDTO) (*entities.Employee, error) {
	email := optionalText(payload.Email)
	if email.Valid {
		email.String = strings.ToLower(email.String)
	}
	created, err := s.repository.Create(ctx, entities.Employee{
		EmployeeNumber: optionalText(payload.EmployeeNumber),
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		Email:          email,
		EmployeeType:   payload.EmployeeType,
		DivisionID:     optionalRef(payload.DivisionID),
		PositionID:     optionalRef(payload.PositionID),
		SupervisorName: optionalText(payload.SupervisorName),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("employee created", zap.Uint64("id", created.ID), zap.String("name", created.FullName()))
	s.cache.invalidate(ctx, constants.CacheKeySupervisors)
	return created, nil
}

func (s *EmployeeService) Update(ctx context.Context, id uint64, payload dto.UpdateEmployeeDTO) (*entities.Employee, error) {
	updated, err := s.repository.Update(ctx, id, payload)
	if err != nil {
		return nil, err
	}
	s.cache.invalidate(ctx, constants.CacheKeySupervisors)
	return updated, nil
}

func (s *EmployeeService) Delete(ctx context.Context, id uint64) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("employee deleted", zap.Uint64("id", id))
	s.cache.invalidate(ctx, constants.CacheKeySupervisors)
	return nil
}

func (s *EmployeeService) Supervisors(ctx context.Context) ([]string, error) {
	return cached(ctx, s.cache, constants.CacheKeySupervisors, s.repository.Supervisors)
}
