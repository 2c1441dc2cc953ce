package services

import (
	"context"
	"fmt"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/repositories"
	"pvb-admin/pkg/types"
	"pvb-admin/pkg/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceInterface interface {
	Overview(ctx context.Context) (*dto.DashboardDTO, error)
}

type DashboardService struct {
	categories    repositories.LookupRepositoryInterface
	manufacturers repositories.LookupRepositoryInterface
	roleGroups    repositories.LookupRepositoryInterface
	profiles      repositories.ReferenceProfileRepositoryInterface
	orders        repositories.OrderRepositoryInterface
	logger        *zap.Logger
}

func NewDashboardService(
	categories repositories.LookupRepositoryInterface,
	manufacturers repositories.LookupRepositoryInterface,
	roleGroups repositories.LookupRepositoryInterface,
	profiles repositories.ReferenceProfileRepositoryInterface,
	orders repositories.OrderRepositoryInterface,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{
		categories:    categories,
		manufacturers: manufacturers,
		roleGroups:    roleGroups,
		profiles:      profiles,
		orders:        orders,
		logger:        logger,
	}
}

// countOnly selects a single row; callers only need the total.
var countOnly = types.Filter{Limit: 1, WithPagination: true}

func groupedTotal(ctx context.Context, lookup repositories.LookupRepositoryInterface, dependent repositories.Dependent) (dto.GroupedTotalDTO, error) {
	groups, err := lookup.ListWithCounts(ctx, dependent)
	if err != nil {
		return dto.GroupedTotalDTO{}, err
	}
	out := dto.GroupedTotalDTO{Groups: groups}
	for _, g := range groups {
		out.Total += g.Count
	}
	return out, nil
}

func (s *DashboardService) Overview(ctx context.Context) (*dto.DashboardDTO, error) {
	out := &dto.DashboardDTO{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Hardware, err = groupedTotal(gctx, s.categories, repositories.Dependent{Table: "hardware", Column: "category_id"})
		return err
	})
	g.Go(func() (err error) {
		out.Software, err = groupedTotal(gctx, s.manufacturers, repositories.Dependent{Table: "software", Column: "manufacturer_id"})
		return err
	})
	g.Go(func() (err error) {
		out.SapRoles, err = groupedTotal(gctx, s.roleGroups, repositories.Dependent{Table: "sap_roles", Column: "role_group_id"})
		return err
	})
	g.Go(func() (err error) {
		_, out.ProfilesActive, err = s.profiles.List(gctx, repositories.ProfileQuery{Active: utils.ToPtr(true)}, countOnly)
		return err
	})
	g.Go(func() (err error) {
		_, out.ProfilesInactive, err = s.profiles.List(gctx, repositories.ProfileQuery{Active: utils.ToPtr(false)}, countOnly)
		return err
	})
	g.Go(func() (err error) {
		_, out.OrdersOpen, err = s.orders.List(gctx, repositories.OrderQuery{OpenOnly: true}, countOnly)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return out, nil
}
