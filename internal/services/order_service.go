package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/events"
	"pvb-admin/internal/repositories"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/eventbus"
	"pvb-admin/pkg/types"
	"pvb-admin/pkg/utils"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type OrderServiceInterface interface {
	List(ctx context.Context, query repositories.OrderQuery, filter types.Filter) ([]dto.OrderDTO, uint64, error)
	Get(ctx context.Context, id uint64) (*dto.OrderDetailDTO, error)
	// ListForUser returns the open orders of the employee whose email matches the caller.
	ListForUser(ctx context.Context, identity utils.Identity) ([]dto.OrderDTO, error)
	UpdateStatus(ctx context.Context, id uint64, status string, actor string) (*dto.OrderDTO, error)
	Process(ctx context.Context, id uint64, payload dto.ProcessOrderDTO) (*dto.OrderDTO, error)
	Stats(ctx context.Context) (*entities.OrderStats, error)
	// Statuses lists stored status labels, workflow states first.
	Statuses(ctx context.Context) ([]dto.OrderStatusOptionDTO, error)
	Export(ctx context.Context, query repositories.OrderQuery, format string) (*ExportFile, error)
}

type OrderService struct {
	orders    repositories.OrderRepositoryInterface
	statuses  repositories.OrderStatusRepositoryInterface
	employees repositories.EmployeeRepositoryInterface
	txManager repositories.TxManagerInterface
	bus       *eventbus.Bus
	// strict rejects transitions the workflow does not allow instead of only logging them.
	strict bool
	now    func() time.Time
	logger *zap.Logger
}

func NewOrderService(
	orders repositories.OrderRepositoryInterface,
	statuses repositories.OrderStatusRepositoryInterface,
	employees repositories.EmployeeRepositoryInterface,
	txManager repositories.TxManagerInterface,
	bus *eventbus.Bus,
	strict bool,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		orders:    orders,
		statuses:  statuses,
		employees: employees,
		txManager: txManager,
		bus:       bus,
		strict:    strict,
		now:       time.Now,
		logger:    logger,
	}
}

func toOrderDTOs(orders []entities.Order) []dto.OrderDTO {
	out := make([]dto.OrderDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, dto.NewOrderDTO(o))
	}
	return out
}

func (s *OrderService) List(ctx context.Context, query repositories.OrderQuery, filter types.Filter) ([]dto.OrderDTO, uint64, error) {
	orders, total, err := s.orders.List(ctx, query, filter)
	if err != nil {
		return nil, 0, err
	}
	return toOrderDTOs(orders), total, nil
}

func (s *OrderService) Get(ctx context.Context, id uint64) (*dto.OrderDetailDTO, error) {
	order, err := s.orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	var (
		profiles []entities.LookupItem
		elements []entities.Element
	)
	g.Go(func() (err error) {
		profiles, err = s.orders.Profiles(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		elements, err = s.orders.Elements(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load relations of order %d: %w", id, err)
	}

	detail := &dto.OrderDetailDTO{
		OrderDTO:   dto.NewOrderDTO(*order),
		Referenzen: make([]dto.OrderProfileDTO, 0, len(profiles)),
		Elemente:   make([]dto.OrderElementDTO, 0, len(elements)),
	}
	for _, p := range profiles {
		detail.Referenzen = append(detail.Referenzen, dto.OrderProfileDTO{ID: p.ID, Name: p.Name})
	}
	for _, e := range elements {
		detail.Elemente = append(detail.Elemente, dto.NewOrderElementDTO(e))
	}
	return detail, nil
}

func (s *OrderService) ListForUser(ctx context.Context, identity utils.Identity) ([]dto.OrderDTO, error) {
	if strings.TrimSpace(identity.Email) == "" {
		return nil, apperrors.ErrUnauthorized
	}
	employee, err := s.employees.FindByEmail(ctx, identity.Email)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Info("no employee linked to caller", zap.String("email", identity.Email))
		return []dto.OrderDTO{}, nil
	}
	if err != nil {
		return nil, err
	}

	orders, _, err := s.orders.List(ctx, repositories.OrderQuery{EmployeeID: employee.ID, OpenOnly: true}, types.Filter{})
	if err != nil {
		return nil, err
	}
	return toOrderDTOs(orders), nil
}

// statusName is the label stored for a requested status: the canonical state name for
// workflow labels, the trimmed label otherwise.
func statusName(label string) (string, entities.OrderState, bool) {
	state, known := entities.ParseOrderState(label)
	if known {
		return string(state), state, true
	}
	return strings.TrimSpace(label), "", false
}

// checkTransition decides whether current -> target may be applied. In permissive mode
// every change is applied and illegal ones are only logged.
func (s *OrderService) checkTransition(id uint64, current, target string) (bool, error) {
	from, fromKnown := entities.ParseOrderState(current)
	to, toKnown := entities.ParseOrderState(target)
	legal := fromKnown && toKnown && from.CanTransitionTo(to)
	if legal {
		return true, nil
	}

	if s.strict {
		if !toKnown {
			return false, fmt.Errorf("%w %q", apperrors.ErrUnknownStatus, target)
		}
		return false, fmt.Errorf("%w: %s -> %s", apperrors.ErrIllegalTransition, current, target)
	}
	s.logger.Warn("order status change outside the workflow",
		zap.Uint64("order_id", id),
		zap.String("from", current),
		zap.String("to", target),
	)
	return false, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint64, status string, actor string) (*dto.OrderDTO, error) {
	name, _, _ := statusName(status)
	if name == "" {
		return nil, apperrors.NewValidationError("status", "is required")
	}

	var (
		previous string
		legal    bool
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		if previous, err = s.orders.LockStatusInTx(ctx, tx, id); err != nil {
			return err
		}
		if legal, err = s.checkTransition(id, previous, name); err != nil {
			return err
		}
		row, err := s.statuses.FindOrCreateInTx(ctx, tx, name)
		if err != nil {
			return fmt.Errorf("resolve status %q: %w", name, err)
		}
		return s.orders.SetStatusInTx(ctx, tx, id, row.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed",
		zap.Uint64("order_id", id),
		zap.String("from", previous),
		zap.String("to", name),
		zap.String("actor", actor),
	)
	s.publishStatusChange(ctx, id, previous, name, legal, actor)
	return s.find(ctx, id)
}

// Process completes the order, records who handled it and appends notes to the comment.
func (s *OrderService) Process(ctx context.Context, id uint64, payload dto.ProcessOrderDTO) (*dto.OrderDTO, error) {
	target := string(entities.StateCompleted)
	processedBy := strings.TrimSpace(payload.ProcessedBy)

	var (
		previous string
		legal    bool
	)
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		if previous, err = s.orders.LockStatusInTx(ctx, tx, id); err != nil {
			return err
		}
		if legal, err = s.checkTransition(id, previous, target); err != nil {
			return err
		}
		row, err := s.statuses.FindOrCreateInTx(ctx, tx, target)
		if err != nil {
			return fmt.Errorf("resolve status %q: %w", target, err)
		}
		return s.orders.MarkProcessedInTx(ctx, tx, id, row.ID, processedBy, payload.Notes)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order processed", zap.Uint64("order_id", id), zap.String("processed_by", processedBy))
	s.publishStatusChange(ctx, id, previous, target, legal, processedBy)
	return s.find(ctx, id)
}

func (s *OrderService) publishStatusChange(ctx context.Context, id uint64, from, to string, legal bool, actor string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.OrderStatusChangedEvent{OrderID: id, From: from, To: to, Legal: legal, Actor: actor})
}

func (s *OrderService) find(ctx context.Context, id uint64) (*dto.OrderDTO, error) {
	order, err := s.orders.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	out := dto.NewOrderDTO(*order)
	return &out, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns Monday 00:00 of the week containing t.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func (s *OrderService) Statuses(ctx context.Context) ([]dto.OrderStatusOptionDTO, error) {
	rows, err := s.statuses.List(ctx)
	if err != nil {
		return nil, err
	}
	rank := func(name string) int {
		if state, ok := entities.ParseOrderState(name); ok {
			for i, known := range entities.OrderStates {
				if known == state {
					return i
				}
			}
		}
		return len(entities.OrderStates)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rank(rows[i].Name) < rank(rows[j].Name) })

	out := make([]dto.OrderStatusOptionDTO, 0, len(rows))
	for _, row := range rows {
		option := dto.OrderStatusOptionDTO{ID: row.ID, Name: row.Name, Next: []string{}}
		if state, ok := entities.ParseOrderState(row.Name); ok {
			option.State = state.String()
			for _, next := range state.Next() {
				option.Next = append(option.Next, next.String())
			}
		}
		out = append(out, option)
	}
	return out, nil
}

func (s *OrderService) Stats(ctx context.Context) (*entities.OrderStats, error) {
	now := s.now()
	today, week := startOfDay(now), startOfWeek(now)

	stats := &entities.OrderStats{}
	var byStatus map[string]int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Total, err = s.orders.Count(gctx, nil)
		return err
	})
	g.Go(func() (err error) {
		stats.Today, err = s.orders.Count(gctx, &today)
		return err
	})
	g.Go(func() (err error) {
		stats.ThisWeek, err = s.orders.Count(gctx, &week)
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = s.orders.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.ByType, err = s.orders.CountByType(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("order stats: %w", err)
	}

	for label, n := range byStatus {
		state, ok := entities.ParseOrderState(label)
		if !ok {
			continue
		}
		switch state {
		case entities.StatePending:
			stats.Pending += n
		case entities.StateInProgress:
			stats.InProgress += n
		case entities.StateCompleted:
			stats.Completed += n
		case entities.StateCancelled:
			stats.Cancelled += n
		}
	}
	return stats, nil
}
