package repositories

import (
	"context"
	"fmt"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const hardwareTable = "hardware"

var (
	hardwareAllowedSortFields = map[string]string{"id": "h.id", "name": "h.name", "category": "c.name", "created_at": "h.created_at"}
	hardwareDependents        = []Dependent{
		{Table: "reference_profile_hardware", Column: "hardware_id", Label: "reference profiles"},
		{Table: "order_elements", Column: "hardware_id", Label: "order elements"},
	}
	hardwareColumns = []string{"h.id", "h.name", "h.category_id", "c.name", "h.specifications", "h.created_at", "h.updated_at"}
)

type HardwareRepositoryInterface interface {
	// List understands filter keys category_id, category (name), profile and not_in_profile (id or name).
	List(ctx context.Context, filter types.Filter) ([]entities.Hardware, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.Hardware, error)
	ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error)
	Create(ctx context.Context, hw entities.Hardware) (*entities.Hardware, error)
	Update(ctx context.Context, id uint64, dto dto.UpdateHardwareDTO) (*entities.Hardware, error)
	Delete(ctx context.Context, id uint64) error
}

type HardwareRepository struct {
	storage   *pgxpool.Pool
	txManager TxManagerInterface
	logger    *zap.Logger
}

func NewHardwareRepository(storage *pgxpool.Pool, txManager TxManagerInterface, logger *zap.Logger) HardwareRepositoryInterface {
	return &HardwareRepository{storage: storage, txManager: txManager, logger: logger}
}

func scanHardware(row pgx.Row) (*entities.Hardware, error) {
	var h entities.Hardware
	if err := row.Scan(&h.ID, &h.Name, &h.CategoryID, &h.CategoryName, &h.Specifications, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

func selectHardware(columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).From("hardware h").Join("categories c ON c.id = h.category_id")
}

func (r *HardwareRepository) conditions(filter types.Filter) sq.And {
	where := sq.And{}
	if filter.Search != "" {
		where = append(where, searchCondition(filter.Search, "h.name", "c.name", "h.specifications"))
	}
	if raw, ok := filter.Filter["category_id"]; ok {
		where = append(where, sq.Eq{"h.category_id": parseIDList(raw)})
	}
	if name, ok := filterString(filter, "category"); ok {
		where = append(where, sq.Expr("lower(c.name) = lower(?)", name))
	}
	return membershipConditions(where, "h.id", entities.RelationHardware, filter.Filter)
}

func (r *HardwareRepository) List(ctx context.Context, filter types.Filter) ([]entities.Hardware, uint64, error) {
	where := r.conditions(filter)

	total, err := countRows(ctx, r.storage, selectHardware("COUNT(*)").Where(where))
	if err != nil || total == 0 {
		return []entities.Hardware{}, total, err
	}

	b := applySort(selectHardware(hardwareColumns...).Where(where), filter.Sort, hardwareAllowedSortFields, "c.name ASC, h.name ASC")
	items, err := queryRows(ctx, r.storage, applyPage(b, filter), scanHardware)
	if err != nil {
		return nil, 0, fmt.Errorf("list hardware: %w", err)
	}
	return items, total, nil
}

func (r *HardwareRepository) Find(ctx context.Context, id uint64) (*entities.Hardware, error) {
	h, err := queryRow(ctx, r.storage, selectHardware(hardwareColumns...).Where(sq.Eq{"h.id": id}), scanHardware)
	return h, notFoundOr(err, "hardware", id)
}

func (r *HardwareRepository) ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	return existingIDs(ctx, r.storage, hardwareTable, ids)
}

func (r *HardwareRepository) Create(ctx context.Context, hw entities.Hardware) (*entities.Hardware, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO hardware (name, category_id, specifications) VALUES ($1, $2, $3) RETURNING id`,
		hw.Name, hw.CategoryID, hw.Specifications,
	).Scan(&id)
	if err != nil {
		return nil, translateWriteError(hardwareTable, err)
	}
	return r.Find(ctx, id)
}

func (r *HardwareRepository) Update(ctx context.Context, id uint64, dto dto.UpdateHardwareDTO) (*entities.Hardware, error) {
	b := psql.Update(hardwareTable).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))

	hasChanges := false
	if dto.Name != nil {
		b = b.Set("name", *dto.Name)
		hasChanges = true
	}
	if dto.CategoryID != nil {
		b = b.Set("category_id", *dto.CategoryID)
		hasChanges = true
	}
	if dto.Specifications != nil {
		b = b.Set("specifications", *dto.Specifications)
		hasChanges = true
	}
	if !hasChanges {
		return r.Find(ctx, id)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	tag, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return nil, translateWriteError(hardwareTable, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFoundOr(pgx.ErrNoRows, "hardware", id)
	}
	return r.Find(ctx, id)
}

func (r *HardwareRepository) Delete(ctx context.Context, id uint64) error {
	return r.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return deleteGuarded(ctx, tx, hardwareTable, "hardware", id, hardwareDependents)
	})
}
