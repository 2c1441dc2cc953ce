package repositories

import (
	"context"
	"fmt"
	"strconv"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const softwareTable = "software"

var (
	softwareAllowedSortFields = map[string]string{"id": "s.id", "name": "s.name", "manufacturer": "m.name", "created_at": "s.created_at"}
	softwareDependents        = []Dependent{
		{Table: "reference_profile_software", Column: "software_id", Label: "reference profiles"},
		{Table: "order_elements", Column: "software_id", Label: "order elements"},
	}
	softwareColumns = []string{"s.id", "s.name", "s.manufacturer_id", "m.name", "s.version", "s.active", "s.created_at", "s.updated_at"}
)

type SoftwareRepositoryInterface interface {
	// List understands filter keys manufacturer_id, manufacturer (name), active, profile and not_in_profile.
	List(ctx context.Context, filter types.Filter) ([]entities.Software, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.Software, error)
	ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error)
	Create(ctx context.Context, sw entities.Software) (*entities.Software, error)
	Update(ctx context.Context, id uint64, dto dto.UpdateSoftwareDTO) (*entities.Software, error)
	Delete(ctx context.Context, id uint64) error
}

type SoftwareRepository struct {
	storage   *pgxpool.Pool
	txManager TxManagerInterface
	logger    *zap.Logger
}

func NewSoftwareRepository(storage *pgxpool.Pool, txManager TxManagerInterface, logger *zap.Logger) SoftwareRepositoryInterface {
	return &SoftwareRepository{storage: storage, txManager: txManager, logger: logger}
}

func scanSoftware(row pgx.Row) (*entities.Software, error) {
	var s entities.Software
	if err := row.Scan(&s.ID, &s.Name, &s.ManufacturerID, &s.ManufacturerName, &s.Version, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func selectSoftware(columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).From("software s").Join("manufacturers m ON m.id = s.manufacturer_id")
}

func (r *SoftwareRepository) conditions(filter types.Filter) sq.And {
	where := sq.And{}
	if filter.Search != "" {
		where = append(where, searchCondition(filter.Search, "s.name", "m.name", "s.version"))
	}
	if raw, ok := filter.Filter["manufacturer_id"]; ok {
		where = append(where, sq.Eq{"s.manufacturer_id": parseIDList(raw)})
	}
	if name, ok := filterString(filter, "manufacturer"); ok {
		where = append(where, sq.Expr("lower(m.name) = lower(?)", name))
	}
	if raw, ok := filterString(filter, "active"); ok {
		if active, err := strconv.ParseBool(raw); err == nil {
			where = append(where, sq.Eq{"s.active": active})
		}
	}
	return membershipConditions(where, "s.id", entities.RelationSoftware, filter.Filter)
}

func (r *SoftwareRepository) List(ctx context.Context, filter types.Filter) ([]entities.Software, uint64, error) {
	where := r.conditions(filter)

	total, err := countRows(ctx, r.storage, selectSoftware("COUNT(*)").Where(where))
	if err != nil || total == 0 {
		return []entities.Software{}, total, err
	}

	b := applySort(selectSoftware(softwareColumns...).Where(where), filter.Sort, softwareAllowedSortFields, "m.name ASC, s.name ASC")
	items, err := queryRows(ctx, r.storage, applyPage(b, filter), scanSoftware)
	if err != nil {
		return nil, 0, fmt.Errorf("list software: %w", err)
	}
	return items, total, nil
}

func (r *SoftwareRepository) Find(ctx context.Context, id uint64) (*entities.Software, error) {
	s, err := queryRow(ctx, r.storage, selectSoftware(softwareColumns...).Where(sq.Eq{"s.id": id}), scanSoftware)
	return s, notFoundOr(err, "software", id)
}

func (r *SoftwareRepository) ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	return existingIDs(ctx, r.storage, softwareTable, ids)
}

func (r *SoftwareRepository) Create(ctx context.Context, sw entities.Software) (*entities.Software, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO software (name, manufacturer_id, version, active) VALUES ($1, $2, $3, $4) RETURNING id`,
		sw.Name, sw.ManufacturerID, sw.Version, sw.Active,
	).Scan(&id)
	if err != nil {
		return nil, translateWriteError(softwareTable, err)
	}
	return r.Find(ctx, id)
}

func (r *SoftwareRepository) Update(ctx context.Context, id uint64, dto dto.UpdateSoftwareDTO) (*entities.Software, error) {
	b := psql.Update(softwareTable).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))

	hasChanges := false
	if dto.Name != nil {
		b = b.Set("name", *dto.Name)
		hasChanges = true
	}
	if dto.ManufacturerID != nil {
		b = b.Set("manufacturer_id", *dto.ManufacturerID)
		hasChanges = true
	}
	if dto.Version != nil {
		b = b.Set("version", *dto.Version)
		hasChanges = true
	}
	if dto.Active != nil {
		b = b.Set("active", *dto.Active)
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
		return nil, translateWriteError(softwareTable, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFoundOr(pgx.ErrNoRows, "software", id)
	}
	return r.Find(ctx, id)
}

func (r *SoftwareRepository) Delete(ctx context.Context, id uint64) error {
	return r.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return deleteGuarded(ctx, tx, softwareTable, "software", id, softwareDependents)
	})
}
