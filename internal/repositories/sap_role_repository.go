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
	"golang.org/x/sync/errgroup"
)

const sapRoleTable = "sap_roles"

var (
	sapRoleAllowedSortFields = map[string]string{"id": "r.id", "name": "r.name", "key": "r.key", "role_group": "g.name"}
	sapRoleDependents        = []Dependent{
		{Table: "reference_profile_sap_roles", Column: "sap_role_id", Label: "reference profiles"},
		{Table: "order_elements", Column: "sap_role_id", Label: "order elements"},
	}
	sapRoleColumns = []string{"r.id", "r.name", "r.key", "r.role_group_id", "g.name", "r.description", "r.created_at", "r.updated_at"}
)

type SapRoleRepositoryInterface interface {
	// List understands filter keys role_group_id, role_group (name), profile and not_in_profile.
	List(ctx context.Context, filter types.Filter) ([]entities.SapRole, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.SapRole, error)
	ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error)
	Statistics(ctx context.Context) (*entities.SapStatistics, error)
	Create(ctx context.Context, role entities.SapRole) (*entities.SapRole, error)
	Update(ctx context.Context, id uint64, dto dto.UpdateSapRoleDTO) (*entities.SapRole, error)
	Delete(ctx context.Context, id uint64) error
}

type SapRoleRepository struct {
	storage   *pgxpool.Pool
	txManager TxManagerInterface
	logger    *zap.Logger
}

func NewSapRoleRepository(storage *pgxpool.Pool, txManager TxManagerInterface, logger *zap.Logger) SapRoleRepositoryInterface {
	return &SapRoleRepository{storage: storage, txManager: txManager, logger: logger}
}

func scanSapRole(row pgx.Row) (*entities.SapRole, error) {
	var s entities.SapRole
	if err := row.Scan(&s.ID, &s.Name, &s.Key, &s.RoleGroupID, &s.RoleGroupName, &s.Description, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func selectSapRoles(columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).From("sap_roles r").Join("role_groups g ON g.id = r.role_group_id")
}

func (r *SapRoleRepository) conditions(filter types.Filter) sq.And {
	where := sq.And{}
	if filter.Search != "" {
		where = append(where, searchCondition(filter.Search, "r.name", "r.key", "r.description", "g.name"))
	}
	if raw, ok := filter.Filter["role_group_id"]; ok {
		where = append(where, sq.Eq{"r.role_group_id": parseIDList(raw)})
	}
	if name, ok := filterString(filter, "role_group"); ok {
		where = append(where, sq.Expr("lower(g.name) = lower(?)", name))
	}
	return membershipConditions(where, "r.id", entities.RelationSapRoles, filter.Filter)
}

func (r *SapRoleRepository) List(ctx context.Context, filter types.Filter) ([]entities.SapRole, uint64, error) {
	where := r.conditions(filter)

	total, err := countRows(ctx, r.storage, selectSapRoles("COUNT(*)").Where(where))
	if err != nil || total == 0 {
		return []entities.SapRole{}, total, err
	}

	b := applySort(selectSapRoles(sapRoleColumns...).Where(where), filter.Sort, sapRoleAllowedSortFields, "g.name ASC, r.name ASC")
	items, err := queryRows(ctx, r.storage, applyPage(b, filter), scanSapRole)
	if err != nil {
		return nil, 0, fmt.Errorf("list sap roles: %w", err)
	}
	return items, total, nil
}

func (r *SapRoleRepository) Find(ctx context.Context, id uint64) (*entities.SapRole, error) {
	s, err := queryRow(ctx, r.storage, selectSapRoles(sapRoleColumns...).Where(sq.Eq{"r.id": id}), scanSapRole)
	return s, notFoundOr(err, "SAP role", id)
}

func (r *SapRoleRepository) ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	return existingIDs(ctx, r.storage, sapRoleTable, ids)
}

// Statistics counts groups, roles and profile assignments concurrently.
func (r *SapRoleRepository) Statistics(ctx context.Context) (*entities.SapStatistics, error) {
	stats := &entities.SapStatistics{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.storage.QueryRow(gctx, `SELECT COUNT(*) FROM role_groups`).Scan(&stats.TotalGroups)
	})
	g.Go(func() error {
		return r.storage.QueryRow(gctx, `SELECT COUNT(*) FROM sap_roles`).Scan(&stats.TotalProfiles)
	})
	g.Go(func() error {
		return r.storage.QueryRow(gctx, `SELECT COUNT(*) FROM reference_profile_sap_roles`).Scan(&stats.TotalPermissions)
	})
	g.Go(func() error {
		rows, err := r.storage.Query(gctx,
			`SELECT g.id, g.name, COUNT(r.id) FROM role_groups g LEFT JOIN sap_roles r ON r.role_group_id = g.id GROUP BY g.id, g.name ORDER BY g.name`)
		if err != nil {
			return err
		}
		defer rows.Close()
		breakdown := make([]entities.NamedCount, 0)
		for rows.Next() {
			var c entities.NamedCount
			if err := rows.Scan(&c.ID, &c.Name, &c.Count); err != nil {
				return err
			}
			breakdown = append(breakdown, c)
		}
		stats.GroupsBreakdown = breakdown
		return rows.Err()
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("sap statistics: %w", err)
	}
	return stats, nil
}

func (r *SapRoleRepository) Create(ctx context.Context, role entities.SapRole) (*entities.SapRole, error) {
	var id uint64
	err := r.storage.QueryRow(ctx,
		`INSERT INTO sap_roles (name, key, role_group_id, description) VALUES ($1, $2, $3, $4) RETURNING id`,
		role.Name, role.Key, role.RoleGroupID, role.Description,
	).Scan(&id)
	if err != nil {
		return nil, translateWriteError(sapRoleTable, err)
	}
	return r.Find(ctx, id)
}

func (r *SapRoleRepository) Update(ctx context.Context, id uint64, dto dto.UpdateSapRoleDTO) (*entities.SapRole, error) {
	b := psql.Update(sapRoleTable).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))

	hasChanges := false
	if dto.Name != nil {
		b = b.Set("name", *dto.Name)
		hasChanges = true
	}
	if dto.Key != nil {
		b = b.Set("key", *dto.Key)
		hasChanges = true
	}
	if dto.RoleGroupID != nil {
		b = b.Set("role_group_id", *dto.RoleGroupID)
		hasChanges = true
	}
	if dto.Description != nil {
		b = b.Set("description", *dto.Description)
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
		return nil, translateWriteError(sapRoleTable, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFoundOr(pgx.ErrNoRows, "SAP role", id)
	}
	return r.Find(ctx, id)
}

func (r *SapRoleRepository) Delete(ctx context.Context, id uint64) error {
	return r.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return deleteGuarded(ctx, tx, sapRoleTable, "SAP role", id, sapRoleDependents)
	})
}
