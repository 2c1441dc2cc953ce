package repositories

import (
	"context"
	"fmt"
	"strings"

	"pvb-admin/internal/entities"
	"pvb-admin/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// LookupTable describes a flat name table and what references it.
type LookupTable struct {
	Table        string
	Entity       string
	ParentTable  string
	ParentColumn string
	Dependents   []Dependent
}

func (t LookupTable) HasParent() bool { return t.ParentTable != "" }

var (
	DivisionTable = LookupTable{
		Table:  "divisions",
		Entity: "division",
		Dependents: []Dependent{
			{Table: "teams", Column: "division_id", Label: "teams"},
			{Table: "employees", Column: "division_id", Label: "employees"},
			{Table: "reference_profiles", Column: "division_id", Label: "reference profiles"},
		},
	}
	TeamTable = LookupTable{
		Table:        "teams",
		Entity:       "team",
		ParentTable:  "divisions",
		ParentColumn: "division_id",
		Dependents:   []Dependent{{Table: "functions", Column: "team_id", Label: "functions"}},
	}
	FunctionTable = LookupTable{
		Table:        "functions",
		Entity:       "function",
		ParentTable:  "teams",
		ParentColumn: "team_id",
	}
	PositionTable = LookupTable{
		Table:      "positions",
		Entity:     "position",
		Dependents: []Dependent{{Table: "employees", Column: "position_id", Label: "employees"}},
	}
	CategoryTable = LookupTable{
		Table:      "categories",
		Entity:     "category",
		Dependents: []Dependent{{Table: "hardware", Column: "category_id", Label: "hardware items"}},
	}
	ManufacturerTable = LookupTable{
		Table:      "manufacturers",
		Entity:     "manufacturer",
		Dependents: []Dependent{{Table: "software", Column: "manufacturer_id", Label: "software items"}},
	}
	RoleGroupTable = LookupTable{
		Table:      "role_groups",
		Entity:     "role group",
		Dependents: []Dependent{{Table: "sap_roles", Column: "role_group_id", Label: "SAP roles"}},
	}
	ChangeTypeTable = LookupTable{
		Table:      "change_types",
		Entity:     "change type",
		Dependents: []Dependent{{Table: "orders", Column: "change_type_id", Label: "orders"}},
	}
)

var lookupAllowedSortFields = map[string]string{"id": "t.id", "name": "t.name", "created_at": "t.created_at"}

type LookupRepositoryInterface interface {
	Table() LookupTable
	List(ctx context.Context, filter types.Filter) ([]entities.LookupItem, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.LookupItem, error)
	FindByName(ctx context.Context, name string) (*entities.LookupItem, error)
	// ListWithCounts returns every row with the number of rows of dependent referencing it.
	ListWithCounts(ctx context.Context, dependent Dependent) ([]entities.NamedCount, error)
	Create(ctx context.Context, item entities.LookupItem) (*entities.LookupItem, error)
	Update(ctx context.Context, id uint64, name *string, parentID *uint64) (*entities.LookupItem, error)
	Delete(ctx context.Context, id uint64) error
}

type LookupRepository struct {
	storage   *pgxpool.Pool
	txManager TxManagerInterface
	table     LookupTable
	logger    *zap.Logger
}

func NewLookupRepository(storage *pgxpool.Pool, txManager TxManagerInterface, table LookupTable, logger *zap.Logger) LookupRepositoryInterface {
	return &LookupRepository{storage: storage, txManager: txManager, table: table, logger: logger}
}

func (r *LookupRepository) Table() LookupTable { return r.table }

func scanLookupItem(row pgx.Row) (*entities.LookupItem, error) {
	var item entities.LookupItem
	if err := row.Scan(&item.ID, &item.Name, &item.ParentID, &item.ParentName, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *LookupRepository) baseSelect(columns ...string) sq.SelectBuilder {
	b := psql.Select(columns...).From(r.table.Table + " t")
	if r.table.HasParent() {
		b = b.LeftJoin(fmt.Sprintf("%s p ON p.id = t.%s", r.table.ParentTable, r.table.ParentColumn))
	}
	return b
}

func (r *LookupRepository) itemColumns() []string {
	if r.table.HasParent() {
		return []string{"t.id", "t.name", "t." + r.table.ParentColumn, "p.name", "t.created_at", "t.updated_at"}
	}
	return []string{"t.id", "t.name", "NULL::bigint", "NULL::text", "t.created_at", "t.updated_at"}
}

func (r *LookupRepository) conditions(filter types.Filter) sq.And {
	where := sq.And{}
	if filter.Search != "" {
		where = append(where, searchCondition(filter.Search, "t.name"))
	}
	if r.table.HasParent() {
		for _, key := range []string{"parent_id", r.table.ParentColumn} {
			if raw, ok := filter.Filter[key]; ok {
				where = append(where, sq.Eq{"t." + r.table.ParentColumn: parseIDList(raw)})
			}
		}
		if name, ok := filterString(filter, "parent"); ok {
			where = append(where, sq.Expr("lower(p.name) = lower(?)", name))
		}
	}
	return where
}

func (r *LookupRepository) List(ctx context.Context, filter types.Filter) ([]entities.LookupItem, uint64, error) {
	where := r.conditions(filter)

	total, err := countRows(ctx, r.storage, r.baseSelect("COUNT(*)").Where(where))
	if err != nil || total == 0 {
		return []entities.LookupItem{}, total, err
	}

	b := r.baseSelect(r.itemColumns()...).Where(where)
	b = applySort(b, filter.Sort, lookupAllowedSortFields, "t.name ASC")
	b = applyPage(b, filter)

	items, err := queryRows(ctx, r.storage, b, scanLookupItem)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", r.table.Table, err)
	}
	return items, total, nil
}

func (r *LookupRepository) Find(ctx context.Context, id uint64) (*entities.LookupItem, error) {
	item, err := queryRow(ctx, r.storage, r.baseSelect(r.itemColumns()...).Where(sq.Eq{"t.id": id}), scanLookupItem)
	return item, notFoundOr(err, r.table.Entity, id)
}

func (r *LookupRepository) FindByName(ctx context.Context, name string) (*entities.LookupItem, error) {
	b := r.baseSelect(r.itemColumns()...).Where(sq.Expr("lower(t.name) = lower(?)", strings.TrimSpace(name)))
	item, err := queryRow(ctx, r.storage, b, scanLookupItem)
	return item, notFoundOr(err, r.table.Entity, 0)
}

func (r *LookupRepository) ListWithCounts(ctx context.Context, dependent Dependent) ([]entities.NamedCount, error) {
	query := fmt.Sprintf(`SELECT t.id, t.name, COUNT(d.%[3]s) FROM %[1]s t LEFT JOIN %[2]s d ON d.%[3]s = t.id GROUP BY t.id, t.name ORDER BY t.name`,
		r.table.Table, dependent.Table, dependent.Column)
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]entities.NamedCount, 0)
	for rows.Next() {
		var c entities.NamedCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// returning re-reads through the join so the parent name is filled in.
func (r *LookupRepository) returning(ctx context.Context, q querier, query string, args []interface{}) (*entities.LookupItem, error) {
	var id uint64
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return nil, err
	}
	return queryRow(ctx, q, r.baseSelect(r.itemColumns()...).Where(sq.Eq{"t.id": id}), scanLookupItem)
}

func (r *LookupRepository) Create(ctx context.Context, item entities.LookupItem) (*entities.LookupItem, error) {
	b := psql.Insert(r.table.Table).Columns("name").Values(strings.TrimSpace(item.Name))
	if r.table.HasParent() {
		b = psql.Insert(r.table.Table).
			Columns("name", r.table.ParentColumn).
			Values(strings.TrimSpace(item.Name), item.ParentID)
	}
	query, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, err
	}

	created, err := r.returning(ctx, r.storage, query, args)
	if err != nil {
		return nil, translateWriteError(r.table.Table, err)
	}
	return created, nil
}

// Update changes only the given fields. parentID 0 detaches the row from its parent.
func (r *LookupRepository) Update(ctx context.Context, id uint64, name *string, parentID *uint64) (*entities.LookupItem, error) {
	b := psql.Update(r.table.Table).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))

	hasChanges := false
	if name != nil {
		b = b.Set("name", strings.TrimSpace(*name))
		hasChanges = true
	}
	if parentID != nil && r.table.HasParent() {
		parent := null.NewUint64(*parentID, *parentID != 0)
		b = b.Set(r.table.ParentColumn, parent)
		hasChanges = true
	}
	if !hasChanges {
		return r.Find(ctx, id)
	}

	query, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		return nil, err
	}
	updated, err := r.returning(ctx, r.storage, query, args)
	if err != nil {
		return nil, notFoundOr(translateWriteError(r.table.Table, err), r.table.Entity, id)
	}
	return updated, nil
}

func (r *LookupRepository) Delete(ctx context.Context, id uint64) error {
	return r.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return deleteGuarded(ctx, tx, r.table.Table, r.table.Entity, id, r.table.Dependents)
	})
}
