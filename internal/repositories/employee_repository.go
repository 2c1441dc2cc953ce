package repositories

import (
	"context"
	"fmt"
	"strings"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const employeeTable = "employees"

var (
	employeeAllowedSortFields = map[string]string{
		"id": "e.id", "first_name": "e.first_name", "last_name": "e.last_name", "division": "d.name", "created_at": "e.created_at",
	}
	employeeDependents = []Dependent{{Table: "orders", Column: "employee_id", Label: "orders"}}
	employeeColumns    = []string{
		"e.id", "e.employee_number", "e.first_name", "e.last_name", "e.email", "e.employee_type",
		"e.division_id", "d.name", "e.position_id", "p.name", "e.supervisor_name", "e.created_at", "e.updated_at",
	}
)

type EmployeeRepositoryInterface interface {
	List(ctx context.Context, filter types.Filter) ([]entities.Employee, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.Employee, error)
	FindByEmail(ctx context.Context, email string) (*entities.Employee, error)
	FindByNameInTx(ctx context.Context, tx pgx.Tx, firstName, lastName string) (*entities.Employee, error)
	CreateInTx(ctx context.Context, tx pgx.Tx, employee entities.Employee) (*entities.Employee, error)
	Create(ctx context.Context, employee entities.Employee) (*entities.Employee, error)
	Update(ctx context.Context, id uint64, dto dto.UpdateEmployeeDTO) (*entities.Employee, error)
	Delete(ctx context.Context, id uint64) error
	Supervisors(ctx context.Context) ([]string, error)
	ListWithoutEmail(ctx context.Context) ([]entities.Employee, error)
	SetEmail(ctx context.Context, id uint64, email string) error
}

type EmployeeRepository struct {
	storage   *pgxpool.Pool
	txManager TxManagerInterface
	logger    *zap.Logger
}

func NewEmployeeRepository(storage *pgxpool.Pool, txManager TxManagerInterface, logger *zap.Logger) EmployeeRepositoryInterface {
	return &EmployeeRepository{storage: storage, txManager: txManager, logger: logger}
}

func scanEmployee(row pgx.Row) (*entities.Employee, error) {
	var e entities.Employee
	err := row.Scan(
		&e.ID, &e.EmployeeNumber, &e.FirstName, &e.LastName, &e.Email, &e.EmployeeType,
		&e.DivisionID, &e.DivisionName, &e.PositionID, &e.PositionName, &e.SupervisorName,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func selectEmployees(columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).
		From("employees e").
		LeftJoin("divisions d ON d.id = e.division_id").
		LeftJoin("positions p ON p.id = e.position_id")
}

func (r *EmployeeRepository) conditions(filter types.Filter) sq.And {
	where := sq.And{}
	if filter.Search != "" {
		where = append(where, sq.Or{
			searchCondition(filter.Search, "e.first_name", "e.last_name", "e.employee_number", "e.email"),
			sq.ILike{"e.first_name || ' ' || e.last_name": containsPattern(filter.Search)},
		})
	}
	if raw, ok := filter.Filter["division_id"]; ok {
		where = append(where, sq.Eq{"e.division_id": parseIDList(raw)})
	}
	if raw, ok := filter.Filter["position_id"]; ok {
		where = append(where, sq.Eq{"e.position_id": parseIDList(raw)})
	}
	if kind, ok := filterString(filter, "employee_type"); ok {
		where = append(where, sq.Eq{"e.employee_type": kind})
	}
	return where
}

func (r *EmployeeRepository) List(ctx context.Context, filter types.Filter) ([]entities.Employee, uint64, error) {
	where := r.conditions(filter)

	total, err := countRows(ctx, r.storage, selectEmployees("COUNT(*)").Where(where))
	if err != nil || total == 0 {
		return []entities.Employee{}, total, err
	}

	b := applySort(selectEmployees(employeeColumns...).Where(where), filter.Sort, employeeAllowedSortFields, "e.last_name ASC, e.first_name ASC")
	items, err := queryRows(ctx, r.storage, applyPage(b, filter), scanEmployee)
	if err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}
	return items, total, nil
}

func (r *EmployeeRepository) find(ctx context.Context, q querier, where sq.Sqlizer) (*entities.Employee, error) {
	return queryRow(ctx, q, selectEmployees(employeeColumns...).Where(where).OrderBy("e.id").Limit(1), scanEmployee)
}

func (r *EmployeeRepository) Find(ctx context.Context, id uint64) (*entities.Employee, error) {
	e, err := r.find(ctx, r.storage, sq.Eq{"e.id": id})
	return e, notFoundOr(err, "employee", id)
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*entities.Employee, error) {
	e, err := r.find(ctx, r.storage, sq.Expr("lower(e.email) = lower(?)", strings.TrimSpace(email)))
	return e, notFoundOr(err, "employee", 0)
}

func (r *EmployeeRepository) FindByNameInTx(ctx context.Context, tx pgx.Tx, firstName, lastName string) (*entities.Employee, error) {
	e, err := r.find(ctx, tx, sq.And{
		sq.Expr("lower(e.first_name) = lower(?)", strings.TrimSpace(firstName)),
		sq.Expr("lower(e.last_name) = lower(?)", strings.TrimSpace(lastName)),
	})
	return e, notFoundOr(err, "employee", 0)
}

func (r *EmployeeRepository) insert(ctx context.Context, q querier, e entities.Employee) (*entities.Employee, error) {
	if e.EmployeeType == "" {
		e.EmployeeType = "intern"
	}
	var id uint64
	err := q.QueryRow(ctx,
		`INSERT INTO employees (employee_number, first_name, last_name, email, employee_type, division_id, position_id, supervisor_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		e.EmployeeNumber, strings.TrimSpace(e.FirstName), strings.TrimSpace(e.LastName), e.Email, e.EmployeeType,
		e.DivisionID, e.PositionID, e.SupervisorName,
	).Scan(&id)
	if err != nil {
		return nil, translateWriteError(employeeTable, err)
	}
	created, err := r.find(ctx, q, sq.Eq{"e.id": id})
	return created, notFoundOr(err, "employee", id)
}

func (r *EmployeeRepository) CreateInTx(ctx context.Context, tx pgx.Tx, employee entities.Employee) (*entities.Employee, error) {
	return r.insert(ctx, tx, employee)
}

func (r *EmployeeRepository) Create(ctx context.Context, employee entities.Employee) (*entities.Employee, error) {
	return r.insert(ctx, r.storage, employee)
}

func optionalID(id uint64) null.Uint64 { return null.NewUint64(id, id != 0) }

func (r *EmployeeRepository) Update(ctx context.Context, id uint64, dto dto.UpdateEmployeeDTO) (*entities.Employee, error) {
	b := psql.Update(employeeTable).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))

	hasChanges := false
	set := func(column string, value interface{}) {
		b = b.Set(column, value)
		hasChanges = true
	}
	if dto.EmployeeNumber != nil {
		set("employee_number", null.NewString(*dto.EmployeeNumber, *dto.EmployeeNumber != ""))
	}
	if dto.FirstName != nil {
		set("first_name", strings.TrimSpace(*dto.FirstName))
	}
	if dto.LastName != nil {
		set("last_name", strings.TrimSpace(*dto.LastName))
	}
	if dto.Email != nil {
		set("email", null.NewString(*dto.Email, *dto.Email != ""))
	}
	if dto.EmployeeType != nil {
		set("employee_type", *dto.EmployeeType)
	}
	if dto.DivisionID != nil {
		set("division_id", optionalID(*dto.DivisionID))
	}
	if dto.PositionID != nil {
		set("position_id", optionalID(*dto.PositionID))
	}
	if dto.SupervisorName != nil {
		set("supervisor_name", null.NewString(*dto.SupervisorName, *dto.SupervisorName != ""))
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
		return nil, translateWriteError(employeeTable, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notFoundOr(pgx.ErrNoRows, "employee", id)
	}
	return r.Find(ctx, id)
}

func (r *EmployeeRepository) Delete(ctx context.Context, id uint64) error {
	return r.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		return deleteGuarded(ctx, tx, employeeTable, "employee", id, employeeDependents)
	})
}

func (r *EmployeeRepository) Supervisors(ctx context.Context) ([]string, error) {
	rows, err := r.storage.Query(ctx,
		`SELECT DISTINCT supervisor_name FROM employees WHERE supervisor_name IS NOT NULL AND supervisor_name <> '' ORDER BY supervisor_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *EmployeeRepository) ListWithoutEmail(ctx context.Context) ([]entities.Employee, error) {
	return queryRows(ctx, r.storage, selectEmployees(employeeColumns...).Where("e.email IS NULL").OrderBy("e.id"), scanEmployee)
}

func (r *EmployeeRepository) SetEmail(ctx context.Context, id uint64, email string) error {
	tag, err := r.storage.Exec(ctx, `UPDATE employees SET email = $1, updated_at = NOW() WHERE id = $2`, strings.ToLower(email), id)
	if err != nil {
		return translateWriteError(employeeTable, err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundOr(pgx.ErrNoRows, "employee", id)
	}
	return nil
}
