package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pvb-admin/internal/entities"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	orderTable = "orders"
	// statusLabelExpr normalizes a status name in SQL the same way entities.NormalizeStatusLabel does.
	statusLabelExpr = `regexp_replace(lower(trim(s.name)), '[[:space:]_-]+', '_', 'g')`
)

var (
	orderAllowedSortFields = map[string]string{
		"id": "o.id", "created_at": "o.order_date", "order_date": "o.order_date", "status": "s.name",
		"type": "ct.name", "employee": "e.last_name",
	}
	orderColumns = []string{
		"o.id", "o.change_type_id", "ct.name", "o.employee_id", "e.first_name", "e.last_name", "e.email", "d.name",
		"o.order_date", "o.created_by", "o.status_id", "s.name", "o.comment", "o.effective_date", "o.limited_until",
		"o.services", "o.processed_by", "o.processed_at", "o.created_at", "o.updated_at",
	}
)

// OrderQuery narrows the order list. Status accepts workflow labels and their aliases.
type OrderQuery struct {
	Search     string
	Status     string
	Type       string
	EmployeeID uint64
	OpenOnly   bool
}

type OrderRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, order entities.Order) (uint64, error)
	AddElementsInTx(ctx context.Context, tx pgx.Tx, orderID uint64, elements []entities.Element) error
	LinkProfilesInTx(ctx context.Context, tx pgx.Tx, orderID uint64, profileIDs []uint64) error
	List(ctx context.Context, query OrderQuery, filter types.Filter) ([]entities.Order, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.Order, error)
	Profiles(ctx context.Context, orderID uint64) ([]entities.LookupItem, error)
	Elements(ctx context.Context, orderID uint64) ([]entities.Element, error)
	// LockStatusInTx locks the order row and returns its current status name.
	LockStatusInTx(ctx context.Context, tx pgx.Tx, id uint64) (string, error)
	SetStatusInTx(ctx context.Context, tx pgx.Tx, id, statusID uint64) error
	MarkProcessedInTx(ctx context.Context, tx pgx.Tx, id, statusID uint64, processedBy string, notes *string) error
	Count(ctx context.Context, since *time.Time) (int64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	CountByType(ctx context.Context) (map[string]int64, error)
}

type OrderRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewOrderRepository(storage *pgxpool.Pool, logger *zap.Logger) OrderRepositoryInterface {
	return &OrderRepository{storage: storage, logger: logger}
}

func scanOrder(row pgx.Row) (*entities.Order, error) {
	var o entities.Order
	err := row.Scan(
		&o.ID, &o.ChangeTypeID, &o.ChangeTypeName, &o.EmployeeID, &o.EmployeeFirstName, &o.EmployeeLastName,
		&o.EmployeeEmail, &o.DivisionName, &o.OrderDate, &o.CreatedBy, &o.StatusID, &o.StatusName, &o.Comment,
		&o.EffectiveDate, &o.LimitedUntil, &o.Services, &o.ProcessedBy, &o.ProcessedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func selectOrders(columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).
		From("orders o").
		Join("change_types ct ON ct.id = o.change_type_id").
		Join("employees e ON e.id = o.employee_id").
		LeftJoin("divisions d ON d.id = e.division_id").
		Join("order_statuses s ON s.id = o.status_id")
}

func statusCondition(label string) sq.Sqlizer {
	labels := []string{entities.NormalizeStatusLabel(label)}
	if state, ok := entities.ParseOrderState(label); ok {
		labels = entities.LabelsFor(state)
	}
	return sq.Eq{statusLabelExpr: labels}
}

func (r *OrderRepository) conditions(query OrderQuery) sq.And {
	where := sq.And{}
	if query.Search != "" {
		where = append(where, searchCondition(query.Search,
			"e.first_name", "e.last_name", "e.first_name || ' ' || e.last_name", "CAST(o.id AS TEXT)", "o.comment"))
	}
	if query.Status != "" {
		where = append(where, statusCondition(query.Status))
	}
	if query.Type != "" {
		where = append(where, sq.Expr("lower(ct.name) = lower(?)", query.Type))
	}
	if query.EmployeeID != 0 {
		where = append(where, sq.Eq{"o.employee_id": query.EmployeeID})
	}
	if query.OpenOnly {
		where = append(where, sq.NotEq{statusLabelExpr: entities.ClosedStatusLabels()})
	}
	return where
}

func (r *OrderRepository) List(ctx context.Context, query OrderQuery, filter types.Filter) ([]entities.Order, uint64, error) {
	where := r.conditions(query)

	total, err := countRows(ctx, r.storage, selectOrders("COUNT(*)").Where(where))
	if err != nil || total == 0 {
		return []entities.Order{}, total, err
	}

	b := applySort(selectOrders(orderColumns...).Where(where), filter.Sort, orderAllowedSortFields, "o.order_date DESC, o.id DESC")
	items, err := queryRows(ctx, r.storage, applyPage(b, filter), scanOrder)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return items, total, nil
}

func (r *OrderRepository) Find(ctx context.Context, id uint64) (*entities.Order, error) {
	o, err := queryRow(ctx, r.storage, selectOrders(orderColumns...).Where(sq.Eq{"o.id": id}), scanOrder)
	return o, notFoundOr(err, "order", id)
}

func (r *OrderRepository) CreateInTx(ctx context.Context, tx pgx.Tx, order entities.Order) (uint64, error) {
	services := order.Services
	if services == nil {
		services = []string{}
	}
	var id uint64
	err := tx.QueryRow(ctx,
		`INSERT INTO orders (change_type_id, employee_id, order_date, created_by, status_id, comment, effective_date, limited_until, services)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		order.ChangeTypeID, order.EmployeeID, order.OrderDate, order.CreatedBy, order.StatusID, order.Comment,
		order.EffectiveDate, order.LimitedUntil, services,
	).Scan(&id)
	if err != nil {
		return 0, translateWriteError(orderTable, err)
	}
	return id, nil
}

func (r *OrderRepository) AddElementsInTx(ctx context.Context, tx pgx.Tx, orderID uint64, elements []entities.Element) error {
	if len(elements) == 0 {
		return nil
	}
	b := psql.Insert("order_elements").Columns("order_id", "label", "software_id", "hardware_id", "sap_role_id")
	for _, el := range elements {
		cols := entities.ColumnsOf(el.Item)
		b = b.Values(orderID, el.Label, cols.SoftwareID, cols.HardwareID, cols.SapRoleID)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return translateWriteError("order_elements", err)
	}
	return nil
}

func (r *OrderRepository) LinkProfilesInTx(ctx context.Context, tx pgx.Tx, orderID uint64, profileIDs []uint64) error {
	if len(profileIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO order_reference_profiles (order_id, profile_id) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`,
		orderID, profileIDs,
	)
	if err != nil {
		return translateWriteError("order_reference_profiles", err)
	}
	return nil
}

func (r *OrderRepository) Profiles(ctx context.Context, orderID uint64) ([]entities.LookupItem, error) {
	b := psql.Select("rp.id", "rp.name", "rp.division_id", "d.name", "rp.created_at", "rp.updated_at").
		From("order_reference_profiles orp").
		Join("reference_profiles rp ON rp.id = orp.profile_id").
		LeftJoin("divisions d ON d.id = rp.division_id").
		Where(sq.Eq{"orp.order_id": orderID}).
		OrderBy("rp.name")
	return queryRows(ctx, r.storage, b, scanLookupItem)
}

func scanElement(row pgx.Row) (*entities.Element, error) {
	var (
		el   entities.Element
		cols entities.ElementColumns
	)
	if err := row.Scan(&el.ID, &el.Label, &cols.SoftwareID, &cols.HardwareID, &cols.SapRoleID, &el.ItemName); err != nil {
		return nil, err
	}
	item, err := cols.Item()
	if err != nil {
		return nil, fmt.Errorf("order element %d: %w", el.ID, err)
	}
	el.Item = item
	return &el, nil
}

func (r *OrderRepository) Elements(ctx context.Context, orderID uint64) ([]entities.Element, error) {
	b := psql.Select("oe.id", "oe.label", "oe.software_id", "oe.hardware_id", "oe.sap_role_id", "COALESCE(sw.name, hw.name, sr.name, '')").
		From("order_elements oe").
		LeftJoin("software sw ON sw.id = oe.software_id").
		LeftJoin("hardware hw ON hw.id = oe.hardware_id").
		LeftJoin("sap_roles sr ON sr.id = oe.sap_role_id").
		Where(sq.Eq{"oe.order_id": orderID}).
		OrderBy("oe.id")
	return queryRows(ctx, r.storage, b, scanElement)
}

func (r *OrderRepository) LockStatusInTx(ctx context.Context, tx pgx.Tx, id uint64) (string, error) {
	var status string
	err := tx.QueryRow(ctx,
		`SELECT s.name FROM orders o JOIN order_statuses s ON s.id = o.status_id WHERE o.id = $1 FOR UPDATE OF o`, id,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperrors.NotFound("order", id)
	}
	return status, err
}

func (r *OrderRepository) SetStatusInTx(ctx context.Context, tx pgx.Tx, id, statusID uint64) error {
	tag, err := tx.Exec(ctx, `UPDATE orders SET status_id = $1, updated_at = NOW() WHERE id = $2`, statusID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

// MarkProcessedInTx appends notes to the existing comment on a new line.
func (r *OrderRepository) MarkProcessedInTx(ctx context.Context, tx pgx.Tx, id, statusID uint64, processedBy string, notes *string) error {
	tag, err := tx.Exec(ctx,
		`UPDATE orders
		 SET status_id = $1,
		     processed_by = $2,
		     processed_at = NOW(),
		     comment = CASE
		         WHEN $3::text IS NULL OR $3::text = '' THEN comment
		         WHEN comment IS NULL OR comment = '' THEN $3::text
		         ELSE comment || E'\n' || $3::text
		     END,
		     updated_at = NOW()
		 WHERE id = $4`,
		statusID, processedBy, null.StringFromPtr(notes), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("order", id)
	}
	return nil
}

func (r *OrderRepository) Count(ctx context.Context, since *time.Time) (int64, error) {
	b := psql.Select("COUNT(*)").From("orders o")
	if since != nil {
		b = b.Where(sq.GtOrEq{"o.order_date": *since})
	}
	total, err := countRows(ctx, r.storage, b)
	return int64(total), err
}

func (r *OrderRepository) groupCounts(ctx context.Context, query string) (map[string]int64, error) {
	rows, err := r.storage.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			name string
			n    int64
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] += n
	}
	return counts, rows.Err()
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return r.groupCounts(ctx, `SELECT s.name, COUNT(*) FROM orders o JOIN order_statuses s ON s.id = o.status_id GROUP BY s.name`)
}

func (r *OrderRepository) CountByType(ctx context.Context) (map[string]int64, error) {
	return r.groupCounts(ctx, `SELECT ct.name, COUNT(*) FROM orders o JOIN change_types ct ON ct.id = o.change_type_id GROUP BY ct.name`)
}
