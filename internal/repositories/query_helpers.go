package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// containsPattern wraps search for ILIKE; wildcards in search match literally.
// Postgres uses backslash as the default LIKE escape.
func containsPattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}

// searchCondition matches search as a case-insensitive substring of any column.
func searchCondition(search string, columns ...string) sq.Sqlizer {
	pattern := containsPattern(search)
	or := sq.Or{}
	for _, col := range columns {
		or = append(or, sq.ILike{col: pattern})
	}
	return or
}

// parseIDList turns "1,2,3" (or a single value) into ids; non-numeric parts are dropped.
func parseIDList(value interface{}) []uint64 {
	var ids []uint64
	for _, part := range strings.Split(fmt.Sprintf("%v", value), ",") {
		if id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func filterString(filter types.Filter, key string) (string, bool) {
	raw, ok := filter.Filter[key]
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprintf("%v", raw))
	return s, s != ""
}

func applySort(b sq.SelectBuilder, sort map[string]string, allowed map[string]string, fallback string) sq.SelectBuilder {
	var clauses []string
	for field, direction := range sort {
		if column, ok := allowed[field]; ok {
			clauses = append(clauses, column+" "+strings.ToUpper(direction))
		}
	}
	if len(clauses) == 0 {
		return b.OrderBy(fallback)
	}
	return b.OrderBy(clauses...)
}

func applyPage(b sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if !filter.WithPagination || filter.Limit <= 0 {
		return b
	}
	return b.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
}

func countRows(ctx context.Context, q querier, b sq.SelectBuilder) (uint64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	var total uint64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func queryRows[T any](ctx context.Context, q querier, b sq.SelectBuilder, scan func(pgx.Row) (*T, error)) ([]T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func queryRow[T any](ctx context.Context, q querier, b sq.Sqlizer, scan func(pgx.Row) (*T, error)) (*T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return scan(q.QueryRow(ctx, query, args...))
}

// translateWriteError turns constraint violations of an insert/update on table into
// field errors. Constraint names follow the postgres defaults <table>_<column>_key / _fkey.
func translateWriteError(table string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return apperrors.NewValidationError(constraintField(table, pgErr.ConstraintName, "_key"), "has already been taken")
	case pgForeignKeyViolation:
		return apperrors.NewValidationError(constraintField(table, pgErr.ConstraintName, "_fkey"), "does not exist")
	}
	return err
}

func constraintField(table, constraint, suffix string) string {
	field := strings.TrimSuffix(strings.TrimPrefix(constraint, table+"_"), suffix)
	if field == "" || field == constraint {
		return "name"
	}
	return field
}

// Dependent is a table whose Column references the row being deleted.
type Dependent struct {
	Table  string
	Column string
	Label  string
}

// deleteGuarded locks the row, refuses the delete while dependents exist and removes it
// otherwise. Must run inside a transaction.
func deleteGuarded(ctx context.Context, tx pgx.Tx, table, entity string, id uint64, dependents []Dependent) error {
	var locked uint64
	err := tx.QueryRow(ctx, fmt.Sprintf("SELECT id FROM %s WHERE id = $1 FOR UPDATE", table), id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(entity, id)
	}
	if err != nil {
		return fmt.Errorf("lock %s %d: %w", entity, id, err)
	}

	var blockers []string
	for _, dep := range dependents {
		var n int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = $1", dep.Table, dep.Column)
		if err := tx.QueryRow(ctx, query, id).Scan(&n); err != nil {
			return fmt.Errorf("count %s: %w", dep.Label, err)
		}
		if n > 0 {
			blockers = append(blockers, fmt.Sprintf("%d %s", n, dep.Label))
		}
	}
	if len(blockers) > 0 {
		return apperrors.Conflictf("%s %d is still referenced by %s", entity, id, strings.Join(blockers, ", "))
	}

	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return apperrors.Conflictf("%s %d is still referenced by %s", entity, id, pgErr.TableName)
		}
		return fmt.Errorf("delete %s %d: %w", entity, id, err)
	}
	return nil
}

func notFoundOr(err error, entity string, id uint64) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound(entity, id)
	}
	return err
}
