package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pvb-admin/internal/entities"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const referenceProfileTable = "reference_profiles"

var (
	profileAllowedSortFields = map[string]string{"id": "rp.id", "name": "rp.name", "division": "d.name", "created_at": "rp.created_at"}
	profileColumns           = []string{
		"rp.id", "rp.name", "rp.division_id", "d.name", "rp.description", "rp.active",
		"(SELECT COUNT(*) FROM reference_profile_hardware x WHERE x.profile_id = rp.id)",
		"(SELECT COUNT(*) FROM reference_profile_software x WHERE x.profile_id = rp.id)",
		"(SELECT COUNT(*) FROM reference_profile_sap_roles x WHERE x.profile_id = rp.id)",
		"rp.created_at", "rp.updated_at",
	}
)

// ProfileQuery narrows the profile list. Division matches an id or a case-insensitive name.
type ProfileQuery struct {
	Search   string
	Division string
	Active   *bool
}

// ProfileFields are the scalar columns of a profile; nil pointers are left untouched on update.
type ProfileFields struct {
	Name        *string
	DivisionID  *uint64
	Description *string
	Active      *bool
}

type ReferenceProfileRepositoryInterface interface {
	List(ctx context.Context, query ProfileQuery, filter types.Filter) ([]entities.ReferenceProfile, uint64, error)
	Find(ctx context.Context, id uint64) (*entities.ReferenceProfile, error)
	FindByRef(ctx context.Context, ref string) (*entities.ReferenceProfile, error)
	ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error)
	CreateInTx(ctx context.Context, tx pgx.Tx, fields ProfileFields) (uint64, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, id uint64, fields ProfileFields) error
	LockInTx(ctx context.Context, tx pgx.Tx, id uint64) error
	// SyncRelationInTx makes the membership of relation exactly ids.
	SyncRelationInTx(ctx context.Context, tx pgx.Tx, profileID uint64, relation entities.ProfileRelation, ids []uint64) (added, removed int, err error)
	MissingItemsInTx(ctx context.Context, tx pgx.Tx, relation entities.ProfileRelation, ids []uint64) ([]uint64, error)
	ItemIDs(ctx context.Context, profileID uint64, relation entities.ProfileRelation) ([]uint64, error)
	SetActive(ctx context.Context, id uint64, active bool) error
}

type ReferenceProfileRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewReferenceProfileRepository(storage *pgxpool.Pool, logger *zap.Logger) ReferenceProfileRepositoryInterface {
	return &ReferenceProfileRepository{storage: storage, logger: logger}
}

func scanReferenceProfile(row pgx.Row) (*entities.ReferenceProfile, error) {
	var p entities.ReferenceProfile
	err := row.Scan(
		&p.ID, &p.Name, &p.DivisionID, &p.DivisionName, &p.Description, &p.Active,
		&p.HardwareCount, &p.SoftwareCount, &p.SapRoleCount, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func selectProfiles(columns ...string) sq.SelectBuilder {
	return psql.Select(columns...).From("reference_profiles rp").LeftJoin("divisions d ON d.id = rp.division_id")
}

func divisionCondition(ref string) sq.Sqlizer {
	ids := parseIDList(ref)
	if len(ids) > 0 {
		return sq.Eq{"rp.division_id": ids}
	}
	return sq.Expr("lower(d.name) = lower(?)", strings.TrimSpace(ref))
}

func (r *ReferenceProfileRepository) List(ctx context.Context, query ProfileQuery, filter types.Filter) ([]entities.ReferenceProfile, uint64, error) {
	where := sq.And{}
	if query.Search != "" {
		where = append(where, searchCondition(query.Search, "rp.name", "d.name"))
	}
	if query.Division != "" {
		where = append(where, divisionCondition(query.Division))
	}
	if query.Active != nil {
		where = append(where, sq.Eq{"rp.active": *query.Active})
	}

	total, err := countRows(ctx, r.storage, selectProfiles("COUNT(*)").Where(where))
	if err != nil || total == 0 {
		return []entities.ReferenceProfile{}, total, err
	}

	b := applySort(selectProfiles(profileColumns...).Where(where), filter.Sort, profileAllowedSortFields, "rp.name ASC")
	items, err := queryRows(ctx, r.storage, applyPage(b, filter), scanReferenceProfile)
	if err != nil {
		return nil, 0, fmt.Errorf("list reference profiles: %w", err)
	}
	return items, total, nil
}

func (r *ReferenceProfileRepository) Find(ctx context.Context, id uint64) (*entities.ReferenceProfile, error) {
	p, err := queryRow(ctx, r.storage, selectProfiles(profileColumns...).Where(sq.Eq{"rp.id": id}), scanReferenceProfile)
	return p, notFoundOr(err, "reference profile", id)
}

// FindByRef resolves a numeric id or a case-insensitive name.
func (r *ReferenceProfileRepository) FindByRef(ctx context.Context, ref string) (*entities.ReferenceProfile, error) {
	if ids := parseIDList(ref); len(ids) == 1 {
		return r.Find(ctx, ids[0])
	}
	b := selectProfiles(profileColumns...).Where(sq.Expr("lower(rp.name) = lower(?)", strings.TrimSpace(ref)))
	p, err := queryRow(ctx, r.storage, b, scanReferenceProfile)
	return p, notFoundOr(err, "reference profile", 0)
}

func (r *ReferenceProfileRepository) ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	return existingIDs(ctx, r.storage, referenceProfileTable, ids)
}

func (r *ReferenceProfileRepository) CreateInTx(ctx context.Context, tx pgx.Tx, fields ProfileFields) (uint64, error) {
	active := true
	if fields.Active != nil {
		active = *fields.Active
	}
	var divisionID null.Uint64
	if fields.DivisionID != nil {
		divisionID = optionalID(*fields.DivisionID)
	}

	var id uint64
	err := tx.QueryRow(ctx,
		`INSERT INTO reference_profiles (name, division_id, description, active) VALUES ($1, $2, $3, $4) RETURNING id`,
		strings.TrimSpace(*fields.Name), divisionID, null.StringFromPtr(fields.Description), active,
	).Scan(&id)
	if err != nil {
		return 0, translateWriteError(referenceProfileTable, err)
	}
	return id, nil
}

func (r *ReferenceProfileRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, id uint64, fields ProfileFields) error {
	b := psql.Update(referenceProfileTable).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))

	if fields.Name != nil {
		b = b.Set("name", strings.TrimSpace(*fields.Name))
	}
	if fields.DivisionID != nil {
		b = b.Set("division_id", optionalID(*fields.DivisionID))
	}
	if fields.Description != nil {
		b = b.Set("description", *fields.Description)
	}
	if fields.Active != nil {
		b = b.Set("active", *fields.Active)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return translateWriteError(referenceProfileTable, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("reference profile", id)
	}
	return nil
}

func (r *ReferenceProfileRepository) LockInTx(ctx context.Context, tx pgx.Tx, id uint64) error {
	var locked uint64
	err := tx.QueryRow(ctx, `SELECT id FROM reference_profiles WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NotFound("reference profile", id)
	}
	return err
}

func (r *ReferenceProfileRepository) itemIDs(ctx context.Context, q querier, profileID uint64, rel relationTable) ([]uint64, error) {
	rows, err := q.Query(ctx, fmt.Sprintf("SELECT %s FROM %s WHERE profile_id = $1 ORDER BY %[1]s", rel.ItemColumn, rel.Table), profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ReferenceProfileRepository) ItemIDs(ctx context.Context, profileID uint64, relation entities.ProfileRelation) ([]uint64, error) {
	rel, ok := profileRelationTables[relation]
	if !ok {
		return nil, fmt.Errorf("unknown profile relation %q", relation)
	}
	return r.itemIDs(ctx, r.storage, profileID, rel)
}

func (r *ReferenceProfileRepository) MissingItemsInTx(ctx context.Context, tx pgx.Tx, relation entities.ProfileRelation, ids []uint64) ([]uint64, error) {
	rel, ok := profileRelationTables[relation]
	if !ok {
		return nil, fmt.Errorf("unknown profile relation %q", relation)
	}
	found, err := existingIDs(ctx, tx, rel.ItemTable, ids)
	if err != nil {
		return nil, err
	}
	return missingIDs(ids, found), nil
}

func (r *ReferenceProfileRepository) SyncRelationInTx(ctx context.Context, tx pgx.Tx, profileID uint64, relation entities.ProfileRelation, ids []uint64) (int, int, error) {
	rel, ok := profileRelationTables[relation]
	if !ok {
		return 0, 0, fmt.Errorf("unknown profile relation %q", relation)
	}

	current, err := r.itemIDs(ctx, tx, profileID, rel)
	if err != nil {
		return 0, 0, fmt.Errorf("load %s of profile %d: %w", relation, profileID, err)
	}
	toAdd, toRemove := diffIDs(current, ids)

	if len(toRemove) > 0 {
		query := fmt.Sprintf("DELETE FROM %s WHERE profile_id = $1 AND %s = ANY($2)", rel.Table, rel.ItemColumn)
		if _, err := tx.Exec(ctx, query, profileID, toRemove); err != nil {
			return 0, 0, fmt.Errorf("detach %s from profile %d: %w", relation, profileID, err)
		}
	}
	if len(toAdd) > 0 {
		query := fmt.Sprintf("INSERT INTO %s (profile_id, %s) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING", rel.Table, rel.ItemColumn)
		if _, err := tx.Exec(ctx, query, profileID, toAdd); err != nil {
			if _, isField := apperrors.IsValidation(translateWriteError(rel.Table, err)); isField {
				return 0, 0, apperrors.NewValidationError(rel.Field, "contains unknown ids")
			}
			return 0, 0, fmt.Errorf("attach %s to profile %d: %w", relation, profileID, err)
		}
	}
	return len(toAdd), len(toRemove), nil
}

func (r *ReferenceProfileRepository) SetActive(ctx context.Context, id uint64, active bool) error {
	tag, err := r.storage.Exec(ctx, `UPDATE reference_profiles SET active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("reference profile", id)
	}
	return nil
}
