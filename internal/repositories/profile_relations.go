package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"pvb-admin/internal/entities"

	sq "github.com/Masterminds/squirrel"
)

type relationTable struct {
	Table      string
	ItemColumn string
	ItemTable  string
	Field      string
}

var profileRelationTables = map[entities.ProfileRelation]relationTable{
	entities.RelationHardware: {Table: "reference_profile_hardware", ItemColumn: "hardware_id", ItemTable: "hardware", Field: "hardware_ids"},
	entities.RelationSoftware: {Table: "reference_profile_software", ItemColumn: "software_id", ItemTable: "software", Field: "software_ids"},
	entities.RelationSapRoles: {Table: "reference_profile_sap_roles", ItemColumn: "sap_role_id", ItemTable: "sap_roles", Field: "sap_role_ids"},
}

// RelationField is the request field carrying the ids of relation.
func RelationField(relation entities.ProfileRelation) string {
	return profileRelationTables[relation].Field
}

// profileMembership restricts itemExpr to members (or non-members) of the profile
// given by id or case-insensitive name.
func profileMembership(itemExpr string, relation entities.ProfileRelation, profileRef string, negate bool) sq.Sqlizer {
	rel := profileRelationTables[relation]
	sub := fmt.Sprintf("SELECT x.%s FROM %s x JOIN reference_profiles rp ON rp.id = x.profile_id WHERE ", rel.ItemColumn, rel.Table)

	var arg interface{}
	if id, err := strconv.ParseUint(profileRef, 10, 64); err == nil {
		sub += "rp.id = ?"
		arg = id
	} else {
		sub += "lower(rp.name) = lower(?)"
		arg = strings.TrimSpace(profileRef)
	}

	op := "IN"
	if negate {
		op = "NOT IN"
	}
	return sq.Expr(fmt.Sprintf("%s %s (%s)", itemExpr, op, sub), arg)
}

func membershipConditions(where sq.And, itemExpr string, relation entities.ProfileRelation, filter map[string]interface{}) sq.And {
	if ref, ok := filter["profile"]; ok {
		where = append(where, profileMembership(itemExpr, relation, fmt.Sprintf("%v", ref), false))
	}
	if ref, ok := filter["not_in_profile"]; ok {
		where = append(where, profileMembership(itemExpr, relation, fmt.Sprintf("%v", ref), true))
	}
	return where
}

// existingIDs returns the subset of ids present in table.
func existingIDs(ctx context.Context, q querier, table string, ids []uint64) ([]uint64, error) {
	if len(ids) == 0 {
		return []uint64{}, nil
	}
	rows, err := q.Query(ctx, fmt.Sprintf("SELECT id FROM %s WHERE id = ANY($1)", table), ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make([]uint64, 0, len(ids))
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found = append(found, id)
	}
	return found, rows.Err()
}
