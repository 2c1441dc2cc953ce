package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/repositories"
	"pvb-admin/pkg/types"
	"pvb-admin/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// orgTables holds names per table and the parent of each child row.
type orgTables struct {
	names   map[string]map[uint64]string
	parents map[string]map[uint64]uint64
}

type fakeLookupRepo struct {
	repositories.LookupRepositoryInterface
	table repositories.LookupTable
	db    *orgTables
}

func (f fakeLookupRepo) Table() repositories.LookupTable { return f.table }

func (f fakeLookupRepo) List(context.Context, types.Filter) ([]entities.LookupItem, uint64, error) {
	var out []entities.LookupItem
	for id, name := range f.db.names[f.table.Table] {
		item := entities.LookupItem{ID: id, Name: name}
		if parent, ok := f.db.parents[f.table.Table][id]; ok {
			item.ParentID = null.Uint64From(parent)
			item.ParentName = null.StringFrom(f.db.names[f.table.ParentTable][parent])
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, uint64(len(out)), nil
}

func (f fakeLookupRepo) Update(_ context.Context, id uint64, name *string, _ *uint64) (*entities.LookupItem, error) {
	f.db.names[f.table.Table][id] = *name
	return &entities.LookupItem{ID: id, Name: *name}, nil
}

func TestRenamingParentRefreshesChildNames(t *testing.T) {
	db := &orgTables{
		names: map[string]map[uint64]string{
			"divisions": {1: "IT"},
			"teams":     {10: "Infra"},
			"functions": {100: "Netzwerk"},
		},
		parents: map[string]map[uint64]uint64{
			"teams":     {10: 1},
			"functions": {100: 10},
		},
	}
	cache := repositories.NewLRUCacheRepository(16, time.Minute)
	service := func(table repositories.LookupTable) LookupServiceInterface {
		return NewLookupService(fakeLookupRepo{table: table, db: db}, cache, time.Minute, zap.NewNop())
	}
	divisions := service(repositories.DivisionTable)
	teams := service(repositories.TeamTable)
	functions := service(repositories.FunctionTable)
	ctx := context.Background()

	teamNames, err := teams.Names(ctx)
	require.NoError(t, err)
	require.Len(t, teamNames, 1)
	assert.Equal(t, "IT", teamNames[0].ParentName.String)
	functionNames, err := functions.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Infra", functionNames[0].ParentName.String)

	_, err = divisions.Update(ctx, 1, dto.UpdateLookupDTO{Name: utils.ToPtr("Informatik")})
	require.NoError(t, err)
	_, err = teams.Update(ctx, 10, dto.UpdateLookupDTO{Name: utils.ToPtr("Infrastruktur")})
	require.NoError(t, err)

	teamNames, err = teams.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Informatik", teamNames[0].ParentName.String)
	functionNames, err = functions.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Infrastruktur", functionNames[0].ParentName.String)
}

func TestDependentCacheKeys(t *testing.T) {
	assert.Equal(t, []string{"lookup:teams:list"}, dependentCacheKeys(repositories.DivisionTable))
	assert.Equal(t, []string{"lookup:functions:list"}, dependentCacheKeys(repositories.TeamTable))
	assert.Empty(t, dependentCacheKeys(repositories.FunctionTable))
}
