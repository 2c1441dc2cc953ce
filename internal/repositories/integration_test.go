package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"pvb-admin/internal/entities"
	"pvb-admin/pkg/database/postgresql"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/types"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
)

// setupTestDB starts PostgreSQL in a container and applies the embedded migrations.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION is not set")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("pvb_test"),
		postgres.WithUsername("pvb"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	require.NoError(t, postgresql.Migrate(ctx, dsn, postgresql.MigrateUp, logger))

	pool, err := postgresql.ConnectDB(ctx, dsn, logger)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type catalogFixture struct {
	division  *entities.LookupItem
	category  *entities.LookupItem
	hardware  []uint64
	software  []uint64
	lookups   func(LookupTable) LookupRepositoryInterface
	txManager TxManagerInterface
}

func seedCatalog(t *testing.T, ctx context.Context, pool *pgxpool.Pool) catalogFixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	txManager := NewTxManager(pool)
	lookups := func(table LookupTable) LookupRepositoryInterface {
		return NewLookupRepository(pool, txManager, table, logger)
	}

	division, err := lookups(DivisionTable).Create(ctx, entities.LookupItem{Name: "IT"})
	require.NoError(t, err)
	_, err = lookups(TeamTable).Create(ctx, entities.LookupItem{Name: "Infra", ParentID: null.Uint64From(division.ID)})
	require.NoError(t, err)

	category, err := lookups(CategoryTable).Create(ctx, entities.LookupItem{Name: "Laptops"})
	require.NoError(t, err)
	manufacturer, err := lookups(ManufacturerTable).Create(ctx, entities.LookupItem{Name: "Microsoft"})
	require.NoError(t, err)

	hwRepo := NewHardwareRepository(pool, txManager, logger)
	swRepo := NewSoftwareRepository(pool, txManager, logger)
	fx := catalogFixture{division: division, category: category, lookups: lookups, txManager: txManager}
	for _, name := range []string{"ThinkPad T14", "Dockingstation"} {
		hw, err := hwRepo.Create(ctx, entities.Hardware{Name: name, CategoryID: category.ID})
		require.NoError(t, err)
		fx.hardware = append(fx.hardware, hw.ID)
	}
	sw, err := swRepo.Create(ctx, entities.Software{Name: "Office 365", ManufacturerID: manufacturer.ID, Active: true})
	require.NoError(t, err)
	fx.software = append(fx.software, sw.ID)
	return fx
}

func TestIntegration_ReferenceProfileSync(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	fx := seedCatalog(t, ctx, pool)
	profiles := NewReferenceProfileRepository(pool, zaptest.NewLogger(t))

	name := "Standard-IT"
	var profileID uint64
	sync := func(hardware []uint64) (added, removed int) {
		err := fx.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			var err error
			if profileID == 0 {
				if profileID, err = profiles.CreateInTx(ctx, tx, ProfileFields{Name: &name, DivisionID: &fx.division.ID}); err != nil {
					return err
				}
				if _, _, err = profiles.SyncRelationInTx(ctx, tx, profileID, entities.RelationSoftware, fx.software); err != nil {
					return err
				}
			}
			added, removed, err = profiles.SyncRelationInTx(ctx, tx, profileID, entities.RelationHardware, hardware)
			return err
		})
		require.NoError(t, err)
		return added, removed
	}

	added, removed := sync(fx.hardware)
	assert.Equal(t, 2, added)
	assert.Zero(t, removed)

	added, removed = sync(fx.hardware)
	assert.Zero(t, added, "a repeated sync is a no-op")
	assert.Zero(t, removed)

	ids, err := profiles.ItemIDs(ctx, profileID, entities.RelationHardware)
	require.NoError(t, err)
	assert.ElementsMatch(t, fx.hardware, ids)

	list, total, err := profiles.List(ctx, ProfileQuery{Division: "IT"}, types.Filter{Page: 1, Limit: 10, WithPagination: true})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, "Standard-IT", list[0].Name)
	assert.EqualValues(t, 2, list[0].HardwareCount)
	assert.EqualValues(t, 1, list[0].SoftwareCount)
	assert.Zero(t, list[0].SapRoleCount)

	added, removed = sync(fx.hardware[:1])
	assert.Zero(t, added)
	assert.Equal(t, 1, removed)
	ids, err = profiles.ItemIDs(ctx, profileID, entities.RelationHardware)
	require.NoError(t, err)
	assert.Equal(t, fx.hardware[:1], ids)
}

func TestIntegration_SearchMatchesWildcardsLiterally(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	logger := zaptest.NewLogger(t)
	positions := NewLookupRepository(pool, NewTxManager(pool), PositionTable, logger)
	for _, name := range []string{"Teilzeit 50%", "Teilzeit 500", "SAP_Basis", "SAPXBasis"} {
		_, err := positions.Create(ctx, entities.LookupItem{Name: name})
		require.NoError(t, err)
	}

	items, total, err := positions.List(ctx, types.Filter{Search: "50%"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Teilzeit 50%", items[0].Name)

	items, _, err = positions.List(ctx, types.Filter{Search: "p_b"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "SAP_Basis", items[0].Name)
}

func TestIntegration_CategoryDeleteGuard(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	fx := seedCatalog(t, ctx, pool)
	categories := fx.lookups(CategoryTable)

	err := categories.Delete(ctx, fx.category.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	empty, err := categories.Create(ctx, entities.LookupItem{Name: "Monitore"})
	require.NoError(t, err)
	require.NoError(t, categories.Delete(ctx, empty.ID))

	_, err = categories.Find(ctx, empty.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = categories.Find(ctx, fx.category.ID)
	assert.NoError(t, err, "a guarded row stays in place")
}

func TestIntegration_OrderElementsAndStatus(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	fx := seedCatalog(t, ctx, pool)
	logger := zaptest.NewLogger(t)
	employees := NewEmployeeRepository(pool, fx.txManager, logger)
	orders := NewOrderRepository(pool, logger)
	statuses := NewOrderStatusRepository(pool, logger)
	changeType, err := fx.lookups(ChangeTypeTable).FindByName(ctx, "Eintritt")
	require.NoError(t, err)

	var orderID uint64
	err = fx.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		employee, err := employees.CreateInTx(ctx, tx, entities.Employee{FirstName: "Max", LastName: "Mustermann", EmployeeType: "intern"})
		if err != nil {
			return err
		}
		pending, err := statuses.FindOrCreateInTx(ctx, tx, "pending")
		if err != nil {
			return err
		}
		orderID, err = orders.CreateInTx(ctx, tx, entities.Order{
			ChangeTypeID: changeType.ID,
			EmployeeID:   employee.ID,
			OrderDate:    time.Now(),
			CreatedBy:    "job-update",
			StatusID:     pending.ID,
		})
		if err != nil {
			return err
		}
		return orders.AddElementsInTx(ctx, tx, orderID, []entities.Element{
			{Item: entities.HardwareItem{ID: fx.hardware[0]}},
			{Item: entities.SoftwareItem{ID: fx.software[0]}},
		})
	})
	require.NoError(t, err)

	elements, err := orders.Elements(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, elements, 2)
	kinds := []entities.ElementKind{elements[0].Type(), elements[1].Type()}
	assert.ElementsMatch(t, []entities.ElementKind{entities.ElementHardware, entities.ElementSoftware}, kinds)

	for _, next := range []string{"completed", "pending", "Archiviert"} {
		err := fx.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
			status, err := statuses.FindOrCreateInTx(ctx, tx, next)
			if err != nil {
				return err
			}
			return orders.SetStatusInTx(ctx, tx, orderID, status.ID)
		})
		require.NoError(t, err)

		order, err := orders.Find(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, next, order.StatusName)
	}
}
