package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/events"
	"pvb-admin/internal/repositories"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type orderFixture struct {
	service   *OrderService
	orders    *fakeOrders
	statuses  *fakeStatuses
	employees *fakeEmployees
	rec       *recorder
}

func newOrderFixture(strict bool) *orderFixture {
	statuses := newFakeStatuses()
	orders := newFakeOrders(statuses)
	employees := &fakeEmployees{}
	bus, rec := newRecordingBus(events.OrderStatusChangedEventName)
	svc := NewOrderService(orders, statuses, employees, &fakeTx{}, bus, strict, zap.NewNop()).(*OrderService)
	return &orderFixture{service: svc, orders: orders, statuses: statuses, employees: employees, rec: rec}
}

func TestUpdateStatusPermissiveAppliesAnyChange(t *testing.T) {
	f := newOrderFixture(false)
	f.orders.put(1, "completed")

	got, err := f.service.UpdateStatus(context.Background(), 1, "pending", "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "pending", got.Status)

	f.service.bus.Wait()
	published := f.rec.all()
	require.Len(t, published, 1)
	changed := published[0].(events.OrderStatusChangedEvent)
	assert.Equal(t, "completed", changed.From)
	assert.Equal(t, "pending", changed.To)
	assert.False(t, changed.Legal)
	assert.Equal(t, "admin@example.com", changed.Actor)
}

func TestUpdateStatusStoresCanonicalNameForAliases(t *testing.T) {
	f := newOrderFixture(false)
	f.orders.put(1, "pending")

	got, err := f.service.UpdateStatus(context.Background(), 1, "In Bearbeitung", "admin")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", got.Status)
	assert.Equal(t, "in_progress", f.orders.orders[1].StatusName)

	f.service.bus.Wait()
	assert.True(t, f.rec.all()[0].(events.OrderStatusChangedEvent).Legal)
}

func TestUpdateStatusPermissiveKeepsUnknownLabel(t *testing.T) {
	f := newOrderFixture(false)
	f.orders.put(1, "pending")

	_, err := f.service.UpdateStatus(context.Background(), 1, "  Warten auf Hardware ", "admin")
	require.NoError(t, err)
	assert.Equal(t, "Warten auf Hardware", f.orders.orders[1].StatusName)
	assert.Contains(t, f.statuses.byName, "Warten auf Hardware")
}

func TestUpdateStatusStrict(t *testing.T) {
	tests := []struct {
		name    string
		current string
		target  string
		wantErr error
	}{
		{name: "legal", current: "pending", target: "in_progress"},
		{name: "same state", current: "pending", target: "Ausstehend"},
		{name: "reopen completed", current: "completed", target: "pending", wantErr: apperrors.ErrIllegalTransition},
		{name: "skip progress", current: "pending", target: "completed", wantErr: apperrors.ErrIllegalTransition},
		{name: "unknown target", current: "pending", target: "Warten", wantErr: apperrors.ErrUnknownStatus},
		{name: "legacy current", current: "Warten", target: "in_progress", wantErr: apperrors.ErrIllegalTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture(true)
			f.orders.put(1, tt.current)
			f.orders.orders[1].StatusName = tt.current

			_, err := f.service.UpdateStatus(context.Background(), 1, tt.target, "admin")
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, apperrors.ErrConflict)
			assert.Equal(t, tt.current, f.orders.orders[1].StatusName)
			f.service.bus.Wait()
			assert.Empty(t, f.rec.all())
		})
	}
}

func TestUpdateStatusRejectsBlankStatus(t *testing.T) {
	f := newOrderFixture(false)
	f.orders.put(1, "pending")

	_, err := f.service.UpdateStatus(context.Background(), 1, "   ", "admin")
	verr, ok := apperrors.IsValidation(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "status")
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	f := newOrderFixture(false)

	_, err := f.service.UpdateStatus(context.Background(), 9, "pending", "admin")
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProcessCompletesOrder(t *testing.T) {
	f := newOrderFixture(true)
	f.orders.put(1, "in_progress")

	got, err := f.service.Process(context.Background(), 1, dto.ProcessOrderDTO{ProcessedBy: " it-team ", Notes: utils.ToPtr("done")})
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "it-team", f.orders.processed[1])
}

func TestProcessStrictRejectsPendingOrder(t *testing.T) {
	f := newOrderFixture(true)
	f.orders.put(1, "pending")

	_, err := f.service.Process(context.Background(), 1, dto.ProcessOrderDTO{ProcessedBy: "it-team"})
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
	assert.NotContains(t, f.orders.processed, uint64(1))
}

func TestListForUser(t *testing.T) {
	f := newOrderFixture(false)
	f.employees.employees = []entities.Employee{
		{ID: 7, FirstName: "Max", LastName: "Mustermann", Email: null.StringFrom("max.mustermann@example.com")},
	}
	f.orders.put(1, "pending")
	f.orders.put(2, "completed")
	f.orders.put(3, "pending")
	f.orders.orders[1].EmployeeID = 7
	f.orders.orders[2].EmployeeID = 7

	t.Run("open orders of the caller", func(t *testing.T) {
		got, err := f.service.ListForUser(context.Background(), utils.Identity{Email: "Max.Mustermann@example.com"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, uint64(1), got[0].ID)
		assert.Equal(t, repositories.OrderQuery{EmployeeID: 7, OpenOnly: true}, f.orders.lastQuery)
	})

	t.Run("unknown email", func(t *testing.T) {
		got, err := f.service.ListForUser(context.Background(), utils.Identity{Email: "nobody@example.com"})
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("anonymous", func(t *testing.T) {
		_, err := f.service.ListForUser(context.Background(), utils.Identity{})
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestStatusesPutsWorkflowStatesFirst(t *testing.T) {
	statuses := newFakeStatuses()
	statuses.byName, statuses.names = map[string]uint64{}, map[uint64]string{}
	for _, name := range []string{"Warten auf Hardware", "completed", "In Bearbeitung", "pending", "cancelled"} {
		statuses.add(name)
	}
	svc := NewOrderService(newFakeOrders(statuses), statuses, nil, &fakeTx{}, nil, false, zap.NewNop())

	got, err := svc.Statuses(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 5)

	var names []string
	for _, option := range got {
		names = append(names, option.Name)
	}
	assert.Equal(t, []string{"pending", "In Bearbeitung", "completed", "cancelled", "Warten auf Hardware"}, names)
	assert.Equal(t, "in_progress", got[1].State)
	assert.Equal(t, []string{"in_progress", "cancelled"}, got[0].Next)
	assert.Equal(t, []string{"completed", "cancelled"}, got[1].Next)
	assert.Empty(t, got[2].Next)
	assert.Empty(t, got[4].State)
	assert.NotNil(t, got[4].Next)
}

func TestStatsFoldsStatusLabels(t *testing.T) {
	f := newOrderFixture(false)
	// Wednesday
	f.service.now = func() time.Time { return time.Date(2026, 10, 21, 15, 30, 0, 0, time.UTC) }
	f.orders.countResult = map[bool]int64{false: 14, true: 3}
	f.orders.byStatus = map[string]int64{
		"pending":       2,
		"Ausstehend":    1,
		"in_progress":   1,
		"abgeschlossen": 3,
		"storniert":     1,
		"Warten":        6,
	}
	f.orders.byType = map[string]int64{"Eintritt": 10, "Austritt": 4}

	stats, err := f.service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(14), stats.Total)
	assert.Equal(t, int64(3), stats.Pending)
	assert.Equal(t, int64(1), stats.InProgress)
	assert.Equal(t, int64(3), stats.Completed)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, int64(3), stats.Today)
	assert.Equal(t, int64(3), stats.ThisWeek)
	assert.Equal(t, int64(10), stats.ByType["Eintritt"])

	assert.ElementsMatch(t, []time.Time{
		time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
	}, f.orders.countSince)
}

func TestStartOfWeek(t *testing.T) {
	tests := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 10, 25, 23, 59, 0, 0, time.UTC), time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)},
		{time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC), time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, startOfWeek(tt.in), tt.in.Weekday().String())
	}
}

func TestExport(t *testing.T) {
	f := newOrderFixture(false)
	f.service.now = func() time.Time { return time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC) }
	f.orders.put(1, "pending")
	f.orders.orders[1].EmployeeFirstName = "Max"
	f.orders.orders[1].EmployeeLastName = "Mustermann"
	f.orders.orders[1].Services = []string{"Telefonnummer", "Türschild"}

	t.Run("csv", func(t *testing.T) {
		file, err := f.service.Export(context.Background(), repositories.OrderQuery{}, "CSV")
		require.NoError(t, err)
		assert.Equal(t, "auftraege_2026-10-21.csv", file.Name)

		r := csv.NewReader(bytes.NewReader(file.Data))
		r.Comma = ';'
		records, err := r.ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "ID", records[0][0])
		assert.Equal(t, "Max Mustermann", records[1][1])
		assert.Equal(t, "Telefonnummer, Türschild", records[1][10])
	})

	t.Run("xlsx by default", func(t *testing.T) {
		file, err := f.service.Export(context.Background(), repositories.OrderQuery{}, "")
		require.NoError(t, err)
		assert.Equal(t, "auftraege_2026-10-21.xlsx", file.Name)

		book, err := excelize.OpenReader(bytes.NewReader(file.Data))
		require.NoError(t, err)
		defer book.Close()
		header, err := book.GetCellValue(exportSheet, "B1")
		require.NoError(t, err)
		assert.Equal(t, "Mitarbeiter", header)
		name, err := book.GetCellValue(exportSheet, "B2")
		require.NoError(t, err)
		assert.Equal(t, "Max Mustermann", name)

		for col, want := range map[string]float64{"C": 25, "K": 35, "N": 50} {
			width, err := book.GetColWidth(exportSheet, col)
			require.NoError(t, err)
			assert.Equal(t, want, width, col)
		}
	})

	t.Run("column width errors surface", func(t *testing.T) {
		saved := exportColumnWidths
		t.Cleanup(func() { exportColumnWidths = saved })
		exportColumnWidths = append(exportColumnWidths[:0:0], exportColumnWidths[0])
		exportColumnWidths[0].width = excelize.MaxColumnWidth + 1

		_, err := renderXLSX(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "set width of B:D")
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := f.service.Export(context.Background(), repositories.OrderQuery{}, "pdf")
		_, ok := apperrors.IsValidation(err)
		assert.True(t, ok)
	})
}
