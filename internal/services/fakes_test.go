package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"pvb-admin/internal/entities"
	"pvb-admin/internal/repositories"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/eventbus"
	"pvb-admin/pkg/types"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// fakeTx runs the callback without a database transaction.
type fakeTx struct{ runs int }

func (f *fakeTx) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	f.runs++
	return fn(nil)
}

type fakeStatuses struct {
	repositories.OrderStatusRepositoryInterface
	byName map[string]uint64
	names  map[uint64]string
}

func newFakeStatuses() *fakeStatuses {
	s := &fakeStatuses{byName: map[string]uint64{}, names: map[uint64]string{}}
	for _, name := range []string{"pending", "in_progress", "completed", "cancelled"} {
		s.add(name)
	}
	return s
}

func (s *fakeStatuses) add(name string) uint64 {
	id := uint64(len(s.byName) + 1)
	s.byName[name] = id
	s.names[id] = name
	return id
}

func (s *fakeStatuses) List(context.Context) ([]entities.OrderStatus, error) {
	out := make([]entities.OrderStatus, 0, len(s.names))
	for id := uint64(1); id <= uint64(len(s.names)); id++ {
		out = append(out, entities.OrderStatus{ID: id, Name: s.names[id]})
	}
	return out, nil
}

func (s *fakeStatuses) FindOrCreateInTx(_ context.Context, _ pgx.Tx, name string) (*entities.OrderStatus, error) {
	id, ok := s.byName[name]
	if !ok {
		id = s.add(name)
	}
	return &entities.OrderStatus{ID: id, Name: name}, nil
}

type fakeOrders struct {
	repositories.OrderRepositoryInterface
	statuses *fakeStatuses
	orders   map[uint64]*entities.Order
	elements map[uint64][]entities.Element
	profiles map[uint64][]uint64

	lastQuery   repositories.OrderQuery
	processed   map[uint64]string
	countSince  []time.Time
	byStatus    map[string]int64
	byType      map[string]int64
	countResult map[bool]int64
}

func newFakeOrders(statuses *fakeStatuses) *fakeOrders {
	return &fakeOrders{
		statuses:  statuses,
		orders:    map[uint64]*entities.Order{},
		elements:  map[uint64][]entities.Element{},
		profiles:  map[uint64][]uint64{},
		processed: map[uint64]string{},
	}
}

func (f *fakeOrders) put(id uint64, status string) {
	f.orders[id] = &entities.Order{ID: id, StatusName: status, StatusID: f.statuses.byName[status], ChangeTypeName: "Eintritt"}
}

func (f *fakeOrders) Find(_ context.Context, id uint64) (*entities.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, apperrors.NotFound("order", id)
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) List(_ context.Context, query repositories.OrderQuery, _ types.Filter) ([]entities.Order, uint64, error) {
	f.lastQuery = query
	var out []entities.Order
	for _, o := range f.orders {
		if query.EmployeeID != 0 && o.EmployeeID != query.EmployeeID {
			continue
		}
		if query.OpenOnly && !entities.IsOpenStatus(o.StatusName) {
			continue
		}
		out = append(out, *o)
	}
	return out, uint64(len(out)), nil
}

func (f *fakeOrders) LockStatusInTx(_ context.Context, _ pgx.Tx, id uint64) (string, error) {
	o, ok := f.orders[id]
	if !ok {
		return "", apperrors.NotFound("order", id)
	}
	return o.StatusName, nil
}

func (f *fakeOrders) SetStatusInTx(_ context.Context, _ pgx.Tx, id, statusID uint64) error {
	f.orders[id].StatusID = statusID
	f.orders[id].StatusName = f.statuses.names[statusID]
	return nil
}

func (f *fakeOrders) MarkProcessedInTx(ctx context.Context, tx pgx.Tx, id, statusID uint64, processedBy string, _ *string) error {
	f.processed[id] = processedBy
	return f.SetStatusInTx(ctx, tx, id, statusID)
}

func (f *fakeOrders) CreateInTx(_ context.Context, _ pgx.Tx, order entities.Order) (uint64, error) {
	id := uint64(len(f.orders) + 100)
	order.ID = id
	order.StatusName = f.statuses.names[order.StatusID]
	f.orders[id] = &order
	return id, nil
}

func (f *fakeOrders) AddElementsInTx(_ context.Context, _ pgx.Tx, orderID uint64, elements []entities.Element) error {
	f.elements[orderID] = append(f.elements[orderID], elements...)
	return nil
}

func (f *fakeOrders) LinkProfilesInTx(_ context.Context, _ pgx.Tx, orderID uint64, ids []uint64) error {
	f.profiles[orderID] = append(f.profiles[orderID], ids...)
	return nil
}

func (f *fakeOrders) Count(_ context.Context, since *time.Time) (int64, error) {
	if since != nil {
		f.countSince = append(f.countSince, *since)
	}
	return f.countResult[since != nil], nil
}

func (f *fakeOrders) CountByStatus(context.Context) (map[string]int64, error) { return f.byStatus, nil }
func (f *fakeOrders) CountByType(context.Context) (map[string]int64, error)   { return f.byType, nil }

type fakeEmployees struct {
	repositories.EmployeeRepositoryInterface
	employees []entities.Employee
	created   []entities.Employee
	emails    map[uint64]string
}

func (f *fakeEmployees) FindByEmail(_ context.Context, email string) (*entities.Employee, error) {
	for _, e := range f.employees {
		if e.Email.Valid && strings.EqualFold(e.Email.String, email) {
			cp := e
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("employee", 0)
}

func (f *fakeEmployees) FindByNameInTx(_ context.Context, _ pgx.Tx, first, last string) (*entities.Employee, error) {
	for _, e := range f.employees {
		if strings.EqualFold(e.FirstName, first) && strings.EqualFold(e.LastName, last) {
			cp := e
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound("employee", 0)
}

func (f *fakeEmployees) CreateInTx(_ context.Context, _ pgx.Tx, e entities.Employee) (*entities.Employee, error) {
	e.ID = uint64(len(f.employees) + 1)
	f.employees = append(f.employees, e)
	f.created = append(f.created, e)
	return &e, nil
}

func (f *fakeEmployees) ListWithoutEmail(context.Context) ([]entities.Employee, error) {
	var out []entities.Employee
	for _, e := range f.employees {
		if !e.Email.Valid {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) SetEmail(_ context.Context, id uint64, email string) error {
	if f.emails == nil {
		f.emails = map[uint64]string{}
	}
	f.emails[id] = email
	return nil
}

// fakeLookup is a name table held in memory.
type fakeLookup struct {
	LookupServiceInterface
	table repositories.LookupTable
	items []entities.LookupItem
}

func (f *fakeLookup) Table() repositories.LookupTable { return f.table }

func (f *fakeLookup) Names(context.Context) ([]entities.LookupItem, error) { return f.items, nil }

func (f *fakeLookup) Find(_ context.Context, id uint64) (*entities.LookupItem, error) {
	for _, item := range f.items {
		if item.ID == id {
			cp := item
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound(f.table.Entity, id)
}

func (f *fakeLookup) FindByName(_ context.Context, name string) (*entities.LookupItem, error) {
	for _, item := range f.items {
		if strings.EqualFold(item.Name, strings.TrimSpace(name)) {
			cp := item
			return &cp, nil
		}
	}
	return nil, apperrors.NotFound(f.table.Entity, 0)
}

// existing answers ExistingIDs for one catalog table.
type existing map[uint64]bool

func (e existing) ExistingIDs(_ context.Context, ids []uint64) ([]uint64, error) {
	var found []uint64
	for _, id := range ids {
		if e[id] {
			found = append(found, id)
		}
	}
	return found, nil
}

type fakeProfiles struct {
	repositories.ReferenceProfileRepositoryInterface
	ids     existing
	items   map[entities.ProfileRelation]existing
	members map[entities.ProfileRelation][]uint64
	calls   []string
	created repositories.ProfileFields
	active  []entities.ReferenceProfile
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{
		ids: existing{},
		items: map[entities.ProfileRelation]existing{
			entities.RelationHardware: {1: true, 2: true, 3: true},
			entities.RelationSoftware: {3: true, 4: true},
			entities.RelationSapRoles: {5: true},
		},
		members: map[entities.ProfileRelation][]uint64{},
	}
}

func (f *fakeProfiles) ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	return f.ids.ExistingIDs(ctx, ids)
}

func (f *fakeProfiles) CreateInTx(_ context.Context, _ pgx.Tx, fields repositories.ProfileFields) (uint64, error) {
	f.calls = append(f.calls, "create")
	f.created = fields
	return 42, nil
}

func (f *fakeProfiles) UpdateInTx(context.Context, pgx.Tx, uint64, repositories.ProfileFields) error {
	f.calls = append(f.calls, "update")
	return nil
}

func (f *fakeProfiles) LockInTx(_ context.Context, _ pgx.Tx, id uint64) error {
	f.calls = append(f.calls, "lock")
	if id != 42 {
		return apperrors.NotFound("reference profile", id)
	}
	return nil
}

func (f *fakeProfiles) MissingItemsInTx(_ context.Context, _ pgx.Tx, rel entities.ProfileRelation, ids []uint64) ([]uint64, error) {
	var missing []uint64
	for _, id := range ids {
		if !f.items[rel][id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (f *fakeProfiles) SyncRelationInTx(_ context.Context, _ pgx.Tx, _ uint64, rel entities.ProfileRelation, ids []uint64) (int, int, error) {
	f.calls = append(f.calls, "sync:"+string(rel))
	f.members[rel] = ids
	return len(ids), 0, nil
}

func (f *fakeProfiles) Find(_ context.Context, id uint64) (*entities.ReferenceProfile, error) {
	if id != 42 {
		return nil, apperrors.NotFound("reference profile", id)
	}
	return &entities.ReferenceProfile{ID: 42, Name: "Standard-IT", Active: true}, nil
}

func (f *fakeProfiles) List(context.Context, repositories.ProfileQuery, types.Filter) ([]entities.ReferenceProfile, uint64, error) {
	return f.active, uint64(len(f.active)), nil
}

type fakeHardware struct {
	repositories.HardwareRepositoryInterface
	ids existing
}

func (f fakeHardware) ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	return f.ids.ExistingIDs(ctx, ids)
}

func (f fakeHardware) List(context.Context, types.Filter) ([]entities.Hardware, uint64, error) {
	return []entities.Hardware{}, 0, nil
}

type fakeSoftware struct {
	repositories.SoftwareRepositoryInterface
	ids existing
}

func (f fakeSoftware) ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	return f.ids.ExistingIDs(ctx, ids)
}

func (f fakeSoftware) List(context.Context, types.Filter) ([]entities.Software, uint64, error) {
	return []entities.Software{}, 0, nil
}

type fakeSapRoles struct {
	repositories.SapRoleRepositoryInterface
	ids existing
}

func (f fakeSapRoles) ExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	return f.ids.ExistingIDs(ctx, ids)
}

func (f fakeSapRoles) List(context.Context, types.Filter) ([]entities.SapRole, uint64, error) {
	return []entities.SapRole{}, 0, nil
}

// recorder collects events published on a bus.
type recorder struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func newRecordingBus(names ...string) (*eventbus.Bus, *recorder) {
	bus := eventbus.New(zap.NewNop())
	rec := &recorder{}
	for _, name := range names {
		bus.Subscribe(name, func(_ context.Context, e eventbus.Event) error {
			rec.mu.Lock()
			defer rec.mu.Unlock()
			rec.events = append(rec.events, e)
			return nil
		})
	}
	return bus, rec
}

func (r *recorder) all() []eventbus.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]eventbus.Event(nil), r.events...)
}
