package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/events"
	"pvb-admin/internal/repositories"
	"pvb-admin/pkg/constants"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/eventbus"
	"pvb-admin/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const (
	JobUpdateSuccessMessage = "Job-Update erfolgreich übermittelt"
	JobUpdateFailureMessage = "Fehler beim Verarbeiten des Job-Updates"
	JobUpdateInvalidMessage = "Validierungsfehler"

	// jobUpdateCreator is recorded as order creator for anonymous submissions without an IT user name.
	jobUpdateCreator = "job-update"
)

type JobUpdateServiceInterface interface {
	// Submit stores the request as a pending order and returns the submission receipt.
	Submit(ctx context.Context, payload dto.JobUpdateDTO, submittedBy string) (*dto.JobUpdateResponseDTO, error)
}

// CatalogRepositories are the item tables a job update may reference.
type CatalogRepositories struct {
	Profiles repositories.ReferenceProfileRepositoryInterface
	Hardware repositories.HardwareRepositoryInterface
	Software repositories.SoftwareRepositoryInterface
	SapRoles repositories.SapRoleRepositoryInterface
}

type JobUpdateService struct {
	orders      repositories.OrderRepositoryInterface
	statuses    repositories.OrderStatusRepositoryInterface
	employees   repositories.EmployeeRepositoryInterface
	catalog     CatalogRepositories
	changeTypes LookupServiceInterface
	divisions   LookupServiceInterface
	positions   LookupServiceInterface
	txManager   repositories.TxManagerInterface
	bus         *eventbus.Bus
	now         func() time.Time
	logger      *zap.Logger
}

func NewJobUpdateService(
	orders repositories.OrderRepositoryInterface,
	statuses repositories.OrderStatusRepositoryInterface,
	employees repositories.EmployeeRepositoryInterface,
	catalog CatalogRepositories,
	changeTypes LookupServiceInterface,
	divisions LookupServiceInterface,
	positions LookupServiceInterface,
	txManager repositories.TxManagerInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) JobUpdateServiceInterface {
	return &JobUpdateService{
		orders:      orders,
		statuses:    statuses,
		employees:   employees,
		catalog:     catalog,
		changeTypes: changeTypes,
		divisions:   divisions,
		positions:   positions,
		txManager:   txManager,
		bus:         bus,
		now:         time.Now,
		logger:      logger,
	}
}

// Services lists the selected additional options in form order.
func Services(options *dto.AdditionalOptionsDTO) []string {
	services := make([]string, 0, 3)
	if options == nil {
		return services
	}
	if utils.SafeDeref(options.Telefonnummer) {
		services = append(services, constants.ServicePhoneNumber)
	}
	if utils.SafeDeref(options.Tuerschild) {
		services = append(services, constants.ServiceDoorSign)
	}
	if utils.SafeDeref(options.Visitenkarten) {
		services = append(services, constants.ServiceBusinessCards)
	}
	return services
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Summarize echoes the submission; the counts mirror the submitted list lengths.
func Summarize(payload dto.JobUpdateDTO) dto.JobUpdateDataDTO {
	typ := "Extern"
	if utils.SafeDeref(payload.EmployerType) {
		typ = "Intern"
	}
	data := dto.JobUpdateDataDTO{
		Mitarbeiter: dto.JobUpdateEmployeeDTO{
			Name:        strings.TrimSpace(payload.Vorname) + " " + strings.TrimSpace(payload.Nachname),
			Typ:         typ,
			UpdateTyp:   payload.UpdateType,
			ITUsername:  payload.ITUserName,
			Bereich:     payload.Bereich,
			Sachbereich: payload.Sachbereich,
			Funktion:    payload.Funktion,
			Position:    payload.Position,
			Vorgesetzt:  payload.Vorgesetzt,
			Eintritt:    payload.Eintritt,
			Frist:       payload.Frist,
		},
		Referenzprofile: nonNil(payload.Refprofil),
		Hardware:        nonNil(payload.AdditionalHardware),
		Software:        nonNil(payload.AdditionalSoftware),
		SapProfiles:     nonNil(payload.SapProfiles),
		Services:        Services(payload.AdditionalOptions),
	}
	data.Zusammenfassung = dto.JobUpdateSummaryDTO{
		ReferenzprofileAnzahl: len(data.Referenzprofile),
		HardwareAnzahl:        len(data.Hardware),
		SoftwareAnzahl:        len(data.Software),
		SapProfileAnzahl:      len(data.SapProfiles),
		ServicesAnzahl:        len(data.Services),
	}
	return data
}

func TicketID(orderID uint64) string {
	return constants.TicketPrefix + strconv.FormatUint(orderID, 10)
}

func namedIDs(items []dto.NamedSelectionDTO) []uint64 {
	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return utils.UniqueIDs(ids)
}

func sapIDs(items []dto.SapSelectionDTO) []uint64 {
	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return utils.UniqueIDs(ids)
}

// includeSap reports whether SAP profiles become order elements; an explicit
// selectedSap=false keeps them out of the order.
func includeSap(payload dto.JobUpdateDTO) bool {
	return payload.SelectedSap == nil || *payload.SelectedSap
}

// checkCatalog reports ids of the submission that do not exist, per form field.
func (s *JobUpdateService) checkCatalog(ctx context.Context, payload dto.JobUpdateDTO) error {
	type check struct {
		field  string
		ids    []uint64
		lookup func(context.Context, []uint64) ([]uint64, error)
	}
	checks := []check{
		{"refprofil", namedIDs(payload.Refprofil), s.catalog.Profiles.ExistingIDs},
		{"additionalHardware", namedIDs(payload.AdditionalHardware), s.catalog.Hardware.ExistingIDs},
		{"additionalSoftware", namedIDs(payload.AdditionalSoftware), s.catalog.Software.ExistingIDs},
	}
	if includeSap(payload) {
		checks = append(checks, check{"sapProfiles", sapIDs(payload.SapProfiles), s.catalog.SapRoles.ExistingIDs})
	}

	verr := &apperrors.ValidationError{}
	for _, c := range checks {
		if len(c.ids) == 0 {
			continue
		}
		found, err := c.lookup(ctx, c.ids)
		if err != nil {
			return fmt.Errorf("check %s: %w", c.field, err)
		}
		if missing := missingFrom(c.ids, found); len(missing) > 0 {
			verr.Add(c.field, "unknown ids: "+joinIDs(missing))
		}
	}
	return verr.OrNil()
}

func missingFrom(requested, found []uint64) []uint64 {
	present := make(map[uint64]struct{}, len(found))
	for _, id := range found {
		present[id] = struct{}{}
	}
	var missing []uint64
	for _, id := range requested {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// optionalLookup resolves a free-text name; unknown names resolve to null.
func (s *JobUpdateService) optionalLookup(ctx context.Context, lookup LookupServiceInterface, name *string) (null.Uint64, error) {
	if name == nil || strings.TrimSpace(*name) == "" {
		return null.Uint64{}, nil
	}
	item, err := lookup.FindByName(ctx, *name)
	if errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("job update references unknown entry",
			zap.String("table", lookup.Table().Table),
			zap.String("name", *name),
		)
		return null.Uint64{}, nil
	}
	if err != nil {
		return null.Uint64{}, err
	}
	return null.Uint64From(item.ID), nil
}

func parseDate(value *string) null.Time {
	if value == nil || *value == "" {
		return null.Time{}
	}
	t, err := time.Parse(time.DateOnly, *value)
	if err != nil {
		return null.Time{}
	}
	return null.TimeFrom(t)
}

// orderComment carries the form fields the schema has no column for.
func orderComment(payload dto.JobUpdateDTO) null.String {
	var parts []string
	add := func(label string, value *string) {
		if v := strings.TrimSpace(utils.SafeDeref(value)); v != "" {
			parts = append(parts, label+": "+v)
		}
	}
	add("IT-User", payload.ITUserName)
	add("Sachbereich", payload.Sachbereich)
	add("Funktion", payload.Funktion)
	if len(parts) == 0 {
		return null.String{}
	}
	return null.StringFrom(strings.Join(parts, "; "))
}

func orderElements(payload dto.JobUpdateDTO) []entities.Element {
	var elements []entities.Element
	for _, hw := range payload.AdditionalHardware {
		elements = append(elements, entities.Element{Label: null.StringFrom(hw.Name), Item: entities.HardwareItem{ID: hw.ID}})
	}
	for _, sw := range payload.AdditionalSoftware {
		elements = append(elements, entities.Element{Label: null.StringFrom(sw.Name), Item: entities.SoftwareItem{ID: sw.ID}})
	}
	if includeSap(payload) {
		for _, sap := range payload.SapProfiles {
			elements = append(elements, entities.Element{Label: null.StringFrom(sap.Code), Item: entities.SapRoleItem{ID: sap.ID}})
		}
	}
	return elements
}

func (s *JobUpdateService) Submit(ctx context.Context, payload dto.JobUpdateDTO, submittedBy string) (*dto.JobUpdateResponseDTO, error) {
	data := Summarize(payload)

	if err := s.checkCatalog(ctx, payload); err != nil {
		return nil, err
	}
	changeType, err := s.changeTypes.FindByName(ctx, payload.UpdateType)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, apperrors.NewValidationError("updateType", "unknown change type")
	}
	if err != nil {
		return nil, err
	}
	divisionID, err := s.optionalLookup(ctx, s.divisions, payload.Bereich)
	if err != nil {
		return nil, err
	}
	positionID, err := s.optionalLookup(ctx, s.positions, payload.Position)
	if err != nil {
		return nil, err
	}

	createdBy := strings.TrimSpace(submittedBy)
	if createdBy == "" {
		createdBy = strings.TrimSpace(utils.SafeDeref(payload.ITUserName))
	}
	if createdBy == "" {
		createdBy = jobUpdateCreator
	}
	employeeType := constants.EmployeeTypeExtern
	if utils.SafeDeref(payload.EmployerType) {
		employeeType = constants.EmployeeTypeIntern
	}

	var (
		orderID  uint64
		employee *entities.Employee
	)
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		var err error
		employee, err = s.employees.FindByNameInTx(ctx, tx, payload.Vorname, payload.Nachname)
		if errors.Is(err, apperrors.ErrNotFound) {
			employee, err = s.employees.CreateInTx(ctx, tx, entities.Employee{
				FirstName:      payload.Vorname,
				LastName:       payload.Nachname,
				EmployeeType:   employeeType,
				DivisionID:     divisionID,
				PositionID:     positionID,
				SupervisorName: optionalText(payload.Vorgesetzt),
			})
		}
		if err != nil {
			return fmt.Errorf("resolve employee: %w", err)
		}

		status, err := s.statuses.FindOrCreateInTx(ctx, tx, string(entities.StatePending))
		if err != nil {
			return fmt.Errorf("resolve pending status: %w", err)
		}

		orderID, err = s.orders.CreateInTx(ctx, tx, entities.Order{
			ChangeTypeID:  changeType.ID,
			EmployeeID:    employee.ID,
			OrderDate:     s.now(),
			CreatedBy:     createdBy,
			StatusID:      status.ID,
			Comment:       orderComment(payload),
			EffectiveDate: parseDate(payload.Eintritt),
			LimitedUntil:  parseDate(payload.Frist),
			Services:      data.Services,
		})
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		if err := s.orders.AddElementsInTx(ctx, tx, orderID, orderElements(payload)); err != nil {
			return fmt.Errorf("insert order elements: %w", err)
		}
		return s.orders.LinkProfilesInTx(ctx, tx, orderID, namedIDs(payload.Refprofil))
	})
	if err != nil {
		return nil, err
	}

	ticketID := TicketID(orderID)
	s.logger.Info("job update stored",
		zap.Uint64("order_id", orderID),
		zap.String("ticket_id", ticketID),
		zap.String("change_type", changeType.Name),
		zap.Uint64("employee_id", employee.ID),
	)
	if s.bus != nil {
		s.bus.Publish(ctx, events.OrderSubmittedEvent{
			OrderID:      orderID,
			TicketID:     ticketID,
			ChangeType:   changeType.Name,
			EmployeeID:   employee.ID,
			EmployeeName: employee.FullName(),
			SubmittedBy:  createdBy,
		})
	}

	return &dto.JobUpdateResponseDTO{
		Success:  true,
		Message:  JobUpdateSuccessMessage,
		Data:     data,
		TicketID: ticketID,
		OrderID:  orderID,
	}, nil
}
