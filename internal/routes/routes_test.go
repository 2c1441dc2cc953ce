package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pvb-admin/internal/controllers"
	"pvb-admin/internal/dto"
	"pvb-admin/internal/entities"
	"pvb-admin/internal/repositories"
	"pvb-admin/internal/services"
	"pvb-admin/pkg/customvalidator"
	apperrors "pvb-admin/pkg/errors"
	"pvb-admin/pkg/middleware"
	"pvb-admin/pkg/service"
	"pvb-admin/pkg/types"
	"pvb-admin/pkg/utils"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubLookups struct {
	services.LookupServiceInterface
	table repositories.LookupTable
	items []entities.LookupItem
}

func (s stubLookups) Table() repositories.LookupTable { return s.table }
func (s stubLookups) Names(context.Context) ([]entities.LookupItem, error) {
	return s.items, nil
}
func (s stubLookups) Delete(context.Context, uint64) error {
	return apperrors.Conflictf("%s is still referenced by 2 hardware items", s.table.Entity)
}

type stubEmployees struct {
	services.EmployeeServiceInterface
}

func (stubEmployees) Supervisors(context.Context) ([]string, error) {
	return []string{"Erika Musterfrau"}, nil
}

type stubHardware struct {
	services.HardwareServiceInterface
}

func (stubHardware) ForProfile(_ context.Context, ref string) (*entities.ReferenceProfile, []entities.Hardware, error) {
	if ref != "Standard" {
		return nil, nil, apperrors.NotFound("reference profile", 0)
	}
	return &entities.ReferenceProfile{ID: 1, Name: "Standard"}, []entities.Hardware{{ID: 4, Name: "Laptop", CategoryName: "Notebooks"}}, nil
}

type stubProfiles struct {
	services.ReferenceProfileServiceInterface
}

func (stubProfiles) Active(context.Context) ([]entities.ReferenceProfile, error) {
	return []entities.ReferenceProfile{{
		ID: 1, Name: "Vertrieb Innendienst", Active: true,
		DivisionName:  null.StringFrom("Vertrieb"),
		HardwareCount: 2, SoftwareCount: 1,
	}}, nil
}

type stubJobUpdates struct {
	err error
}

func (s stubJobUpdates) Submit(_ context.Context, payload dto.JobUpdateDTO, submittedBy string) (*dto.JobUpdateResponseDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.JobUpdateResponseDTO{
		Success:  true,
		Message:  services.JobUpdateSuccessMessage,
		Data:     services.Summarize(payload),
		TicketID: services.TicketID(17),
		OrderID:  17,
	}, nil
}

type stubOrders struct{ services.OrderServiceInterface }

func (stubOrders) ListForUser(_ context.Context, identity utils.Identity) ([]dto.OrderDTO, error) {
	return []dto.OrderDTO{{ID: 3, EmployeeName: identity.Email, Status: "pending"}}, nil
}

func (stubOrders) UpdateStatus(context.Context, uint64, string, string) (*dto.OrderDTO, error) {
	return nil, apperrors.ErrIllegalTransition
}

func (stubOrders) Export(context.Context, repositories.OrderQuery, string) (*services.ExportFile, error) {
	return &services.ExportFile{Name: "auftraege_2026-10-21.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("ID\n")}, nil
}

func (stubOrders) Statuses(context.Context) ([]dto.OrderStatusOptionDTO, error) {
	return []dto.OrderStatusOptionDTO{{ID: 1, Name: "pending", State: "pending", Next: []string{"in_progress", "cancelled"}}}, nil
}

func (stubOrders) List(context.Context, repositories.OrderQuery, types.Filter) ([]dto.OrderDTO, uint64, error) {
	return []dto.OrderDTO{}, 0, nil
}

type testServer struct {
	e      *echo.Echo
	jwtSvc service.JWTService
}

func newTestServer(t *testing.T, jobUpdates services.JobUpdateServiceInterface) *testServer {
	t.Helper()
	e := echo.New()
	v := validator.New()
	require.NoError(t, customvalidator.RegisterCustomValidations(v))
	e.Validator = utils.NewValidator(v)

	logger := zap.NewNop()
	categories := stubLookups{table: repositories.CategoryTable}
	divisions := stubLookups{table: repositories.DivisionTable, items: []entities.LookupItem{{ID: 1, Name: "Einkauf"}, {ID: 2, Name: "Vertrieb"}}}
	functions := stubLookups{table: repositories.FunctionTable, items: []entities.LookupItem{{ID: 9, Name: "Sachbearbeitung"}}}

	ctrls := Controllers{
		Form:       controllers.NewFormController(divisions, stubLookups{}, functions, stubLookups{}, stubEmployees{}, logger),
		Lookups:    LookupControllers{"categories": controllers.NewLookupController(categories, logger)},
		Hardware:   controllers.NewHardwareController(stubHardware{}, logger),
		Software:   controllers.NewSoftwareController(nil, logger),
		Sap:        controllers.NewSapController(nil, logger),
		Profiles:   controllers.NewReferenceProfileController(stubProfiles{}, logger),
		Employees:  controllers.NewEmployeeController(stubEmployees{}, logger),
		Orders:     controllers.NewOrderController(stubOrders{}, logger),
		JobUpdates: controllers.NewJobUpdateController(jobUpdates, logger),
		Dashboard:  controllers.NewDashboardController(nil, logger),
		Health:     controllers.NewHealthController(nil, logger),
	}
	jwtSvc := service.NewJWTService("test-secret", time.Hour)
	registerRoutes(e, ctrls, middleware.NewAuthMiddleware(jwtSvc, logger), time.Second)
	return &testServer{e: e, jwtSvc: jwtSvc}
}

func (s *testServer) token(t *testing.T, email, role string) string {
	t.Helper()
	token, err := s.jwtSvc.GenerateToken(email, "", role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestPublicLists(t *testing.T) {
	s := newTestServer(t, stubJobUpdates{})

	rec := s.do(http.MethodGet, "/api/bereiche", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Einkauf","Vertrieb"]`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/funktionen", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":9,"value":"Sachbearbeitung","label":"Sachbearbeitung","name":"Sachbearbeitung"}]`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/vorgesetzte", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"value":"Erika Musterfrau","label":"Erika Musterfrau","name":"Erika Musterfrau"}]`, rec.Body.String())

	var options []map[string]string
	rec = s.do(http.MethodGet, "/api/options", "", "")
	decode(t, rec, &options)
	require.Len(t, options, 3)
	assert.Equal(t, "telefonnummer", options[0]["id"])
}

func TestReferenceProfilesCarryCounts(t *testing.T) {
	s := newTestServer(t, stubJobUpdates{})

	rec := s.do(http.MethodGet, "/api/referenzprofile", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var profiles []map[string]interface{}
	decode(t, rec, &profiles)
	require.Len(t, profiles, 1)
	assert.Equal(t, float64(2), profiles[0]["hardwareCount"])
	assert.Equal(t, float64(1), profiles[0]["softwareCount"])
	assert.Equal(t, "Vertrieb", profiles[0]["bereich"])

	rec = s.do(http.MethodGet, "/api/referenzprofile/bereich", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Bereich parameter is required"}`, rec.Body.String())
}

func TestHardwareForProfile(t *testing.T) {
	s := newTestServer(t, stubJobUpdates{})

	rec := s.do(http.MethodGet, "/api/hardware/profile?profile=Standard", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"profile":"Standard","hardware":[{"id":4,"name":"Laptop","category":"Notebooks","specifications":null,"assigned":true}]}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/hardware/profile", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Profile parameter is required"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/hardware/profile?profile=Unbekannt", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobUpdateEnvelope(t *testing.T) {
	body := `{"vorname":"Max","nachname":"Mustermann","employerType":true,"updateType":"Eintritt"}`

	t.Run("success", func(t *testing.T) {
		s := newTestServer(t, stubJobUpdates{})
		rec := s.do(http.MethodPost, "/api/job-update", body, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var res dto.JobUpdateResponseDTO
		decode(t, rec, &res)
		assert.True(t, res.Success)
		assert.Equal(t, "Job-Update erfolgreich übermittelt", res.Message)
		assert.Regexp(t, `^JU-\d+$`, res.TicketID)
		assert.Equal(t, dto.JobUpdateSummaryDTO{}, res.Data.Zusammenfassung)
	})

	t.Run("invalid payload", func(t *testing.T) {
		s := newTestServer(t, stubJobUpdates{})
		rec := s.do(http.MethodPost, "/api/job-update", `{"vorname":" ","updateType":"Beförderung"}`, "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var res struct {
			Success bool              `json:"success"`
			Message string            `json:"message"`
			Errors  map[string]string `json:"errors"`
		}
		decode(t, rec, &res)
		assert.False(t, res.Success)
		assert.Equal(t, "Validierungsfehler", res.Message)
		assert.Contains(t, res.Errors, "vorname")
		assert.Contains(t, res.Errors, "nachname")
		assert.Contains(t, res.Errors, "updateType")
	})

	t.Run("unknown catalog ids", func(t *testing.T) {
		s := newTestServer(t, stubJobUpdates{err: apperrors.NewValidationError("additionalHardware", "unknown ids: 12")})
		rec := s.do(http.MethodPost, "/api/job-update", body, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Validierungsfehler","errors":{"additionalHardware":"unknown ids: 12"}}`, rec.Body.String())
	})

	t.Run("storage failure", func(t *testing.T) {
		s := newTestServer(t, stubJobUpdates{err: errors.New("connection reset")})
		rec := s.do(http.MethodPost, "/api/job-update", body, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"Fehler beim Verarbeiten des Job-Updates"}`, rec.Body.String())
	})
}

func TestAdminRequiresAdminToken(t *testing.T) {
	s := newTestServer(t, stubJobUpdates{})

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/orders", "", "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/admin/orders", "", s.token(t, "erika@example.com", "user")).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/admin/orders", "", s.token(t, "root@example.com", "admin")).Code)
}

func TestAdminOrderEndpoints(t *testing.T) {
	s := newTestServer(t, stubJobUpdates{})
	admin := s.token(t, "root@example.com", "admin")

	rec := s.do(http.MethodPut, "/api/admin/orders/3/status", `{"status":"pending"}`, admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "illegal status transition")

	rec = s.do(http.MethodPut, "/api/admin/orders/3/status", `{"status":""}`, admin)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, "/api/admin/order-statuses", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"next":["in_progress","cancelled"]`)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/admin/order-statuses", "", "").Code)

	rec = s.do(http.MethodGet, "/api/admin/orders/export?format=csv", "", admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="auftraege_2026-10-21.csv"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get(echo.HeaderContentType))
}

func TestLookupDeleteConflict(t *testing.T) {
	s := newTestServer(t, stubJobUpdates{})
	admin := s.token(t, "root@example.com", "admin")

	rec := s.do(http.MethodDelete, "/api/admin/categories/4", "", admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"category is still referenced by 2 hardware items"}`, rec.Body.String())
}

func TestOrdersForUser(t *testing.T) {
	s := newTestServer(t, stubJobUpdates{})

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/api/orders/user", "", "").Code)

	rec := s.do(http.MethodGet, "/api/orders/user", "", s.token(t, "max@example.com", "user"))
	require.Equal(t, http.StatusOK, rec.Code)
	var res struct {
		Data []dto.OrderDTO `json:"data"`
	}
	decode(t, rec, &res)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "max@example.com", res.Data[0].EmployeeName)
}
