package routes

import (
	"time"

	"pvb-admin/internal/controllers"
	"pvb-admin/internal/repositories"
	"pvb-admin/internal/services"
	"pvb-admin/pkg/config"
	"pvb-admin/pkg/eventbus"
	"pvb-admin/pkg/logger"
	"pvb-admin/pkg/metrics"
	"pvb-admin/pkg/middleware"
	"pvb-admin/pkg/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LookupControllers maps the admin path segment of each name table to its controller.
type LookupControllers map[string]*controllers.LookupController

// Controllers is everything the router mounts.
type Controllers struct {
	Form       *controllers.FormController
	Lookups    LookupControllers
	Hardware   *controllers.HardwareController
	Software   *controllers.SoftwareController
	Sap        *controllers.SapController
	Profiles   *controllers.ReferenceProfileController
	Employees  *controllers.EmployeeController
	Orders     *controllers.OrderController
	JobUpdates *controllers.JobUpdateController
	Dashboard  *controllers.DashboardController
	Health     *controllers.HealthController
}

// InitRouter wires repositories, services and controllers over dbConn and mounts them on e.
func InitRouter(
	e *echo.Echo,
	dbConn *pgxpool.Pool,
	cache repositories.CacheRepositoryInterface,
	bus *eventbus.Bus,
	jwtSvc service.JWTService,
	loggers logger.Loggers,
	cfg *config.Config,
) {
	loggers.Main.Info("initializing routes")

	txManager := repositories.NewTxManager(dbConn)
	ttl := cfg.Cache.TTL

	lookupRepo := func(table repositories.LookupTable) repositories.LookupRepositoryInterface {
		return repositories.NewLookupRepository(dbConn, txManager, table, loggers.Catalog)
	}
	divisionRepo := lookupRepo(repositories.DivisionTable)
	teamRepo := lookupRepo(repositories.TeamTable)
	functionRepo := lookupRepo(repositories.FunctionTable)
	positionRepo := lookupRepo(repositories.PositionTable)
	categoryRepo := lookupRepo(repositories.CategoryTable)
	manufacturerRepo := lookupRepo(repositories.ManufacturerTable)
	roleGroupRepo := lookupRepo(repositories.RoleGroupTable)
	changeTypeRepo := lookupRepo(repositories.ChangeTypeTable)

	hardwareRepo := repositories.NewHardwareRepository(dbConn, txManager, loggers.Catalog)
	softwareRepo := repositories.NewSoftwareRepository(dbConn, txManager, loggers.Catalog)
	sapRoleRepo := repositories.NewSapRoleRepository(dbConn, txManager, loggers.Catalog)
	profileRepo := repositories.NewReferenceProfileRepository(dbConn, loggers.Profile)
	employeeRepo := repositories.NewEmployeeRepository(dbConn, txManager, loggers.Main)
	orderRepo := repositories.NewOrderRepository(dbConn, loggers.Order)
	statusRepo := repositories.NewOrderStatusRepository(dbConn, loggers.Order)

	lookupService := func(repo repositories.LookupRepositoryInterface) services.LookupServiceInterface {
		return services.NewLookupService(repo, cache, ttl, loggers.Catalog)
	}
	divisions := lookupService(divisionRepo)
	teams := lookupService(teamRepo)
	functions := lookupService(functionRepo)
	positions := lookupService(positionRepo)
	categories := lookupService(categoryRepo)
	manufacturers := lookupService(manufacturerRepo)
	roleGroups := lookupService(roleGroupRepo)
	changeTypes := lookupService(changeTypeRepo)

	hardwareService := services.NewHardwareService(hardwareRepo, profileRepo, categories, cache, ttl, loggers.Catalog)
	softwareService := services.NewSoftwareService(softwareRepo, profileRepo, manufacturers, cache, ttl, loggers.Catalog)
	sapService := services.NewSapRoleService(sapRoleRepo, roleGroups, cache, ttl, loggers.Catalog)
	profileService := services.NewReferenceProfileService(profileRepo, hardwareRepo, softwareRepo, sapRoleRepo, txManager, loggers.Profile)
	employeeService := services.NewEmployeeService(employeeRepo, cache, ttl, loggers.Main)
	orderService := services.NewOrderService(orderRepo, statusRepo, employeeRepo, txManager, bus, cfg.Orders.StrictTransitions, loggers.Order)
	jobUpdateService := services.NewJobUpdateService(
		orderRepo, statusRepo, employeeRepo,
		services.CatalogRepositories{Profiles: profileRepo, Hardware: hardwareRepo, Software: softwareRepo, SapRoles: sapRoleRepo},
		changeTypes, divisions, positions,
		txManager, bus, loggers.Order,
	)
	dashboardService := services.NewDashboardService(categoryRepo, manufacturerRepo, roleGroupRepo, profileRepo, orderRepo, loggers.Main)

	lookupController := func(s services.LookupServiceInterface) *controllers.LookupController {
		return controllers.NewLookupController(s, loggers.Catalog)
	}
	ctrls := Controllers{
		Form: controllers.NewFormController(divisions, teams, functions, positions, employeeService, loggers.Catalog),
		Lookups: LookupControllers{
			"divisions":     lookupController(divisions),
			"teams":         lookupController(teams),
			"functions":     lookupController(functions),
			"positions":     lookupController(positions),
			"categories":    lookupController(categories),
			"manufacturers": lookupController(manufacturers),
			"role-groups":   lookupController(roleGroups),
		},
		Hardware:   controllers.NewHardwareController(hardwareService, loggers.Catalog),
		Software:   controllers.NewSoftwareController(softwareService, loggers.Catalog),
		Sap:        controllers.NewSapController(sapService, loggers.Catalog),
		Profiles:   controllers.NewReferenceProfileController(profileService, loggers.Profile),
		Employees:  controllers.NewEmployeeController(employeeService, loggers.Main),
		Orders:     controllers.NewOrderController(orderService, loggers.Order),
		JobUpdates: controllers.NewJobUpdateController(jobUpdateService, loggers.Order),
		Dashboard:  controllers.NewDashboardController(dashboardService, loggers.Main),
		Health:     controllers.NewHealthController(dbConn, loggers.Main),
	}

	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.HTTP)
	registerRoutes(e, ctrls, authMW, cfg.Server.RequestTimeout)
	loggers.Main.Info("routes initialized", zap.Int("routes", len(e.Routes())))
}

// registerRoutes mounts ctrls; operational endpoints stay outside the request timeout.
func registerRoutes(e *echo.Echo, ctrls Controllers, authMW *middleware.AuthMiddleware, timeout time.Duration) {
	e.GET("/health", ctrls.Health.Health)
	e.GET("/metrics", metrics.Handler())

	api := e.Group("/api", middleware.RequestTimeout(timeout))
	runPublicRouter(api, ctrls, authMW)

	admin := api.Group("/admin", authMW.Auth, authMW.RequireAdmin)
	runAdminRouter(admin, ctrls)
}
