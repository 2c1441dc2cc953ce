package routes

import (
	"github.com/labstack/echo/v4"
)

type crudController interface {
	List(echo.Context) error
	Find(echo.Context) error
	Create(echo.Context) error
	Update(echo.Context) error
	Delete(echo.Context) error
}

func runCrudRouter(group *echo.Group, path string, c crudController) {
	group.GET(path, c.List)
	group.GET(path+"/:id", c.Find)
	group.POST(path, c.Create)
	group.PUT(path+"/:id", c.Update)
	group.DELETE(path+"/:id", c.Delete)
}

func runAdminRouter(admin *echo.Group, ctrls Controllers) {
	for path, c := range ctrls.Lookups {
		runCrudRouter(admin, "/"+path, c)
	}
	runCrudRouter(admin, "/hardware", ctrls.Hardware)
	runCrudRouter(admin, "/software", ctrls.Software)
	runCrudRouter(admin, "/sap-roles", ctrls.Sap)
	runCrudRouter(admin, "/employees", ctrls.Employees)

	profiles := admin.Group("/reference-profiles")
	profiles.GET("", ctrls.Profiles.List)
	profiles.GET("/:id", ctrls.Profiles.Find)
	profiles.GET("/:id/hardware", ctrls.Profiles.Hardware)
	profiles.GET("/:id/software", ctrls.Profiles.Software)
	profiles.GET("/:id/sap-roles", ctrls.Profiles.SapRoles)
	profiles.POST("", ctrls.Profiles.Create)
	profiles.PUT("/:id", ctrls.Profiles.Update)
	profiles.DELETE("/:id", ctrls.Profiles.Deactivate)

	admin.GET("/order-statuses", ctrls.Orders.Statuses)

	orders := admin.Group("/orders")
	orders.GET("", ctrls.Orders.List)
	orders.GET("/stats", ctrls.Orders.Stats)
	orders.GET("/export", ctrls.Orders.Export)
	orders.GET("/:id", ctrls.Orders.Find)
	orders.PUT("/:id/status", ctrls.Orders.UpdateStatus)
	orders.PUT("/:id/process", ctrls.Orders.Process)

	admin.GET("/dashboard", ctrls.Dashboard.Overview)
}
