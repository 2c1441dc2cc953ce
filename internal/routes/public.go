package routes

import (
	"pvb-admin/pkg/middleware"

	"github.com/labstack/echo/v4"
)

// runPublicRouter mounts the request form surface. Only /orders/user needs a token.
func runPublicRouter(api *echo.Group, ctrls Controllers, authMW *middleware.AuthMiddleware) {
	api.GET("/bereiche", ctrls.Form.Bereiche)
	api.GET("/sachbereiche", ctrls.Form.Sachbereiche)
	api.GET("/teams", ctrls.Form.Teams)
	api.GET("/funktionen", ctrls.Form.Funktionen)
	api.GET("/positionen", ctrls.Form.Positionen)
	api.GET("/vorgesetzte", ctrls.Form.Vorgesetzte)
	api.GET("/options", ctrls.Form.Options)
	api.GET("/telefon-types", ctrls.Form.PhoneTypes)

	api.GET("/referenzprofile", ctrls.Profiles.Active)
	api.GET("/referenzprofile/bereich", ctrls.Profiles.ByDivision)

	api.GET("/hardware", ctrls.Hardware.All)
	api.GET("/hardware/profile", ctrls.Hardware.ForProfile)
	api.GET("/hardware/additional", ctrls.Hardware.Additional)
	api.GET("/hardware/categories", ctrls.Hardware.Categories)
	api.GET("/hardware/category", ctrls.Hardware.ByCategory)
	api.GET("/hardware/search", ctrls.Hardware.Search)

	api.GET("/software", ctrls.Software.All)
	api.GET("/software/profile", ctrls.Software.ForProfile)
	api.GET("/software/additional", ctrls.Software.Additional)
	api.GET("/software/manufacturers", ctrls.Software.Manufacturers)
	api.GET("/software/manufacturer", ctrls.Software.ByManufacturer)
	api.GET("/software/search", ctrls.Software.Search)

	sap := api.Group("/sap")
	sap.GET("/profiles", ctrls.Sap.Profiles)
	sap.GET("/categories", ctrls.Sap.Categories)
	sap.GET("/category", ctrls.Sap.ByCategory)
	sap.GET("/profile", ctrls.Sap.Profile)
	sap.GET("/statistics", ctrls.Sap.Statistics)
	sap.GET("/search", ctrls.Sap.Search)

	api.POST("/job-update", ctrls.JobUpdates.Submit, authMW.OptionalAuth)
	api.GET("/orders/user", ctrls.Orders.ForUser, authMW.Auth)
}
