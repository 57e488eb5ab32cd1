package meetings

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up the creation form, meeting pages and JSON API.
// createLimit guards the two endpoints that insert meetings. The catch-all
// /:id routes must be registered after every fixed first segment; Echo
// prefers static routes anyway, and the service refuses those segments as
// meeting IDs.
func RegisterRoutes(e *echo.Echo, h *Handler, createLimit echo.MiddlewareFunc) {
	e.GET("/", h.NewDraft)
	e.GET("/about", h.About)

	dg := e.Group("/drafts/:id")
	dg.GET("", h.ShowDraft)
	dg.POST("/picker/select", h.SelectRange)
	dg.POST("/picker/click", h.Click)
	dg.POST("/picker/month", h.Navigate)
	dg.POST("/days/toggle", h.ToggleDay)
	dg.POST("/meeting", h.CreateMeeting, createLimit)

	api := e.Group("/api/v1")
	api.POST("/meetings", h.CreateMeetingAPI, createLimit)
	api.GET("/meetings/:id", h.GetMeetingAPI)

	e.GET("/:id", h.ShowMeeting)
	e.GET("/:id/calendar.ics", h.ExportICS)
}
