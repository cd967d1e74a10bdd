package router

import (
    "github.com/labstack/echo/v4"

    "github.com/eventia/eventia-backend/internal/handler"
    "github.com/eventia/eventia-backend/internal/middleware"
    "github.com/eventia/eventia-backend/internal/model"
)

// RegisterOrganizer registers event management and attendance routes.
// All of them require a valid access token carrying the ORGANIZER role.
func RegisterOrganizer(e *echo.Echo, ev *handler.EventHandler, at *handler.AttendanceHandler, jwtSecret string) {
    g := e.Group("/v1")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(model.RoleOrganizer))

    // Event CRUD.  Deletion is a soft cancel so RSVP history survives.
    g.POST("/events", ev.Create)
    g.PUT("/events/:id", ev.Update)
    g.DELETE("/events/:id", ev.Delete)

    // Door check-in and the attendance report.
    g.POST("/check-in", at.CheckIn)
    g.GET("/events/:id/report", at.Report)
    g.GET("/events/:id/report.csv", at.ReportCSV)
}
