package router

import (
    "github.com/labstack/echo/v4"

    "github.com/eventia/eventia-backend/internal/handler"
)

// RegisterPublic registers the unauthenticated surface: event browsing
// and the RSVP lifecycle.  browseMW typically carries the Redis
// response cache, rsvpMW the token-bucket rate limiter; either may be
// empty when the corresponding feature is disabled.
func RegisterPublic(e *echo.Echo, ev *handler.EventHandler, rs *handler.RsvpHandler, browseMW, rsvpMW []echo.MiddlewareFunc) {
    // Event catalogue.  Reads are cacheable.
    e.GET("/v1/events", ev.List, browseMW...)
    e.GET("/v1/events/:id", ev.Get, browseMW...)

    // Registration lifecycle.  Mutations are rate limited, never cached.
    e.POST("/v1/rsvp", rs.Submit, rsvpMW...)
    e.POST("/v1/rsvp/cancel", rs.Cancel, rsvpMW...)

    // Waitlist transparency: anyone can see the queue and check where a
    // given email stands.
    e.GET("/v1/events/:id/waitlist", rs.GetWaitlist)
    e.GET("/v1/events/:id/rsvp-status", rs.GetStatus)
}
