package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/eventia/eventia-backend/internal/config"
    "github.com/eventia/eventia-backend/internal/database"
    "github.com/eventia/eventia-backend/internal/handler"
    "github.com/eventia/eventia-backend/internal/middleware"
    "github.com/eventia/eventia-backend/internal/queue"
    "github.com/eventia/eventia-backend/internal/repository"
    "github.com/eventia/eventia-backend/internal/router"
    "github.com/eventia/eventia-backend/internal/rsvp"
    queue_publisher "github.com/eventia/eventia-backend/internal/service"
)

func main() {
    // .env is optional; real deployments set variables directly.
    _ = godotenv.Load()

    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer func() { _ = db.Close() }()

    // Redis backs the rate limiter and the response cache.  A nil
    // client disables both; the API itself keeps working.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable, rate limiting and caching disabled")
    }

    events := repository.NewEventRepo(db)
    rsvps := repository.NewRsvpRepo(db)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)

    // One lock table shared by admission and cancellation so every
    // state transition for an event goes through the same mutex.
    locks := rsvp.NewLockTable()
    admission := rsvp.NewAdmissionEngine(events, rsvps, locks, cfg.CanonicalEmail)
    waitlist := rsvp.NewWaitlistCoordinator(events, rsvps, queue_publisher.Sink{}, locks, cfg.CanonicalEmail)

    authH := handler.NewAuthHandler(cfg, users, tokens)
    eventH := handler.NewEventHandler(events, rsvps, waitlist)
    rsvpH := handler.NewRsvpHandler(admission, waitlist)
    attendanceH := handler.NewAttendanceHandler(events, rsvps)

    e := echo.New()
    e.HideBanner = true

    browseMW := []echo.MiddlewareFunc{middleware.NewRedisCache(config.LoadCacheConfig(), rdb)}
    rsvpMW := []echo.MiddlewareFunc{middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)}

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterPublic(e, eventH, rsvpH, browseMW, rsvpMW)
    router.RegisterOrganizer(e, eventH, attendanceH, cfg.JWTSecret)

    // The consumer drains promotion notifications in the background and
    // reconnects on its own when the broker drops.
    go queue.StartPromotionConsumer()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
