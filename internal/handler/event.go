// Package handler exposes HTTP handlers for both authenticated and public
// endpoints.  This file covers the event catalogue: public browsing with
// filters, and the organizer-only create/update/cancel operations.
package handler

import (
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/eventia/eventia-backend/internal/model"
    "github.com/eventia/eventia-backend/internal/repository"
    "github.com/eventia/eventia-backend/internal/rsvp"
)

// EventHandler aggregates the repositories and the waitlist coordinator
// needed to serve the event catalogue.
type EventHandler struct {
    Events   *repository.EventRepo
    Rsvps    *repository.RsvpRepo
    Waitlist *rsvp.WaitlistCoordinator
}

func NewEventHandler(e *repository.EventRepo, r *repository.RsvpRepo, w *rsvp.WaitlistCoordinator) *EventHandler {
    return &EventHandler{Events: e, Rsvps: r, Waitlist: w}
}

// eventView is the public representation of an event.
type eventView struct {
    ID          uint64    `json:"id"`
    Title       string    `json:"title"`
    Description string    `json:"description"`
    DateTime    time.Time `json:"date_time"`
    Capacity    int       `json:"capacity"`
    Modality    string    `json:"modality"`
    Location    string    `json:"location"`
    Agenda      *string   `json:"agenda,omitempty"`
    IsCancelled bool      `json:"is_cancelled"`
}

// availabilityView summarizes how full an event is.
type availabilityView struct {
    Capacity       int `json:"capacity"`
    ConfirmedCount int `json:"confirmed_count"`
    AvailableSlots int `json:"available_slots"`
    WaitlistLength int `json:"waitlist_length"`
}

func viewOf(e *model.Event) eventView {
    return eventView{
        ID:          e.ID,
        Title:       e.Title,
        Description: e.Description,
        DateTime:    e.DateTime,
        Capacity:    e.Capacity,
        Modality:    e.Modality,
        Location:    e.Location,
        Agenda:      e.Agenda,
        IsCancelled: e.IsCancelled,
    }
}

type eventReq struct {
    Title       *string `json:"title"`
    Description *string `json:"description"`
    DateTime    *string `json:"date_time"` // RFC 3339
    Capacity    *int    `json:"capacity"`
    Modality    *string `json:"modality"` // free-form, e.g. in-person | virtual
    Location    *string `json:"location"`
    Agenda      *string `json:"agenda"`
}

// List returns the public event catalogue.  Supported query params:
// q (text over title/description/location), location, modality,
// time (upcoming|past|any), page, page_size.
func (h *EventHandler) List(c echo.Context) error {
    ctx := c.Request().Context()

    q := repository.EventSearchQuery{
        Text:       strings.TrimSpace(c.QueryParam("q")),
        Location:   strings.TrimSpace(c.QueryParam("location")),
        Modality:   strings.TrimSpace(c.QueryParam("modality")),
        TimeFilter: strings.ToLower(strings.TrimSpace(c.QueryParam("time"))),
    }
    if p, err := strconv.Atoi(c.QueryParam("page")); err == nil {
        q.Page = p
    }
    if ps, err := strconv.Atoi(c.QueryParam("page_size")); err == nil {
        q.PageSize = ps
    }
    // Mirror the repository's clamping so the echoed page numbers match
    // what was actually queried.
    if q.Page < 1 {
        q.Page = 1
    }
    if q.PageSize < 1 {
        q.PageSize = 20
    }
    if q.PageSize > 100 {
        q.PageSize = 100
    }

    events, total, err := h.Events.Search(ctx, q)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    items := make([]eventView, 0, len(events))
    for i := range events {
        items = append(items, viewOf(&events[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "items":     items,
        "total":     total,
        "page":      q.Page,
        "page_size": q.PageSize,
    })
}

// Get returns one event plus an availability summary so attendees can
// see whether an RSVP would confirm immediately or join the waitlist.
func (h *EventHandler) Get(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    snap, err := h.Waitlist.WaitlistSnapshot(ctx, id)
    if err != nil {
        if err == rsvp.ErrEventNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "event": viewOf(snap.Event),
        "availability": availabilityView{
            Capacity:       snap.Event.Capacity,
            ConfirmedCount: snap.ConfirmedCount,
            AvailableSlots: snap.AvailableSlots,
            WaitlistLength: len(snap.Waitlisted),
        },
    })
}

// Create makes a new event.  Organizer only.
func (h *EventHandler) Create(c echo.Context) error {
    var req eventReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
    }
    if req.DateTime == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_time required"})
    }
    when, err := time.Parse(time.RFC3339, *req.DateTime)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_time must be RFC 3339"})
    }
    if req.Capacity == nil || *req.Capacity < 1 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be >= 1"})
    }

    e := &model.Event{
        Title:    strings.TrimSpace(*req.Title),
        DateTime: when.UTC(),
        Capacity: *req.Capacity,
        Agenda:   req.Agenda,
    }
    if req.Description != nil {
        e.Description = strings.TrimSpace(*req.Description)
    }
    if req.Modality != nil {
        e.Modality = strings.ToLower(strings.TrimSpace(*req.Modality))
    }
    if req.Location != nil {
        e.Location = strings.TrimSpace(*req.Location)
    }

    ctx := c.Request().Context()
    if err := h.Events.Create(ctx, e); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
    }
    return c.JSON(http.StatusCreated, viewOf(e))
}

// Update applies a partial update to an event.  Shrinking capacity
// below the current confirmed count is rejected because it would strand
// already-admitted attendees.
func (h *EventHandler) Update(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    var req eventReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    e, err := h.Events.GetByID(ctx, id)
    if err != nil {
        if err == rsvp.ErrEventNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    if req.Title != nil {
        if strings.TrimSpace(*req.Title) == "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "title cannot be empty"})
        }
        e.Title = strings.TrimSpace(*req.Title)
    }
    if req.Description != nil {
        e.Description = strings.TrimSpace(*req.Description)
    }
    if req.DateTime != nil {
        when, perr := time.Parse(time.RFC3339, *req.DateTime)
        if perr != nil {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "date_time must be RFC 3339"})
        }
        e.DateTime = when.UTC()
    }
    if req.Capacity != nil {
        if *req.Capacity < 1 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be >= 1"})
        }
        confirmed, cerr := h.Rsvps.CountByStatus(ctx, id, model.StatusConfirmed)
        if cerr != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        if *req.Capacity < confirmed {
            return c.JSON(http.StatusConflict, echo.Map{
                "error":     "capacity below confirmed count",
                "confirmed": confirmed,
            })
        }
        e.Capacity = *req.Capacity
    }
    if req.Modality != nil {
        e.Modality = strings.ToLower(strings.TrimSpace(*req.Modality))
    }
    if req.Location != nil {
        e.Location = strings.TrimSpace(*req.Location)
    }
    if req.Agenda != nil {
        e.Agenda = req.Agenda
    }

    if err := h.Events.Update(ctx, e); err != nil {
        if err == rsvp.ErrEventNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
    }
    return c.JSON(http.StatusOK, viewOf(e))
}

// Delete is a soft cancel: the event row stays so existing RSVPs keep
// their history, but no new registration is accepted afterwards.
func (h *EventHandler) Delete(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    e, err := h.Events.MarkCancelled(ctx, id)
    if err != nil {
        if err == rsvp.ErrEventNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel event failed"})
    }
    return c.JSON(http.StatusOK, viewOf(e))
}
