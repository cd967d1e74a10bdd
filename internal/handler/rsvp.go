// This file defines the registration endpoints: submitting an RSVP,
// cancelling one, inspecting the waitlist and looking up the status of a
// previous registration.  All of them delegate to internal/rsvp, which
// owns the admission and promotion rules; the handlers only translate
// between HTTP and the engine's errors.
package handler

import (
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/eventia/eventia-backend/internal/model"
    "github.com/eventia/eventia-backend/internal/rsvp"
)

// RsvpHandler serves registration and waitlist endpoints.
type RsvpHandler struct {
    Admission *rsvp.AdmissionEngine
    Waitlist  *rsvp.WaitlistCoordinator
}

func NewRsvpHandler(a *rsvp.AdmissionEngine, w *rsvp.WaitlistCoordinator) *RsvpHandler {
    return &RsvpHandler{Admission: a, Waitlist: w}
}

type rsvpReq struct {
    EventID uint64 `json:"event_id"`
    Name    string `json:"name"`
    Email   string `json:"email"`
}

type cancelReq struct {
    RsvpID  uint64 `json:"rsvp_id"`
    EventID uint64 `json:"event_id"`
    Email   string `json:"email"`
}

// rsvpView is the public representation of a registration record.
type rsvpView struct {
    ID               uint64     `json:"id"`
    EventID          uint64     `json:"event_id"`
    Name             string     `json:"name"`
    Email            string     `json:"email"`
    Status           string     `json:"status"`
    CheckedIn        bool       `json:"checked_in"`
    WaitlistPosition *int       `json:"waitlist_position,omitempty"`
    PromotedAt       *time.Time `json:"promoted_at,omitempty"`
}

func rsvpViewOf(r *model.Rsvp) rsvpView {
    return rsvpView{
        ID:               r.ID,
        EventID:          r.EventID,
        Name:             r.UserName,
        Email:            r.UserEmail,
        Status:           r.Status,
        CheckedIn:        r.CheckedIn,
        WaitlistPosition: r.WaitlistPosition,
        PromotedAt:       r.PromotedAt,
    }
}

// Submit handles POST /v1/rsvp.  A free seat yields a confirmed
// registration; a full event yields a waitlisted one with its queue
// position.  Both cases return 201 so clients treat them uniformly.
func (h *RsvpHandler) Submit(c echo.Context) error {
    var req rsvpReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.TrimSpace(req.Email)
    if req.EventID == 0 || req.Name == "" || req.Email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id, name and email required"})
    }

    adm, err := h.Admission.Submit(c.Request().Context(), req.EventID, req.Name, req.Email)
    if err != nil {
        var dup *rsvp.DuplicateError
        switch {
        case errors.As(err, &dup):
            return c.JSON(http.StatusConflict, echo.Map{
                "error": "already registered",
                "rsvp":  rsvpViewOf(dup.Existing),
            })
        case errors.Is(err, rsvp.ErrEventNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        case errors.Is(err, rsvp.ErrEventCancelled):
            return c.JSON(http.StatusConflict, echo.Map{"error": "event is cancelled"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rsvp failed"})
        }
    }

    resp := echo.Map{"rsvp": rsvpViewOf(adm.Rsvp)}
    if adm.Waitlisted {
        resp["message"] = "event full, added to waitlist"
        resp["waitlist_position"] = adm.Position
    } else {
        resp["message"] = "rsvp confirmed"
        resp["remaining_slots"] = adm.RemainingSlots
    }
    return c.JSON(http.StatusCreated, resp)
}

// Cancel handles POST /v1/rsvp/cancel.  The registration may be
// identified by rsvp_id or by event_id+email; the id wins when both are
// present.  Cancelling a confirmed seat promotes the head of the
// waitlist, whose record is echoed back when that happens.
func (h *RsvpHandler) Cancel(c echo.Context) error {
    var req cancelReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.TrimSpace(req.Email)
    if req.RsvpID == 0 && (req.EventID == 0 || req.Email == "") {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "rsvp_id or event_id+email required"})
    }

    res, err := h.Waitlist.Cancel(c.Request().Context(), rsvp.CancelRef{
        RsvpID:  req.RsvpID,
        EventID: req.EventID,
        Email:   req.Email,
    })
    if err != nil {
        switch {
        case errors.Is(err, rsvp.ErrRsvpNotFound), errors.Is(err, rsvp.ErrEventNotFound):
            return c.JSON(http.StatusNotFound, echo.Map{"error": "rsvp not found"})
        default:
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
        }
    }

    resp := echo.Map{"cancelled": rsvpViewOf(res.Cancelled)}
    if res.Promoted != nil {
        resp["promoted"] = rsvpViewOf(res.Promoted)
    }
    return c.JSON(http.StatusOK, resp)
}

// GetWaitlist handles GET /v1/events/:id/waitlist, returning the queue
// in promotion order plus the availability summary.
func (h *RsvpHandler) GetWaitlist(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    snap, err := h.Waitlist.WaitlistSnapshot(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, rsvp.ErrEventNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    items := make([]rsvpView, 0, len(snap.Waitlisted))
    for i := range snap.Waitlisted {
        items = append(items, rsvpViewOf(&snap.Waitlisted[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{
        "event_id":        snap.Event.ID,
        "capacity":        snap.Event.Capacity,
        "confirmed_count": snap.ConfirmedCount,
        "available_slots": snap.AvailableSlots,
        "waitlist":        items,
    })
}

// GetStatus handles GET /v1/events/:id/rsvp-status?email=.  It returns
// the most recent registration for that email on the event, including
// cancelled ones, so an attendee can always see where they stand.
func (h *RsvpHandler) GetStatus(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    email := strings.TrimSpace(c.QueryParam("email"))
    if email == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email required"})
    }
    rec, err := h.Waitlist.Status(c.Request().Context(), id, email)
    if err != nil {
        if errors.Is(err, rsvp.ErrEventNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if rec == nil {
        return c.JSON(http.StatusOK, echo.Map{"registered": false})
    }
    return c.JSON(http.StatusOK, echo.Map{"registered": true, "rsvp": rsvpViewOf(rec)})
}
