// This file covers the organizer-side attendance flow: checking an
// attendee in at the door and pulling the per-event attendance report,
// either as JSON or as a CSV download.
package handler

import (
    "bytes"
    "encoding/csv"
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/eventia/eventia-backend/internal/repository"
    "github.com/eventia/eventia-backend/internal/rsvp"
)

// AttendanceHandler serves check-in and reporting endpoints.
type AttendanceHandler struct {
    Events *repository.EventRepo
    Rsvps  *repository.RsvpRepo
}

func NewAttendanceHandler(e *repository.EventRepo, r *repository.RsvpRepo) *AttendanceHandler {
    return &AttendanceHandler{Events: e, Rsvps: r}
}

type checkInReq struct {
    RsvpID uint64 `json:"rsvp_id"`
}

// CheckIn handles POST /v1/check-in.  Only confirmed registrations can
// be checked in; waitlisted and cancelled records are rejected since
// they never held a seat.
func (h *AttendanceHandler) CheckIn(c echo.Context) error {
    var req checkInReq
    if err := c.Bind(&req); err != nil || req.RsvpID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "rsvp_id required"})
    }
    ctx := c.Request().Context()

    rec, err := h.Rsvps.GetByID(ctx, req.RsvpID)
    if err != nil {
        if errors.Is(err, rsvp.ErrRsvpNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "rsvp not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !rec.IsConfirmed() {
        return c.JSON(http.StatusConflict, echo.Map{"error": "rsvp is not confirmed", "status": rec.Status})
    }

    updated, err := h.Rsvps.CheckIn(ctx, req.RsvpID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "message": "check-in successful",
        "rsvp":    rsvpViewOf(updated),
    })
}

// reportSummary carries the attendance totals for one event.
type reportSummary struct {
    TotalConfirmed       int    `json:"total_confirmed"`
    TotalPresent         int    `json:"total_present"`
    AttendancePercentage string `json:"attendance_percentage"`
}

func summarize(confirmed, present int) reportSummary {
    pct := "0%"
    if confirmed > 0 {
        pct = fmt.Sprintf("%.2f%%", float64(present)/float64(confirmed)*100)
    }
    return reportSummary{
        TotalConfirmed:       confirmed,
        TotalPresent:         present,
        AttendancePercentage: pct,
    }
}

// Report handles GET /v1/events/:id/report.  It returns the event
// title, the confirmed/present totals with the attendance percentage,
// and the full registration list newest first.
func (h *AttendanceHandler) Report(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    event, err := h.Events.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, rsvp.ErrEventNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    confirmed, present, err := h.Rsvps.AttendanceCounts(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    records, err := h.Rsvps.ListByEvent(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    attendees := make([]rsvpView, 0, len(records))
    for i := range records {
        attendees = append(attendees, rsvpViewOf(&records[i]))
    }

    return c.JSON(http.StatusOK, echo.Map{
        "event":     event.Title,
        "summary":   summarize(confirmed, present),
        "attendees": attendees,
    })
}

// ReportCSV handles GET /v1/events/:id/report.csv, the same report as a
// spreadsheet-friendly download.
func (h *AttendanceHandler) ReportCSV(c echo.Context) error {
    ctx := c.Request().Context()
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
    }
    event, err := h.Events.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, rsvp.ErrEventNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    records, err := h.Rsvps.ListByEvent(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    var buf bytes.Buffer
    w := csv.NewWriter(&buf)
    _ = w.Write([]string{"rsvp_id", "name", "email", "status", "checked_in", "waitlist_position", "promoted_at"})
    for i := range records {
        r := &records[i]
        pos := ""
        if r.WaitlistPosition != nil {
            pos = strconv.Itoa(*r.WaitlistPosition)
        }
        promoted := ""
        if r.PromotedAt != nil {
            promoted = r.PromotedAt.UTC().Format(time.RFC3339)
        }
        _ = w.Write([]string{
            strconv.FormatUint(r.ID, 10),
            r.UserName,
            r.UserEmail,
            r.Status,
            strconv.FormatBool(r.CheckedIn),
            pos,
            promoted,
        })
    }
    w.Flush()
    if err := w.Error(); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "write csv failed"})
    }

    filename := fmt.Sprintf("event-%d-report.csv", event.ID)
    c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
    return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
