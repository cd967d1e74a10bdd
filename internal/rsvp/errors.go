// Sentinel errors shared by the admission engine, the waitlist
// coordinator and the repositories that implement their interfaces.
// Handlers translate these into HTTP responses: not-found values become
// 404, ErrEventCancelled and DuplicateError become 409.
package rsvp

import (
    "errors"
    "fmt"

    "github.com/eventia/eventia-backend/internal/model"
)

// ErrEventNotFound is returned when the referenced event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrRsvpNotFound is returned when no RSVP matches the lookup, or when
// a cancel targets an RSVP that is no longer active.
var ErrRsvpNotFound = errors.New("rsvp not found")

// ErrEventCancelled is returned when a registration is attempted
// against a cancelled event.
var ErrEventCancelled = errors.New("event is cancelled")

// ErrInvariantViolation signals internal corruption of the waitlist
// ordering (a gap or duplicate position after renumbering).  It should
// never surface to callers; it exists so the guard in the coordinator
// fails loudly instead of silently persisting a broken queue.
var ErrInvariantViolation = errors.New("waitlist invariant violation")

// DuplicateError is returned when the (event, email) pair already has
// an active RSVP.  It carries the existing record so callers can show
// the attendee their current status and queue position instead of a
// bare error.
type DuplicateError struct {
    Existing *model.Rsvp
}

func (e *DuplicateError) Error() string {
    return fmt.Sprintf("email %s already registered for event %d (status %s)",
        e.Existing.UserEmail, e.Existing.EventID, e.Existing.Status)
}
