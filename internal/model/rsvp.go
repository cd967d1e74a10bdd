package model

import "time"

// RSVP status values.  An RSVP is "active" while confirmed or
// waitlisted; cancellation keeps the row for auditing but frees the
// (event, email) pair for a new registration.
const (
    StatusConfirmed  = "confirmed"
    StatusWaitlisted = "waitlisted"
    StatusCancelled  = "cancelled"
)

// Rsvp records one attendee's registration for an event.
//
// Fields:
//  ID               – primary key identifier.
//  EventID          – event being registered for.
//  UserName         – attendee display name.
//  UserEmail        – attendee email; unique per event among active rows.
//  Status           – confirmed, waitlisted or cancelled.
//  CheckedIn        – whether the attendee showed up (set at the door).
//  WaitlistPosition – 1-based queue position; set iff Status is waitlisted.
//  PromotedAt       – set iff the RSVP was promoted from the waitlist.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Rsvp struct {
    ID               uint64     // rsvps.id
    EventID          uint64     // rsvps.event_id
    UserName         string     // rsvps.user_name
    UserEmail        string     // rsvps.user_email
    Status           string     // rsvps.status
    CheckedIn        bool       // rsvps.checked_in
    WaitlistPosition *int       // rsvps.waitlist_position (nullable)
    PromotedAt       *time.Time // rsvps.promoted_at (nullable)
    CreatedAt        time.Time  // rsvps.created_at
    UpdatedAt        time.Time  // rsvps.updated_at
}

// IsConfirmed reports whether the RSVP currently holds a confirmed slot.
func (r *Rsvp) IsConfirmed() bool { return r.Status == StatusConfirmed }

// IsWaitlisted reports whether the RSVP is queued on the waitlist.
func (r *Rsvp) IsWaitlisted() bool { return r.Status == StatusWaitlisted }

// IsActive reports whether the RSVP still occupies the (event, email)
// slot, i.e. it has not been cancelled.
func (r *Rsvp) IsActive() bool {
    return r.Status == StatusConfirmed || r.Status == StatusWaitlisted
}
