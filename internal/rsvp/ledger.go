// Package rsvp implements the registration and waitlist state machine:
// capacity admission, the FIFO waitlist, cancellation-triggered promotion
// and queue renumbering.  It owns no storage of its own; persistence and
// notification are reached through the small interfaces below so the
// package can be driven by the MySQL repositories in production and by
// in-memory fakes in tests.
package rsvp

import (
    "context"
    "strings"

    "github.com/eventia/eventia-backend/internal/model"
)

// EventStore is the read-only view of events the state machine needs.
// Implementations return ErrEventNotFound when no row matches.
type EventStore interface {
    GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// RegistrationLedger is the system of record for RSVPs.  All mutations
// of status and waitlist position go through it.  Lookups that find
// nothing return ErrRsvpNotFound.
type RegistrationLedger interface {
    // Create inserts a new RSVP and populates its generated ID and
    // timestamps.
    Create(ctx context.Context, r *model.Rsvp) error
    // GetByID returns the RSVP with the given ID.
    GetByID(ctx context.Context, id uint64) (*model.Rsvp, error)
    // FindActive returns the confirmed or waitlisted RSVP for the
    // (event, email) pair, if any.
    FindActive(ctx context.Context, eventID uint64, email string) (*model.Rsvp, error)
    // FindLatest returns the most recent RSVP for the pair regardless
    // of status.
    FindLatest(ctx context.Context, eventID uint64, email string) (*model.Rsvp, error)
    // CountByStatus counts the event's RSVPs with the given status.
    CountByStatus(ctx context.Context, eventID uint64, status string) (int, error)
    // MaxWaitlistPosition returns the highest waitlist position in use
    // for the event, or 0 when the waitlist is empty.
    MaxWaitlistPosition(ctx context.Context, eventID uint64) (int, error)
    // ListWaitlisted returns the event's waitlisted RSVPs ordered by
    // position ascending.
    ListWaitlisted(ctx context.Context, eventID uint64) ([]model.Rsvp, error)
    // Update persists the RSVP's current status, waitlist position and
    // promotion timestamp.
    Update(ctx context.Context, r *model.Rsvp) error
}

// NotificationSink receives promotion notices.  Delivery is best
// effort: the coordinator logs and swallows errors, and always calls
// the sink after the event lock has been released.
type NotificationSink interface {
    NotifyPromotion(ctx context.Context, name, email, eventTitle string) error
}

// canonicalEmail lowercases and trims an address when canonicalization
// is enabled.  The original system matched emails byte for byte, so the
// toggle defaults to off and is threaded through from configuration.
func canonicalEmail(email string, on bool) string {
    if !on {
        return email
    }
    return strings.ToLower(strings.TrimSpace(email))
}
