package rsvp

import (
    "context"
    "fmt"

    "github.com/eventia/eventia-backend/internal/model"
)

// AdmissionEngine decides, for each registration attempt, whether the
// attendee gets a confirmed slot or a waitlist position.  The whole
// decision (count confirmed, compare to capacity, insert) runs under
// the event's lock so two near-boundary submissions can never both be
// admitted.
type AdmissionEngine struct {
    events         EventStore
    ledger         RegistrationLedger
    locks          *LockTable
    canonicalEmail bool
}

// NewAdmissionEngine wires the engine to its collaborators.  The lock
// table must be the same instance the waitlist coordinator uses.
func NewAdmissionEngine(events EventStore, ledger RegistrationLedger, locks *LockTable, canonicalEmail bool) *AdmissionEngine {
    if events == nil || ledger == nil || locks == nil {
        panic("nil dependency passed to NewAdmissionEngine")
    }
    return &AdmissionEngine{events: events, ledger: ledger, locks: locks, canonicalEmail: canonicalEmail}
}

// Admission is the outcome of a successful Submit.  Exactly one of the
// two shapes applies: a confirmed RSVP with RemainingSlots, or a
// waitlisted RSVP with its 1-based Position.
type Admission struct {
    Rsvp           *model.Rsvp
    Waitlisted     bool
    Position       int // waitlist position, set when Waitlisted
    RemainingSlots int // slots left after this admission, set when confirmed
}

// Submit registers an attendee for an event.  Checks run in order:
// the event must exist (ErrEventNotFound) and not be cancelled
// (ErrEventCancelled), and the email must not already hold an active
// RSVP (DuplicateError with the existing record).  While confirmed
// count < capacity the RSVP is confirmed; otherwise it is appended to
// the waitlist at max position + 1.
func (e *AdmissionEngine) Submit(ctx context.Context, eventID uint64, name, email string) (*Admission, error) {
    email = canonicalEmail(email, e.canonicalEmail)

    mu := e.locks.Acquire(eventID)
    mu.Lock()
    defer mu.Unlock()

    event, err := e.events.GetByID(ctx, eventID)
    if err != nil {
        return nil, err
    }
    if event.IsCancelled {
        return nil, ErrEventCancelled
    }

    existing, err := e.ledger.FindActive(ctx, eventID, email)
    if err == nil {
        return nil, &DuplicateError{Existing: existing}
    }
    if err != ErrRsvpNotFound {
        return nil, fmt.Errorf("check duplicate rsvp: %w", err)
    }

    confirmed, err := e.ledger.CountByStatus(ctx, eventID, model.StatusConfirmed)
    if err != nil {
        return nil, fmt.Errorf("count confirmed rsvps: %w", err)
    }

    r := &model.Rsvp{
        EventID:   eventID,
        UserName:  name,
        UserEmail: email,
    }

    if confirmed < event.Capacity {
        r.Status = model.StatusConfirmed
        if err := e.ledger.Create(ctx, r); err != nil {
            return nil, fmt.Errorf("create confirmed rsvp: %w", err)
        }
        return &Admission{Rsvp: r, RemainingSlots: event.Capacity - confirmed - 1}, nil
    }

    // Event is full: append to the waitlist.  The position is derived
    // from a fresh read inside the same locked region as the insert so
    // it cannot race with a concurrent promotion's renumbering.
    maxPos, err := e.ledger.MaxWaitlistPosition(ctx, eventID)
    if err != nil {
        return nil, fmt.Errorf("read waitlist tail: %w", err)
    }
    pos := maxPos + 1
    r.Status = model.StatusWaitlisted
    r.WaitlistPosition = &pos
    if err := e.ledger.Create(ctx, r); err != nil {
        return nil, fmt.Errorf("create waitlisted rsvp: %w", err)
    }
    return &Admission{Rsvp: r, Waitlisted: true, Position: pos}, nil
}
