package rsvp

import (
    "context"
    "errors"
    "fmt"
    "log"
    "time"

    "github.com/eventia/eventia-backend/internal/model"
)

// WaitlistCoordinator owns every mutation of waitlist ordering:
// cancellation, promotion of the queue head when a confirmed slot
// frees up, and renumbering of the remaining queue.  It shares the
// per-event lock table with the admission engine.
type WaitlistCoordinator struct {
    events         EventStore
    ledger         RegistrationLedger
    sink           NotificationSink
    locks          *LockTable
    canonicalEmail bool
}

// NewWaitlistCoordinator wires the coordinator.  sink may be nil when
// promotion notifications are not configured.
func NewWaitlistCoordinator(events EventStore, ledger RegistrationLedger, sink NotificationSink, locks *LockTable, canonicalEmail bool) *WaitlistCoordinator {
    if events == nil || ledger == nil || locks == nil {
        panic("nil dependency passed to NewWaitlistCoordinator")
    }
    return &WaitlistCoordinator{events: events, ledger: ledger, sink: sink, locks: locks, canonicalEmail: canonicalEmail}
}

// CancelRef identifies the RSVP to cancel: either an explicit ID, or
// an (event, email) pair resolved against the active registration.
// When both are supplied the ID wins.
type CancelRef struct {
    RsvpID  uint64
    EventID uint64
    Email   string
}

// CancelResult reports the cancelled RSVP and, when the cancellation
// freed a confirmed slot, the registration promoted into it.
type CancelResult struct {
    Cancelled *model.Rsvp
    Promoted  *model.Rsvp
}

// promotionNote carries what the notification needs out of the locked
// region so the sink is only called after the lock is released.
type promotionNote struct {
    name, email, eventTitle string
}

// Cancel marks the target RSVP cancelled and drops its waitlist
// position.  If the target held a confirmed slot, the head of the
// waitlist is promoted into it and the queue is renumbered.  A cancel
// that targets an already-cancelled RSVP fails with ErrRsvpNotFound so
// a repeated request can never trigger a second promotion.
func (w *WaitlistCoordinator) Cancel(ctx context.Context, ref CancelRef) (*CancelResult, error) {
    ref.Email = canonicalEmail(ref.Email, w.canonicalEmail)

    // Resolve once outside the lock just to learn the event ID, then
    // re-resolve inside it for a fresh view.
    probe, err := w.resolve(ctx, ref)
    if err != nil {
        return nil, err
    }

    mu := w.locks.Acquire(probe.EventID)
    mu.Lock()
    result, note, err := w.cancelLocked(ctx, ref)
    mu.Unlock()
    if err != nil {
        return nil, err
    }
    if note != nil {
        w.notify(ctx, note)
    }
    return result, nil
}

func (w *WaitlistCoordinator) cancelLocked(ctx context.Context, ref CancelRef) (*CancelResult, *promotionNote, error) {
    target, err := w.resolve(ctx, ref)
    if err != nil {
        return nil, nil, err
    }
    wasConfirmed := target.IsConfirmed()

    target.Status = model.StatusCancelled
    target.WaitlistPosition = nil // a cancelled RSVP never holds a position
    if err := w.ledger.Update(ctx, target); err != nil {
        return nil, nil, fmt.Errorf("cancel rsvp: %w", err)
    }

    var promoted *model.Rsvp
    var note *promotionNote
    if wasConfirmed {
        promoted, note, err = w.promoteNextLocked(ctx, target.EventID)
    } else {
        // Cancelling a waitlisted entry frees no slot; just close the
        // gap it leaves in the queue.
        err = w.renumberLocked(ctx, target.EventID)
    }
    if err != nil {
        return nil, nil, err
    }
    return &CancelResult{Cancelled: target, Promoted: promoted}, note, nil
}

// resolve finds the cancel target.  An explicit ID must point at an
// active RSVP; the (event, email) form only ever matches active rows.
func (w *WaitlistCoordinator) resolve(ctx context.Context, ref CancelRef) (*model.Rsvp, error) {
    if ref.RsvpID != 0 {
        r, err := w.ledger.GetByID(ctx, ref.RsvpID)
        if err != nil {
            return nil, err
        }
        if !r.IsActive() {
            return nil, ErrRsvpNotFound
        }
        return r, nil
    }
    if ref.EventID != 0 && ref.Email != "" {
        return w.ledger.FindActive(ctx, ref.EventID, ref.Email)
    }
    return nil, ErrRsvpNotFound
}

// PromoteNext promotes the head of the event's waitlist into a
// confirmed slot, outside of any cancellation.  It exists for forced
// re-syncs after manual ledger repairs.  An empty waitlist returns
// (nil, nil): not promoting anyone is a normal outcome.
func (w *WaitlistCoordinator) PromoteNext(ctx context.Context, eventID uint64) (*model.Rsvp, error) {
    mu := w.locks.Acquire(eventID)
    mu.Lock()
    promoted, note, err := w.promoteNextLocked(ctx, eventID)
    mu.Unlock()
    if err != nil {
        return nil, err
    }
    if note != nil {
        w.notify(ctx, note)
    }
    return promoted, nil
}

func (w *WaitlistCoordinator) promoteNextLocked(ctx context.Context, eventID uint64) (*model.Rsvp, *promotionNote, error) {
    queue, err := w.ledger.ListWaitlisted(ctx, eventID)
    if err != nil {
        return nil, nil, fmt.Errorf("load waitlist: %w", err)
    }
    if len(queue) == 0 {
        return nil, nil, nil
    }

    head := queue[0]
    now := time.Now().UTC()
    head.Status = model.StatusConfirmed
    head.WaitlistPosition = nil
    head.PromotedAt = &now
    if err := w.ledger.Update(ctx, &head); err != nil {
        return nil, nil, fmt.Errorf("promote rsvp %d: %w", head.ID, err)
    }

    if err := w.renumberLocked(ctx, eventID); err != nil {
        return nil, nil, err
    }

    note := &promotionNote{name: head.UserName, email: head.UserEmail}
    if event, err := w.events.GetByID(ctx, eventID); err == nil {
        note.eventTitle = event.Title
    } else {
        log.Printf("rsvp: lookup event %d for promotion notice failed: %v", eventID, err)
    }
    return &head, note, nil
}

// renumberLocked reassigns positions 1..N to the remaining waitlisted
// RSVPs in their current order.  Running it twice in a row is a no-op,
// and it verifies the result so a gap or duplicate can never be
// persisted silently.
func (w *WaitlistCoordinator) renumberLocked(ctx context.Context, eventID uint64) error {
    queue, err := w.ledger.ListWaitlisted(ctx, eventID)
    if err != nil {
        return fmt.Errorf("load waitlist for renumber: %w", err)
    }
    for i := range queue {
        want := i + 1
        if queue[i].WaitlistPosition != nil && *queue[i].WaitlistPosition == want {
            continue
        }
        queue[i].WaitlistPosition = &want
        if err := w.ledger.Update(ctx, &queue[i]); err != nil {
            return fmt.Errorf("renumber rsvp %d: %w", queue[i].ID, err)
        }
    }

    check, err := w.ledger.ListWaitlisted(ctx, eventID)
    if err != nil {
        return fmt.Errorf("verify waitlist: %w", err)
    }
    for i := range check {
        if check[i].WaitlistPosition == nil || *check[i].WaitlistPosition != i+1 {
            return fmt.Errorf("%w: event %d slot %d", ErrInvariantViolation, eventID, i+1)
        }
    }
    return nil
}

// Snapshot is the waitlist view for an event plus the derived capacity
// summary.
type Snapshot struct {
    Event          *model.Event
    Waitlisted     []model.Rsvp
    ConfirmedCount int
    AvailableSlots int
}

// WaitlistSnapshot returns the ordered waitlist and summary counts,
// read under the event lock so the list and the counts describe one
// consistent state.
func (w *WaitlistCoordinator) WaitlistSnapshot(ctx context.Context, eventID uint64) (*Snapshot, error) {
    mu := w.locks.Acquire(eventID)
    mu.Lock()
    defer mu.Unlock()

    event, err := w.events.GetByID(ctx, eventID)
    if err != nil {
        return nil, err
    }
    confirmed, err := w.ledger.CountByStatus(ctx, eventID, model.StatusConfirmed)
    if err != nil {
        return nil, fmt.Errorf("count confirmed rsvps: %w", err)
    }
    queue, err := w.ledger.ListWaitlisted(ctx, eventID)
    if err != nil {
        return nil, fmt.Errorf("load waitlist: %w", err)
    }
    available := event.Capacity - confirmed
    if available < 0 {
        available = 0
    }
    return &Snapshot{
        Event:          event,
        Waitlisted:     queue,
        ConfirmedCount: confirmed,
        AvailableSlots: available,
    }, nil
}

// Status returns the most recent RSVP for the (event, email) pair, or
// (nil, nil) when the address never registered.
func (w *WaitlistCoordinator) Status(ctx context.Context, eventID uint64, email string) (*model.Rsvp, error) {
    email = canonicalEmail(email, w.canonicalEmail)
    r, err := w.ledger.FindLatest(ctx, eventID, email)
    if errors.Is(err, ErrRsvpNotFound) {
        return nil, nil
    }
    if err != nil {
        return nil, err
    }
    return r, nil
}

// notify delivers a promotion notice on a best-effort basis.  Failures
// are logged and swallowed; by the time this runs the ledger mutation
// is already committed and the event lock released.
func (w *WaitlistCoordinator) notify(ctx context.Context, n *promotionNote) {
    if w.sink == nil {
        return
    }
    if err := w.sink.NotifyPromotion(ctx, n.name, n.email, n.eventTitle); err != nil {
        log.Printf("rsvp: promotion notification for %s failed: %v", n.email, err)
    }
}
