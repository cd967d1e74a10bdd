package rsvp

import (
    "context"
    "sort"
    "sync"

    "github.com/eventia/eventia-backend/internal/model"
)

// memStore is an in-memory EventStore for tests.
type memStore struct {
    mu     sync.Mutex
    events map[uint64]*model.Event
}

func newMemStore(events ...*model.Event) *memStore {
    s := &memStore{events: make(map[uint64]*model.Event)}
    for _, e := range events {
        cp := *e
        s.events[e.ID] = &cp
    }
    return s
}

func (s *memStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    e, ok := s.events[id]
    if !ok {
        return nil, ErrEventNotFound
    }
    cp := *e
    return &cp, nil
}

// memLedger is an in-memory RegistrationLedger.  All methods hand out
// copies so tests cannot mutate stored rows by accident.
type memLedger struct {
    mu     sync.Mutex
    nextID uint64
    rows   map[uint64]*model.Rsvp
}

func newMemLedger() *memLedger {
    return &memLedger{rows: make(map[uint64]*model.Rsvp)}
}

func (l *memLedger) Create(_ context.Context, r *model.Rsvp) error {
    l.mu.Lock()
    defer l.mu.Unlock()
    l.nextID++
    r.ID = l.nextID
    cp := *r
    if r.WaitlistPosition != nil {
        p := *r.WaitlistPosition
        cp.WaitlistPosition = &p
    }
    l.rows[r.ID] = &cp
    return nil
}

func (l *memLedger) GetByID(_ context.Context, id uint64) (*model.Rsvp, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    r, ok := l.rows[id]
    if !ok {
        return nil, ErrRsvpNotFound
    }
    cp := copyRsvp(r)
    return &cp, nil
}

func (l *memLedger) FindActive(_ context.Context, eventID uint64, email string) (*model.Rsvp, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    for _, r := range l.rows {
        if r.EventID == eventID && r.UserEmail == email && r.IsActive() {
            cp := copyRsvp(r)
            return &cp, nil
        }
    }
    return nil, ErrRsvpNotFound
}

func (l *memLedger) FindLatest(_ context.Context, eventID uint64, email string) (*model.Rsvp, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    var latest *model.Rsvp
    for _, r := range l.rows {
        if r.EventID == eventID && r.UserEmail == email {
            if latest == nil || r.ID > latest.ID {
                latest = r
            }
        }
    }
    if latest == nil {
        return nil, ErrRsvpNotFound
    }
    cp := copyRsvp(latest)
    return &cp, nil
}

func (l *memLedger) CountByStatus(_ context.Context, eventID uint64, status string) (int, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    n := 0
    for _, r := range l.rows {
        if r.EventID == eventID && r.Status == status {
            n++
        }
    }
    return n, nil
}

func (l *memLedger) MaxWaitlistPosition(_ context.Context, eventID uint64) (int, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    max := 0
    for _, r := range l.rows {
        if r.EventID == eventID && r.WaitlistPosition != nil && *r.WaitlistPosition > max {
            max = *r.WaitlistPosition
        }
    }
    return max, nil
}

func (l *memLedger) ListWaitlisted(_ context.Context, eventID uint64) ([]model.Rsvp, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    var out []model.Rsvp
    for _, r := range l.rows {
        if r.EventID == eventID && r.IsWaitlisted() {
            out = append(out, copyRsvp(r))
        }
    }
    sort.Slice(out, func(i, j int) bool {
        pi, pj := 0, 0
        if out[i].WaitlistPosition != nil {
            pi = *out[i].WaitlistPosition
        }
        if out[j].WaitlistPosition != nil {
            pj = *out[j].WaitlistPosition
        }
        if pi != pj {
            return pi < pj
        }
        return out[i].ID < out[j].ID
    })
    return out, nil
}

func (l *memLedger) Update(_ context.Context, r *model.Rsvp) error {
    l.mu.Lock()
    defer l.mu.Unlock()
    if _, ok := l.rows[r.ID]; !ok {
        return ErrRsvpNotFound
    }
    cp := copyRsvp(r)
    l.rows[r.ID] = &cp
    return nil
}

func copyRsvp(r *model.Rsvp) model.Rsvp {
    cp := *r
    if r.WaitlistPosition != nil {
        p := *r.WaitlistPosition
        cp.WaitlistPosition = &p
    }
    if r.PromotedAt != nil {
        t := *r.PromotedAt
        cp.PromotedAt = &t
    }
    return cp
}

// recordSink captures promotion notices and can be told to fail.
type recordSink struct {
    mu    sync.Mutex
    notes []promotionNote
    err   error
}

func (s *recordSink) NotifyPromotion(_ context.Context, name, email, eventTitle string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.notes = append(s.notes, promotionNote{name: name, email: email, eventTitle: eventTitle})
    return s.err
}

func (s *recordSink) all() []promotionNote {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]promotionNote, len(s.notes))
    copy(out, s.notes)
    return out
}
