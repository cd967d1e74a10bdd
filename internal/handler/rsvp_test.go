package handler

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "sort"
    "strings"
    "sync"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/eventia/eventia-backend/internal/model"
    "github.com/eventia/eventia-backend/internal/rsvp"
)

// stubStore / stubLedger are just enough of the rsvp interfaces to
// drive the handlers through the real engine and coordinator.
type stubStore struct {
    events map[uint64]*model.Event
}

func (s *stubStore) GetByID(_ context.Context, id uint64) (*model.Event, error) {
    e, ok := s.events[id]
    if !ok {
        return nil, rsvp.ErrEventNotFound
    }
    cp := *e
    return &cp, nil
}

type stubLedger struct {
    mu     sync.Mutex
    nextID uint64
    rows   map[uint64]*model.Rsvp
}

func newStubLedger() *stubLedger { return &stubLedger{rows: make(map[uint64]*model.Rsvp)} }

func (l *stubLedger) clone(r *model.Rsvp) *model.Rsvp {
    cp := *r
    if r.WaitlistPosition != nil {
        p := *r.WaitlistPosition
        cp.WaitlistPosition = &p
    }
    if r.PromotedAt != nil {
        ts := *r.PromotedAt
        cp.PromotedAt = &ts
    }
    return &cp
}

func (l *stubLedger) Create(_ context.Context, r *model.Rsvp) error {
    l.mu.Lock()
    defer l.mu.Unlock()
    l.nextID++
    r.ID = l.nextID
    l.rows[r.ID] = l.clone(r)
    return nil
}

func (l *stubLedger) GetByID(_ context.Context, id uint64) (*model.Rsvp, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    r, ok := l.rows[id]
    if !ok {
        return nil, rsvp.ErrRsvpNotFound
    }
    return l.clone(r), nil
}

func (l *stubLedger) FindActive(_ context.Context, eventID uint64, email string) (*model.Rsvp, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    for _, r := range l.rows {
        if r.EventID == eventID && r.UserEmail == email && r.IsActive() {
            return l.clone(r), nil
        }
    }
    return nil, rsvp.ErrRsvpNotFound
}

func (l *stubLedger) FindLatest(_ context.Context, eventID uint64, email string) (*model.Rsvp, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    var latest *model.Rsvp
    for _, r := range l.rows {
        if r.EventID == eventID && r.UserEmail == email && (latest == nil || r.ID > latest.ID) {
            latest = r
        }
    }
    if latest == nil {
        return nil, rsvp.ErrRsvpNotFound
    }
    return l.clone(latest), nil
}

func (l *stubLedger) CountByStatus(_ context.Context, eventID uint64, status string) (int, error) {
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

func (l *stubLedger) MaxWaitlistPosition(_ context.Context, eventID uint64) (int, error) {
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

func (l *stubLedger) ListWaitlisted(_ context.Context, eventID uint64) ([]model.Rsvp, error) {
    l.mu.Lock()
    defer l.mu.Unlock()
    var out []model.Rsvp
    for _, r := range l.rows {
        if r.EventID == eventID && r.IsWaitlisted() {
            out = append(out, *l.clone(r))
        }
    }
    sort.Slice(out, func(i, j int) bool {
        return *out[i].WaitlistPosition < *out[j].WaitlistPosition
    })
    return out, nil
}

func (l *stubLedger) Update(_ context.Context, r *model.Rsvp) error {
    l.mu.Lock()
    defer l.mu.Unlock()
    if _, ok := l.rows[r.ID]; !ok {
        return rsvp.ErrRsvpNotFound
    }
    l.rows[r.ID] = l.clone(r)
    return nil
}

func newRsvpHandler(events ...*model.Event) (*RsvpHandler, *stubLedger) {
    store := &stubStore{events: make(map[uint64]*model.Event)}
    for _, e := range events {
        store.events[e.ID] = e
    }
    ledger := newStubLedger()
    locks := rsvp.NewLockTable()
    eng := rsvp.NewAdmissionEngine(store, ledger, locks, false)
    coord := rsvp.NewWaitlistCoordinator(store, ledger, nil, locks, false)
    return NewRsvpHandler(eng, coord), ledger
}

func doJSON(h echo.HandlerFunc, method, target, body string, params ...string) (*httptest.ResponseRecorder, error) {
    e := echo.New()
    var reader *strings.Reader
    if body == "" {
        reader = strings.NewReader("")
    } else {
        reader = strings.NewReader(body)
    }
    req := httptest.NewRequest(method, target, reader)
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    for i := 0; i+1 < len(params); i += 2 {
        c.SetParamNames(params[i])
        c.SetParamValues(params[i+1])
    }
    return rec, h(c)
}

func TestSubmitConfirmed(t *testing.T) {
    h, _ := newRsvpHandler(&model.Event{ID: 1, Title: "GopherCon", Capacity: 2})

    rec, err := doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
        `{"event_id":1,"name":"Ana","email":"ana@example.com"}`)
    require.NoError(t, err)
    assert.Equal(t, http.StatusCreated, rec.Code)

    var resp map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, "rsvp confirmed", resp["message"])
    assert.EqualValues(t, 1, resp["remaining_slots"])
}

func TestSubmitWaitlisted(t *testing.T) {
    h, _ := newRsvpHandler(&model.Event{ID: 1, Title: "GopherCon", Capacity: 1})

    _, err := doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
        `{"event_id":1,"name":"Ana","email":"ana@example.com"}`)
    require.NoError(t, err)

    rec, err := doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
        `{"event_id":1,"name":"Bruno","email":"bruno@example.com"}`)
    require.NoError(t, err)
    assert.Equal(t, http.StatusCreated, rec.Code)

    var resp map[string]any
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, "event full, added to waitlist", resp["message"])
    assert.EqualValues(t, 1, resp["waitlist_position"])
}

func TestSubmitDuplicateConflict(t *testing.T) {
    h, _ := newRsvpHandler(&model.Event{ID: 1, Title: "GopherCon", Capacity: 2})

    _, err := doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
        `{"event_id":1,"name":"Ana","email":"ana@example.com"}`)
    require.NoError(t, err)

    rec, err := doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
        `{"event_id":1,"name":"Ana","email":"ana@example.com"}`)
    require.NoError(t, err)
    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.Contains(t, rec.Body.String(), "already registered")
}

func TestSubmitUnknownEvent(t *testing.T) {
    h, _ := newRsvpHandler()

    rec, err := doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
        `{"event_id":7,"name":"Ana","email":"ana@example.com"}`)
    require.NoError(t, err)
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitCancelledEventConflict(t *testing.T) {
    h, _ := newRsvpHandler(&model.Event{ID: 1, Title: "GopherCon", Capacity: 2, IsCancelled: true})

    rec, err := doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
        `{"event_id":1,"name":"Ana","email":"ana@example.com"}`)
    require.NoError(t, err)
    assert.Equal(t, http.StatusConflict, rec.Code)
    assert.Contains(t, rec.Body.String(), "cancelled")
}

func TestSubmitMissingFields(t *testing.T) {
    h, _ := newRsvpHandler(&model.Event{ID: 1, Title: "GopherCon", Capacity: 2})

    rec, err := doJSON(h.Submit, http.MethodPost, "/v1/rsvp", `{"event_id":1}`)
    require.NoError(t, err)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelPromotesNext(t *testing.T) {
    h, _ := newRsvpHandler(&model.Event{ID: 1, Title: "GopherCon", Capacity: 1})

    _, err := doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
        `{"event_id":1,"name":"Ana","email":"ana@example.com"}`)
    require.NoError(t, err)
    _, err = doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
        `{"event_id":1,"name":"Bruno","email":"bruno@example.com"}`)
    require.NoError(t, err)

    rec, err := doJSON(h.Cancel, http.MethodPost, "/v1/rsvp/cancel",
        `{"event_id":1,"email":"ana@example.com"}`)
    require.NoError(t, err)
    assert.Equal(t, http.StatusOK, rec.Code)

    var resp struct {
        Cancelled rsvpView  `json:"cancelled"`
        Promoted  *rsvpView `json:"promoted"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, "cancelled", resp.Cancelled.Status)
    require.NotNil(t, resp.Promoted)
    assert.Equal(t, "bruno@example.com", resp.Promoted.Email)
    assert.Equal(t, "confirmed", resp.Promoted.Status)
}

func TestCancelUnknownRsvp(t *testing.T) {
    h, _ := newRsvpHandler(&model.Event{ID: 1, Title: "GopherCon", Capacity: 1})

    rec, err := doJSON(h.Cancel, http.MethodPost, "/v1/rsvp/cancel", `{"rsvp_id":99}`)
    require.NoError(t, err)
    assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetWaitlistOrder(t *testing.T) {
    h, _ := newRsvpHandler(&model.Event{ID: 1, Title: "GopherCon", Capacity: 1})

    for _, email := range []string{"a@x", "b@x", "c@x"} {
        _, err := doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
            `{"event_id":1,"name":"n","email":"`+email+`"}`)
        require.NoError(t, err)
    }

    rec, err := doJSON(h.GetWaitlist, http.MethodGet, "/v1/events/1/waitlist", "", "id", "1")
    require.NoError(t, err)
    assert.Equal(t, http.StatusOK, rec.Code)

    var resp struct {
        ConfirmedCount int        `json:"confirmed_count"`
        Available      int        `json:"available_slots"`
        Waitlist       []rsvpView `json:"waitlist"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, 1, resp.ConfirmedCount)
    assert.Equal(t, 0, resp.Available)
    require.Len(t, resp.Waitlist, 2)
    assert.Equal(t, "b@x", resp.Waitlist[0].Email)
    assert.Equal(t, "c@x", resp.Waitlist[1].Email)
}

func TestGetStatus(t *testing.T) {
    h, _ := newRsvpHandler(&model.Event{ID: 1, Title: "GopherCon", Capacity: 1})

    rec, err := doJSON(h.GetStatus, http.MethodGet, "/v1/events/1/rsvp-status?email=a%40x", "", "id", "1")
    require.NoError(t, err)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"registered":false`)

    _, err = doJSON(h.Submit, http.MethodPost, "/v1/rsvp",
        `{"event_id":1,"name":"n","email":"a@x"}`)
    require.NoError(t, err)

    rec, err = doJSON(h.GetStatus, http.MethodGet, "/v1/events/1/rsvp-status?email=a%40x", "", "id", "1")
    require.NoError(t, err)
    assert.Contains(t, rec.Body.String(), `"registered":true`)
    assert.Contains(t, rec.Body.String(), `"confirmed"`)
}

func TestGetStatusRequiresEmail(t *testing.T) {
    h, _ := newRsvpHandler(&model.Event{ID: 1, Title: "GopherCon", Capacity: 1})

    rec, err := doJSON(h.GetStatus, http.MethodGet, "/v1/events/1/rsvp-status", "", "id", "1")
    require.NoError(t, err)
    assert.Equal(t, http.StatusBadRequest, rec.Code)
}
