// Package repository contains the MySQL data access layer.  Each repo
// wraps a *sql.DB and exposes the queries its domain needs; not-found
// conditions are reported with the sentinel errors from the rsvp
// package so handlers and the core state machine share one vocabulary.
package repository

import (
    "context"
    "database/sql"

    "github.com/eventia/eventia-backend/internal/model"
    "github.com/eventia/eventia-backend/internal/rsvp"
)

// EventRepo manages persistence for events.  Events are soft-cancelled
// via the is_cancelled flag and never deleted, so RSVP history stays
// intact.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo constructs an EventRepo with the given DB handle.
func NewEventRepo(db *sql.DB) *EventRepo {
    return &EventRepo{db: db}
}

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB {
    return r.db
}

var _ rsvp.EventStore = (*EventRepo)(nil)

const eventColumns = `id, title, description, date_time, capacity, modality, location, agenda, is_cancelled, created_at, updated_at`

func scanEvent(row *sql.Row) (*model.Event, error) {
    var e model.Event
    var agenda sql.NullString
    err := row.Scan(
        &e.ID, &e.Title, &e.Description, &e.DateTime, &e.Capacity,
        &e.Modality, &e.Location, &agenda, &e.IsCancelled,
        &e.CreatedAt, &e.UpdatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, rsvp.ErrEventNotFound
    }
    if err != nil {
        return nil, err
    }
    if agenda.Valid {
        a := agenda.String
        e.Agenda = &a
    }
    return &e, nil
}

// Create inserts a new event and populates the generated ID and
// DB-default fields (is_cancelled, timestamps) on the given struct.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
    const q = `INSERT INTO events (title, description, date_time, capacity, modality, location, agenda) VALUES (?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, e.Title, e.Description, e.DateTime.UTC(), e.Capacity, e.Modality, e.Location, e.Agenda)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    e.ID = uint64(id)
    // Query back the full row to populate defaults and timestamps.
    const sel = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
    got, err := scanEvent(r.db.QueryRowContext(ctx, sel, e.ID))
    if err != nil {
        return err
    }
    *e = *got
    return nil
}

// GetByID retrieves an event by its ID.  It returns rsvp.ErrEventNotFound
// when there is no matching row.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
    const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
    return scanEvent(r.db.QueryRowContext(ctx, q, id))
}

// Update rewrites the mutable event fields.  The is_cancelled flag is
// managed exclusively by MarkCancelled.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
    const q = `UPDATE events
               SET title = ?, description = ?, date_time = ?, capacity = ?, modality = ?, location = ?, agenda = ?
               WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, e.Title, e.Description, e.DateTime.UTC(), e.Capacity, e.Modality, e.Location, e.Agenda, e.ID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        // Either the row is missing or nothing changed; distinguish so
        // callers can 404 on a bad ID.
        var exists bool
        if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM events WHERE id = ?)`, e.ID).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return rsvp.ErrEventNotFound
        }
    }
    const sel = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
    got, err := scanEvent(r.db.QueryRowContext(ctx, sel, e.ID))
    if err != nil {
        return err
    }
    *e = *got
    return nil
}

// MarkCancelled flips the is_cancelled flag.  The original system
// treats event deletion as a soft cancel, so that is the only removal
// path offered.
func (r *EventRepo) MarkCancelled(ctx context.Context, id uint64) (*model.Event, error) {
    const q = `UPDATE events SET is_cancelled = 1 WHERE id = ?`
    if _, err := r.db.ExecContext(ctx, q, id); err != nil {
        return nil, err
    }
    const sel = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
    return scanEvent(r.db.QueryRowContext(ctx, sel, id))
}
