package repository

import (
    "context"
    "database/sql"

    "github.com/eventia/eventia-backend/internal/model"
    "github.com/eventia/eventia-backend/internal/rsvp"
)

// RsvpRepo is the MySQL registration ledger.  It stores one row per
// registration attempt; status transitions and waitlist positions are
// decided upstream by the rsvp package, this layer only reads and
// writes rows.
type RsvpRepo struct {
    db *sql.DB
}

// NewRsvpRepo constructs an RsvpRepo bound to the given database.
func NewRsvpRepo(db *sql.DB) *RsvpRepo {
    return &RsvpRepo{db: db}
}

var _ rsvp.RegistrationLedger = (*RsvpRepo)(nil)

const rsvpColumns = `id, event_id, user_name, user_email, status, checked_in, waitlist_position, promoted_at, created_at, updated_at`

func scanRsvpRow(scan func(dest ...any) error) (*model.Rsvp, error) {
    var r model.Rsvp
    var pos sql.NullInt64
    var promoted sql.NullTime
    err := scan(
        &r.ID, &r.EventID, &r.UserName, &r.UserEmail, &r.Status,
        &r.CheckedIn, &pos, &promoted, &r.CreatedAt, &r.UpdatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, rsvp.ErrRsvpNotFound
    }
    if err != nil {
        return nil, err
    }
    if pos.Valid {
        p := int(pos.Int64)
        r.WaitlistPosition = &p
    }
    if promoted.Valid {
        t := promoted.Time
        r.PromotedAt = &t
    }
    return &r, nil
}

// Create inserts a new RSVP and populates the generated ID and
// timestamps on the given struct.
func (r *RsvpRepo) Create(ctx context.Context, rec *model.Rsvp) error {
    const q = `INSERT INTO rsvps (event_id, user_name, user_email, status, waitlist_position) VALUES (?, ?, ?, ?, ?)`
    var pos any
    if rec.WaitlistPosition != nil {
        pos = *rec.WaitlistPosition
    }
    res, err := r.db.ExecContext(ctx, q, rec.EventID, rec.UserName, rec.UserEmail, rec.Status, pos)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rec.ID = uint64(id)
    const sel = `SELECT ` + rsvpColumns + ` FROM rsvps WHERE id = ?`
    got, err := scanRsvpRow(r.db.QueryRowContext(ctx, sel, rec.ID).Scan)
    if err != nil {
        return err
    }
    *rec = *got
    return nil
}

// GetByID returns the RSVP with the given ID or rsvp.ErrRsvpNotFound.
func (r *RsvpRepo) GetByID(ctx context.Context, id uint64) (*model.Rsvp, error) {
    const q = `SELECT ` + rsvpColumns + ` FROM rsvps WHERE id = ?`
    return scanRsvpRow(r.db.QueryRowContext(ctx, q, id).Scan)
}

// FindActive returns the confirmed or waitlisted RSVP for the
// (event, email) pair.  At most one such row exists; the admission
// engine enforces that before inserting.
func (r *RsvpRepo) FindActive(ctx context.Context, eventID uint64, email string) (*model.Rsvp, error) {
    const q = `SELECT ` + rsvpColumns + ` FROM rsvps
               WHERE event_id = ? AND user_email = ? AND status IN (?, ?)
               LIMIT 1`
    return scanRsvpRow(r.db.QueryRowContext(ctx, q, eventID, email, model.StatusConfirmed, model.StatusWaitlisted).Scan)
}

// FindLatest returns the most recent RSVP for the pair regardless of
// status, so cancelled history still answers status queries.
func (r *RsvpRepo) FindLatest(ctx context.Context, eventID uint64, email string) (*model.Rsvp, error) {
    const q = `SELECT ` + rsvpColumns + ` FROM rsvps
               WHERE event_id = ? AND user_email = ?
               ORDER BY id DESC
               LIMIT 1`
    return scanRsvpRow(r.db.QueryRowContext(ctx, q, eventID, email).Scan)
}

// CountByStatus counts the event's RSVPs in the given status.
func (r *RsvpRepo) CountByStatus(ctx context.Context, eventID uint64, status string) (int, error) {
    const q = `SELECT COUNT(*) FROM rsvps WHERE event_id = ? AND status = ?`
    var n int
    if err := r.db.QueryRowContext(ctx, q, eventID, status).Scan(&n); err != nil {
        return 0, err
    }
    return n, nil
}

// MaxWaitlistPosition returns the highest position currently assigned
// on the event's waitlist, or 0 when it is empty.
func (r *RsvpRepo) MaxWaitlistPosition(ctx context.Context, eventID uint64) (int, error) {
    const q = `SELECT COALESCE(MAX(waitlist_position), 0) FROM rsvps WHERE event_id = ? AND status = ?`
    var n int
    if err := r.db.QueryRowContext(ctx, q, eventID, model.StatusWaitlisted).Scan(&n); err != nil {
        return 0, err
    }
    return n, nil
}

// ListWaitlisted returns the event's waitlisted RSVPs ordered by
// position ascending.
func (r *RsvpRepo) ListWaitlisted(ctx context.Context, eventID uint64) ([]model.Rsvp, error) {
    const q = `SELECT ` + rsvpColumns + ` FROM rsvps
               WHERE event_id = ? AND status = ?
               ORDER BY waitlist_position ASC`
    rows, err := r.db.QueryContext(ctx, q, eventID, model.StatusWaitlisted)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Rsvp, 0)
    for rows.Next() {
        rec, err := scanRsvpRow(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, *rec)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// Update persists status, waitlist position and promotion timestamp.
func (r *RsvpRepo) Update(ctx context.Context, rec *model.Rsvp) error {
    const q = `UPDATE rsvps SET status = ?, waitlist_position = ?, promoted_at = ? WHERE id = ?`
    var pos any
    if rec.WaitlistPosition != nil {
        pos = *rec.WaitlistPosition
    }
    var promoted any
    if rec.PromotedAt != nil {
        promoted = rec.PromotedAt.UTC()
    }
    res, err := r.db.ExecContext(ctx, q, rec.Status, pos, promoted, rec.ID)
    if err != nil {
        return err
    }
    if _, err := res.RowsAffected(); err != nil {
        return err
    }
    return nil
}

// CheckIn marks the RSVP as present and returns the updated row.
func (r *RsvpRepo) CheckIn(ctx context.Context, id uint64) (*model.Rsvp, error) {
    const q = `UPDATE rsvps SET checked_in = 1 WHERE id = ?`
    if _, err := r.db.ExecContext(ctx, q, id); err != nil {
        return nil, err
    }
    const sel = `SELECT ` + rsvpColumns + ` FROM rsvps WHERE id = ?`
    return scanRsvpRow(r.db.QueryRowContext(ctx, sel, id).Scan)
}

// ListByEvent returns every RSVP for an event, newest first.  Used by
// the attendance report and its CSV export.
func (r *RsvpRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Rsvp, error) {
    const q = `SELECT ` + rsvpColumns + ` FROM rsvps WHERE event_id = ? ORDER BY created_at DESC, id DESC`
    rows, err := r.db.QueryContext(ctx, q, eventID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Rsvp, 0)
    for rows.Next() {
        rec, err := scanRsvpRow(rows.Scan)
        if err != nil {
            return nil, err
        }
        out = append(out, *rec)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

// AttendanceCounts returns confirmed and checked-in totals for the
// attendance report.  Confirmed counts promoted attendees too, since
// promotion sets the status to confirmed.
func (r *RsvpRepo) AttendanceCounts(ctx context.Context, eventID uint64) (confirmed, present int, err error) {
    const q = `SELECT
                 COALESCE(SUM(status = ?), 0),
                 COALESCE(SUM(status = ? AND checked_in = 1), 0)
               FROM rsvps WHERE event_id = ?`
    err = r.db.QueryRowContext(ctx, q, model.StatusConfirmed, model.StatusConfirmed, eventID).Scan(&confirmed, &present)
    return confirmed, present, err
}
