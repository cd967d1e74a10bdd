package repository

import (
    "context"
    "strings"

    "github.com/eventia/eventia-backend/internal/model"
)

// EventSearchQuery defines filters & pagination for listing events.
// Text filters match case-insensitively as substrings; TimeFilter is
// "upcoming" (default), "past" or "any".
type EventSearchQuery struct {
    Text             string // matches title or description
    Location         string
    Modality         string
    TimeFilter       string
    IncludeCancelled bool
    Page             int
    PageSize         int
}

// Search returns the page of events matching the query plus the total
// match count.  Cancelled events are hidden unless explicitly asked
// for; results are ordered by date ascending so the next events come
// first.
func (r *EventRepo) Search(ctx context.Context, q EventSearchQuery) ([]model.Event, int64, error) {
    if q.Page < 1 {
        q.Page = 1
    }
    if q.PageSize < 1 {
        q.PageSize = 20
    }
    if q.PageSize > 100 {
        q.PageSize = 100
    }

    where := []string{}
    args := []any{}

    switch strings.ToLower(q.TimeFilter) {
    case "any":
    case "past":
        where = append(where, "e.date_time < NOW()")
    default:
        where = append(where, "e.date_time >= NOW()")
    }

    if !q.IncludeCancelled {
        where = append(where, "e.is_cancelled = 0")
    }
    if q.Text != "" {
        where = append(where, "(LOWER(e.title) LIKE ? OR LOWER(e.description) LIKE ?)")
        pat := "%" + strings.ToLower(q.Text) + "%"
        args = append(args, pat, pat)
    }
    if q.Location != "" {
        where = append(where, "LOWER(e.location) LIKE ?")
        args = append(args, "%"+strings.ToLower(q.Location)+"%")
    }
    if q.Modality != "" {
        where = append(where, "LOWER(e.modality) = ?")
        args = append(args, strings.ToLower(q.Modality))
    }

    cond := "1=1"
    if len(where) > 0 {
        cond = strings.Join(where, " AND ")
    }

    var total int64
    countSQL := `SELECT COUNT(*) FROM events e WHERE ` + cond
    if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
        return nil, 0, err
    }

    limit := q.PageSize
    offset := (q.Page - 1) * q.PageSize

    dataSQL := `SELECT ` + eventColumns + `
		FROM events e
		WHERE ` + cond + `
		ORDER BY e.date_time ASC
		LIMIT ? OFFSET ?`

    argsData := append(append([]any{}, args...), limit, offset)

    rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
    if err != nil {
        return nil, 0, err
    }
    defer rows.Close()

    out := make([]model.Event, 0, limit)
    for rows.Next() {
        var e model.Event
        var agenda *string
        if err := rows.Scan(
            &e.ID, &e.Title, &e.Description, &e.DateTime, &e.Capacity,
            &e.Modality, &e.Location, &agenda, &e.IsCancelled,
            &e.CreatedAt, &e.UpdatedAt,
        ); err != nil {
            return nil, 0, err
        }
        e.Agenda = agenda
        out = append(out, e)
    }
    if err := rows.Err(); err != nil {
        return nil, 0, err
    }
    return out, total, nil
}
