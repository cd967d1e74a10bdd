package model

import "time"

// Event is a happening organizers publish and attendees RSVP to.
// Capacity bounds the number of confirmed registrations; once it is
// reached, further registrants are queued on the waitlist.  Cancelling
// an event keeps the row but rejects new registrations.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – short display name.
//  Description – longer free-form description.
//  DateTime    – when the event takes place.
//  Capacity    – maximum number of confirmed RSVPs (>= 1).
//  Modality    – how the event is held (in person, virtual, hybrid).
//  Location    – venue or meeting link.
//  Agenda      – optional agenda text.
//  IsCancelled – soft-cancel flag; cancelled events are never deleted.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Event struct {
    ID          uint64     // events.id
    Title       string     // events.title
    Description string     // events.description
    DateTime    time.Time  // events.date_time
    Capacity    int        // events.capacity
    Modality    string     // events.modality
    Location    string     // events.location
    Agenda      *string    // events.agenda (nullable)
    IsCancelled bool       // events.is_cancelled
    CreatedAt   time.Time  // events.created_at
    UpdatedAt   time.Time  // events.updated_at
}
