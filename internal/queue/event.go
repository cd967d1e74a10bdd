// Package queue defines message payloads exchanged over the message broker.
package queue

// RsvpPromotedEvent is published when a waitlisted registration is
// promoted into a confirmed slot.  It mirrors the notification
// contract of the waitlist coordinator: the attendee's identity and
// the event title, nothing that would require consumers to query the
// primary database.
type RsvpPromotedEvent struct {
    EventTitle string `json:"event_title"`
    UserName   string `json:"user_name"`
    UserEmail  string `json:"user_email"`
    PromotedAt string `json:"promoted_at"`
}
