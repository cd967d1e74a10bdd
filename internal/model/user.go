package model

import "time"

// Account roles.  Organizers manage events and attendance; attendees
// only need an account when they want to track their registrations.
const (
    RoleOrganizer = "ORGANIZER"
    RoleAttendee  = "ATTENDEE"
)

// User is an authenticated account.  RSVPs themselves are keyed by
// email and do not require an account; users exist for the organizer
// endpoints (event CRUD, check-in, reports).
//
// Fields:
//  ID           – primary key identifier.
//  Email        – login email, stored lowercased.
//  PasswordHash – bcrypt hashed password.
//  Role         – ORGANIZER or ATTENDEE.
//  IsActive     – soft-disable flag for accounts.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    Role         string    // users.role
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user; only the SHA-256 hash of the raw
// token is stored.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
