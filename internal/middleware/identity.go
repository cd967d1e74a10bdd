package middleware

// identity.go holds helpers shared across middleware files.  userID
// feeds the rate limiter's key builder so authenticated organizers get
// their own buckets while anonymous RSVP traffic shares per-IP ones.

import (
    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the JWT stored in context.
// It returns "guest" when no user is authenticated.
func userID(c echo.Context) string {
    u := c.Get("user")
    if u == nil {
        return "guest"
    }
    if tok, ok := u.(*jwt.Token); ok {
        if cl, ok := tok.Claims.(jwt.MapClaims); ok {
            if v, ok := cl["sub"].(string); ok && v != "" {
                return v
            }
            if v, ok := cl["user_id"].(string); ok && v != "" {
                return v
            }
        }
    }
    return "guest"
}
