package utils

import (
    "testing"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
    const secret = "test-secret"

    at, err := NewAccessToken(secret, 42, "ORGANIZER", 15)
    require.NoError(t, err)
    require.NotEmpty(t, at.Token)

    tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    })
    require.NoError(t, err)
    require.True(t, tok.Valid)

    claims, ok := tok.Claims.(jwt.MapClaims)
    require.True(t, ok)
    assert.EqualValues(t, 42, claims["sub"])
    assert.Equal(t, "ORGANIZER", claims["role"])
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
    at, err := NewAccessToken("secret-a", 1, "ATTENDEE", 15)
    require.NoError(t, err)

    _, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
        return []byte("secret-b"), nil
    })
    assert.Error(t, err)
}

func TestRefreshTokenHashIsStable(t *testing.T) {
    rt, err := NewRefreshToken(30)
    require.NoError(t, err)
    require.NotEmpty(t, rt.Raw)

    assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))

    other, err := NewRefreshToken(30)
    require.NoError(t, err)
    assert.NotEqual(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(other.Raw))
}

func TestPasswordRoundTrip(t *testing.T) {
    hash, err := HashPassword("s3cret", 4) // min cost keeps the test fast
    require.NoError(t, err)

    assert.True(t, VerifyPassword(hash, "s3cret"))
    assert.False(t, VerifyPassword(hash, "wrong"))
}
