package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestEnvBool(t *testing.T) {
    t.Setenv("X_BOOL", "")
    assert.True(t, envBool("X_BOOL", true))
    assert.False(t, envBool("X_BOOL", false))

    for _, v := range []string{"1", "true", "TRUE", "yes", "on"} {
        t.Setenv("X_BOOL", v)
        assert.True(t, envBool("X_BOOL", false), v)
    }
    for _, v := range []string{"0", "false", "no", "OFF"} {
        t.Setenv("X_BOOL", v)
        assert.False(t, envBool("X_BOOL", true), v)
    }

    t.Setenv("X_BOOL", "banana")
    assert.True(t, envBool("X_BOOL", true))
}

func TestEnvIntAndDur(t *testing.T) {
    t.Setenv("X_INT", "42")
    assert.Equal(t, 42, envInt("X_INT", 7))
    t.Setenv("X_INT", "not a number")
    assert.Equal(t, 7, envInt("X_INT", 7))

    t.Setenv("X_DUR", "150ms")
    assert.Equal(t, 150*time.Millisecond, envDur("X_DUR", time.Second))
    t.Setenv("X_DUR", "nope")
    assert.Equal(t, time.Second, envDur("X_DUR", time.Second))
}

func TestLoadRateLimitConfigClamps(t *testing.T) {
    t.Setenv("RATE_LIMIT_CAPACITY", "0")
    t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
    t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "0s")
    t.Setenv("RATE_LIMIT_TTL", "1ms")

    cfg := LoadRateLimitConfig()
    assert.Equal(t, 1, cfg.Capacity)
    assert.Equal(t, 1, cfg.RefillTokens)
    assert.Equal(t, time.Second, cfg.RefillInterval)
    // TTL is raised to cover several refill intervals.
    assert.GreaterOrEqual(t, cfg.TTL, 5*cfg.RefillInterval)
}

func TestParseMethods(t *testing.T) {
    m := parseMethods("get, head ,POST")
    assert.True(t, m["GET"])
    assert.True(t, m["HEAD"])
    assert.True(t, m["POST"])
    assert.False(t, m["DELETE"])
}
