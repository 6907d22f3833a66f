package infrastructure

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSendRateLimiterConsumesBurst(t *testing.T) {
	rl := NewSendRateLimiter(0.001, 3) // refill slow enough to not matter

	require.True(t, rl.Allow(1))
	require.True(t, rl.Allow(1))
	require.True(t, rl.Allow(1))
	require.False(t, rl.Allow(1))
}

func TestSendRateLimiterIsPerLead(t *testing.T) {
	rl := NewSendRateLimiter(0.001, 1)

	require.True(t, rl.Allow(1))
	require.False(t, rl.Allow(1))
	require.True(t, rl.Allow(2))
}

func TestSendRateLimiterRefills(t *testing.T) {
	rl := NewSendRateLimiter(50, 1) // one token per 20ms

	require.True(t, rl.Allow(1))
	require.False(t, rl.Allow(1))

	time.Sleep(100 * time.Millisecond)
	require.True(t, rl.Allow(1))
}

func TestSendRateLimiterCapsAtBurst(t *testing.T) {
	rl := NewSendRateLimiter(10, 2)

	require.True(t, rl.Allow(1))
	time.Sleep(300 * time.Millisecond) // enough to refill well past the cap

	require.True(t, rl.Allow(1))
	require.True(t, rl.Allow(1))
	require.False(t, rl.Allow(1))
}
