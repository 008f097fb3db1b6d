package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPostRateLimiter(t *testing.T) {
	t.Parallel()

	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewPostRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return current }

	assert.True(t, rl.Allow("a@x"))
	assert.True(t, rl.Allow("a@x"))
	assert.False(t, rl.Allow("a@x"))

	// Other identities are unaffected.
	assert.True(t, rl.Allow("b@x"))

	// The window slides: old attempts expire.
	current = current.Add(61 * time.Second)
	assert.True(t, rl.Allow("a@x"))
}
