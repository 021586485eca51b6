package studiocms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginLimiterAllowsUnderMax(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Check("10.0.0.1"))
		l.Record("10.0.0.1")
	}
	assert.False(t, l.Check("10.0.0.1"))
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)

	l.Record("10.0.0.1")
	assert.False(t, l.Check("10.0.0.1"))
	assert.True(t, l.Check("10.0.0.2"))
}

func TestLoginLimiterWindowExpiry(t *testing.T) {
	l := NewLoginLimiter(1, 10*time.Millisecond)

	l.Record("10.0.0.1")
	assert.False(t, l.Check("10.0.0.1"))

	time.Sleep(20 * time.Millisecond)
	assert.True(t, l.Check("10.0.0.1"))
}

func TestLoginLimiterCheckDoesNotRecord(t *testing.T) {
	l := NewLoginLimiter(1, time.Minute)

	for i := 0; i < 10; i++ {
		assert.True(t, l.Check("10.0.0.1"))
	}
}
