package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

func testBreaker() *Breaker {
	cfg := DefaultConfig("test")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Hour
	cfg.Ignore = func(err error) bool { return errors.Is(err, errNotFound) }
	return New(cfg)
}

func TestDo_PassesValue(t *testing.T) {
	b := testBreaker()

	v, err := Do(b, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestDo_OpensAfterConsecutiveFailures(t *testing.T) {
	b := testBreaker()
	boom := errors.New("boom")

	for i := 0; i < 2; i++ {
		_, err := Do(b, func() (int, error) { return 0, boom })
		assert.ErrorIs(t, err, boom)
	}

	calls := 0
	_, err := Do(b, func() (int, error) {
		calls++
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Zero(t, calls)
	assert.Equal(t, "open", b.State())
}

func TestDo_IgnoredErrorsDoNotTrip(t *testing.T) {
	b := testBreaker()

	for i := 0; i < 5; i++ {
		_, err := Do(b, func() (string, error) { return "", errNotFound })
		assert.ErrorIs(t, err, errNotFound)
	}
	assert.Equal(t, "closed", b.State())
}
