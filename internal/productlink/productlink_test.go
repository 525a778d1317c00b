package productlink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	c, err := New("", 6)
	require.NoError(t, err)

	for _, id := range []int64{0, 1, 42, 987654} {
		code, err := c.Encode(id)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(code), 6)

		back, err := c.Decode(code)
		require.NoError(t, err)
		assert.Equal(t, id, back)
	}
}

func TestDecode_RejectsMalformed(t *testing.T) {
	c, err := New("", 6)
	require.NoError(t, err)

	code, err := c.Encode(7)
	require.NoError(t, err)

	multi, err := c.s.Encode([]uint64{1, 2})
	require.NoError(t, err)

	for _, bad := range []string{"", "***", code + "x", multi, "1"} {
		_, err := c.Decode(bad)
		assert.ErrorIs(t, err, ErrMalformedCode, "code %q", bad)
	}
}

func TestNew_RejectsMinLengthOutOfRange(t *testing.T) {
	for _, n := range []int{-1, 256, 300} {
		_, err := New("", n)
		assert.Error(t, err, "min length %d", n)
	}
}

func TestCustomAlphabetChangesCodes(t *testing.T) {
	a, err := New("", 4)
	require.NoError(t, err)
	b, err := New("k3G7QAe51FCsPW92uEOyq4Bg6Sp8YzVTmnU0liwDdHXLajZrfxNhobJIRcMvKt", 4)
	require.NoError(t, err)

	ca, _ := a.Encode(10)
	cb, _ := b.Encode(10)
	assert.NotEqual(t, ca, cb)

	_, err = New("aab", 4)
	assert.Error(t, err)

	_, err = a.Encode(-1)
	assert.Error(t, err)
}
