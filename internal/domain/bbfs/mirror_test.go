package bbfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMirror_Involution(t *testing.T) {
	for d := 0; d <= 9; d++ {
		m := Mirror(d)
		assert.NotEqual(t, d, m, "digit %d must not mirror to itself", d)
		assert.GreaterOrEqual(t, m, 0)
		assert.LessOrEqual(t, m, 9)
		assert.Equal(t, d, Mirror(m), "mirror of mirror of %d", d)
	}
}

func TestMirror_FixedPairs(t *testing.T) {
	pairs := map[int]int{0: 5, 1: 6, 2: 7, 3: 8, 4: 9}
	for a, b := range pairs {
		assert.Equal(t, b, Mirror(a))
		assert.Equal(t, a, Mirror(b))
	}
}

func TestMirror_OutOfRangePassesThrough(t *testing.T) {
	assert.Equal(t, 12, Mirror(12))
	assert.Equal(t, -1, Mirror(-1))
}

func TestMirrorString(t *testing.T) {
	assert.Equal(t, "5678901234", MirrorString("0123456789"))
	assert.Equal(t, "", MirrorString(""))
	assert.Equal(t, "6-7", MirrorString("1-2"))
}

func TestParseDigit(t *testing.T) {
	d, ok := ParseDigit('7')
	assert.True(t, ok)
	assert.Equal(t, 7, d)

	for _, r := range []rune{'a', ' ', '-', '٣', '²'} {
		_, ok := ParseDigit(r)
		assert.False(t, ok, "%q is not an ASCII digit", r)
	}
}
