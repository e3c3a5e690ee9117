package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected int64
		status   Status
	}{
		{"plain", "123\n", 123, OK},
		{"leading colon", ":42\n", 42, OK},
		{"leading comma", ",-7\n", -7, OK},
		{"needs more", "12", 0, NeedMore},
		{"not a number", "abc", 0, NotOK},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			val, _, status := Int([]byte(tc.input))
			assert.Equal(t, tc.status, status)
			if status == OK {
				assert.Equal(t, tc.expected, val)
			}
		})
	}
}

func TestIntOpt(t *testing.T) {
	val, n, status := IntOpt([]byte(":rest"), -1)
	assert.Equal(t, OK, status)
	assert.Equal(t, int64(-1), val)
	assert.Equal(t, 0, n)

	val, n, status = IntOpt([]byte(",5:rest"), -1)
	assert.Equal(t, OK, status)
	assert.Equal(t, int64(5), val)
	assert.Equal(t, 2, n)
}

func TestIntV(t *testing.T) {
	val, used, _, status := IntV([]byte(",=rest"), 350)
	assert.Equal(t, OK, status)
	assert.True(t, used)
	assert.Equal(t, int64(350), val)

	val, used, _, status = IntV([]byte(",120:rest"), 350)
	assert.Equal(t, OK, status)
	assert.False(t, used)
	assert.Equal(t, int64(120), val)
}

func TestString(t *testing.T) {
	s, n, status := String([]byte("./1.tex   \nrest"))
	assert.Equal(t, OK, status)
	assert.Equal(t, "./1.tex", s)
	assert.Equal(t, 10, n)

	_, _, status = String([]byte("no newline yet"))
	assert.Equal(t, NeedMore, status)
}

func TestDimension(t *testing.T) {
	sp, _, status := Dimension([]byte("1.0pt"))
	assert.Equal(t, OK, status)
	assert.Equal(t, int64(65536), sp)

	sp, _, status = Dimension([]byte("1.0in"))
	assert.Equal(t, OK, status)
	assert.InDelta(t, 72.27*65536, float64(sp), 1)

	_, _, status = Dimension([]byte("1.0zz"))
	assert.Equal(t, NotOK, status)
}

func TestFloat(t *testing.T) {
	val, n, status := Float([]byte("1000\n"))
	assert.Equal(t, OK, status)
	assert.Equal(t, float64(1000), val)
	assert.Equal(t, 4, n)

	val, _, status = Float([]byte("1.5\n"))
	assert.Equal(t, OK, status)
	assert.Equal(t, 1.5, val)

	_, _, status = Float([]byte("abc"))
	assert.Equal(t, NotOK, status)

	_, _, status = Float([]byte("12"))
	assert.Equal(t, NeedMore, status)
}

func TestMatchLiteral(t *testing.T) {
	n, status := MatchLiteral([]byte("Input:1"), "Input:")
	assert.Equal(t, OK, status)
	assert.Equal(t, 6, n)

	_, status = MatchLiteral([]byte("Output:"), "Input:")
	assert.Equal(t, NotOK, status)

	_, status = MatchLiteral([]byte("Inp"), "Input:")
	assert.Equal(t, NeedMore, status)
}
