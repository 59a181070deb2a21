package menu

import (
	"math"

	"github.com/luhtfiimanal/go-ledmenu/internal/mathx"
)

// ParseInt reads an integer the way serial consoles do: characters before
// the first digit or '-' are skipped, one leading '-' is honoured, and parsing
// stops at the first non-digit. ok is false when no digit was found, in which
// case n is 0. Values saturate at ±math.MaxInt32.
func ParseInt(s string) (n int, ok bool) {
	i := 0
	for i < len(s) && s[i] != '-' && !isDigit(s[i]) {
		i++
	}
	neg := false
	if i < len(s) && s[i] == '-' {
		neg = true
		i++
	}
	var v int64
	for ; i < len(s) && isDigit(s[i]); i++ {
		ok = true
		v = v*10 + int64(s[i]-'0')
		if v > math.MaxInt32 {
			v = math.MaxInt32
		}
	}
	if neg {
		v = -v
	}
	return int(v), ok
}

// ParseLevel parses s and clamps it into [0, 255]. clamped reports that the
// parsed number was outside the range.
func ParseLevel(s string) (level uint8, clamped bool) {
	n, _ := ParseInt(s)
	c := mathx.Clamp(n, 0, 255)
	return uint8(c), c != n
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
