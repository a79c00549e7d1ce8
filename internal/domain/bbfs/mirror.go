// Package bbfs is the digit-frequency analysis engine. It turns a history of
// draws (one token per line) into a ranked digit set, its mirror, and the
// strongest co-occurring digit pairs. Every function here is pure: no I/O
// beyond the loader helpers, no state shared between calls.
package bbfs

// mirrorMap pairs each digit with the digit five steps away.
var mirrorMap = [10]int{5, 6, 7, 8, 9, 0, 1, 2, 3, 4}

// ParseDigit reports whether r is an ASCII decimal digit and returns its value.
func ParseDigit(r rune) (int, bool) {
	if r < '0' || r > '9' {
		return 0, false
	}
	return int(r - '0'), true
}

// Mirror returns the mirror partner of d (0↔5, 1↔6, 2↔7, 3↔8, 4↔9).
// Values outside 0-9 are returned unchanged.
func Mirror(d int) int {
	if d < 0 || d > 9 {
		return d
	}
	return mirrorMap[d]
}

// MirrorRune mirrors a digit character. Non-digits pass through.
func MirrorRune(r rune) rune {
	d, ok := ParseDigit(r)
	if !ok {
		return r
	}
	return rune('0' + Mirror(d))
}

// MirrorString mirrors every digit of s, position for position.
func MirrorString(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		out = append(out, MirrorRune(r))
	}
	return string(out)
}
