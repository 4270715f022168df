// Package floor implements parsing, ordering and stepping over the
// elevator system's floor labels: "B99".."B1" below ground and "1".."999"
// above it, with no floor named "0".
package floor

import (
	"strconv"
	"strings"
)

// Direction is the direction of travel used when stepping a floor.
type Direction byte

const (
	Up   Direction = 'U'
	Down Direction = 'D'
)

// Valid reports whether s is a well-formed floor label: "B" followed by
// 1-2 digits, or 1-3 digits alone, with no leading zero on the numeric
// part.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	rest := s
	if s[0] == 'B' {
		rest = s[1:]
		if len(rest) < 1 || len(rest) > 2 {
			return false
		}
	} else {
		if len(rest) < 1 || len(rest) > 3 {
			return false
		}
	}
	if rest[0] == '0' {
		return false
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return true
}

func num(s string) int {
	if s[0] == 'B' {
		n, _ := strconv.Atoi(s[1:])
		return n
	}
	n, _ := strconv.Atoi(s)
	return n
}

// Le reports whether before is at or below after in the building's
// vertical order: basements order from deepest (B99) to shallowest (B1),
// then above-ground floors order 1..999. Every basement floor is below
// every above-ground floor.
func Le(before, after string) bool {
	beforeBasement := strings.HasPrefix(before, "B")
	afterBasement := strings.HasPrefix(after, "B")
	switch {
	case beforeBasement && afterBasement:
		return num(before) >= num(after)
	case beforeBasement:
		return true
	case afterBasement:
		return false
	default:
		return num(before) <= num(after)
	}
}

// Within reports whether f lies within [lowest, highest] inclusive, under
// the same ordering as Le.
func Within(f, lowest, highest string) bool {
	return Le(lowest, f) && Le(f, highest)
}

// StepUp returns the floor label immediately above f. Above the top
// basement floor B1 the next floor is "1"; above "999" there is no
// further floor and "999" is returned unchanged.
func StepUp(f string) string {
	if strings.HasPrefix(f, "B") {
		n := num(f)
		if n == 1 {
			return "1"
		}
		return "B" + strconv.Itoa(n-1)
	}
	n := num(f)
	if n == 999 {
		return "999"
	}
	return strconv.Itoa(n + 1)
}

// StepDown returns the floor label immediately below f. Below "1" the
// next floor is "B1"; below "B99" there is no further floor and "B99" is
// returned unchanged.
func StepDown(f string) string {
	if strings.HasPrefix(f, "B") {
		n := num(f)
		if n == 99 {
			return "B99"
		}
		return "B" + strconv.Itoa(n+1)
	}
	n := num(f)
	if n == 1 {
		return "B1"
	}
	return strconv.Itoa(n - 1)
}

// Step returns the floor adjacent to f in the given direction.
func Step(f string, dir Direction) string {
	if dir == Up {
		return StepUp(f)
	}
	return StepDown(f)
}
