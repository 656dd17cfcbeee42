package storage

import (
	"encoding/json"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var decimalLiteral = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// decodeValue recovers a logical value from its stored string. JSON wins over
// the boolean and numeric literal checks; anything else is returned as text.
func decodeValue(stored string) any {
	var v any
	if err := json.Unmarshal([]byte(stored), &v); err == nil {
		return v
	}
	switch stored {
	case "true":
		return true
	case "false":
		return false
	}
	if n, ok := coerceNumber(stored); ok {
		return n
	}
	return stored
}

func trimNumberSpace(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// coerceNumber converts s like JavaScript's Number(s), rejecting blank input
// and anything that would produce NaN.
func coerceNumber(s string) (float64, bool) {
	s = trimNumberSpace(s)
	if s == "" {
		return 0, false
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1), true
	case "-Infinity":
		return math.Inf(-1), true
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			return parseRadix(s[2:], base)
		}
	}
	if !decimalLiteral.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseRadix(digits string, base int) (float64, bool) {
	for _, r := range digits {
		if _, err := strconv.ParseUint(string(r), base, 8); err != nil {
			return 0, false
		}
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return 0, false
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return f, true
}
