package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

type valueKind int

const (
	kindText valueKind = iota
	kindNumeric
	kindBoolean
	kindStructured
)

func classify(rv reflect.Value) valueKind {
	switch rv.Kind() {
	case reflect.String:
		return kindText
	case reflect.Bool:
		return kindBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64:
		return kindNumeric
	default:
		return kindStructured
	}
}

// isNil reports whether v is nil or a typed nil.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// tryEncode returns the stored string form of v. It never fails.
func tryEncode(v any) string {
	rv := reflect.ValueOf(v)
	switch classify(rv) {
	case kindText:
		return rv.String()
	case kindBoolean:
		return strconv.FormatBool(rv.Bool())
	case kindNumeric:
		return formatNumeric(rv)
	}
	if s, ok := encodeJSON(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

// encodeJSON marshals v without HTML escaping. A panicking MarshalJSON counts as failure.
func encodeJSON(v any) (s string, ok bool) {
	defer func() {
		if recover() != nil {
			s, ok = "", false
		}
	}()
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", false
	}
	return strings.TrimSuffix(buf.String(), "\n"), true
}

func formatNumeric(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Float32:
		return formatFloat(rv.Float(), 32)
	case reflect.Float64:
		return formatFloat(rv.Float(), 64)
	default:
		return strconv.FormatUint(rv.Uint(), 10)
	}
}

// formatFloat renders f the way JavaScript's String(number) does: shortest
// round-trip digits, plain notation for 1e-6 <= |f| < 1e21, exponent without
// zero padding otherwise.
func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, bitSize)
	}
	s := strconv.FormatFloat(f, 'e', -1, bitSize)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")
	return mant + "e" + sign + exp
}
