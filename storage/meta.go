package storage

import (
	"encoding/json"
	"time"
)

// MetaSuffix is appended to a key to name its expiration record.
const MetaSuffix = ":__meta"

func metaKey(key string) string { return key + MetaSuffix }

// expirationRecord is the stored form of an entry's TTL: an absolute epoch
// millisecond timestamp.
type expirationRecord struct {
	ExpiresAt int64 `json:"expiresAt"`
}

func encodeMeta(at int64) string {
	b, _ := json.Marshal(expirationRecord{ExpiresAt: at})
	return string(b)
}

// metaRecord is a decoded expiration record. Records written by other tools may
// be any JSON value; an expiresAt field counts when it converts to a number the
// way a JavaScript numeric comparison would convert it.
type metaRecord struct {
	expiresAt float64
	hasExpiry bool
}

func (r metaRecord) expired(now time.Time) bool {
	return r.hasExpiry && float64(now.UnixMilli()) > r.expiresAt
}

// tryDecodeMeta parses raw. ok is false when raw is not JSON at all.
func tryDecodeMeta(raw string) (rec metaRecord, ok bool) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return metaRecord{}, false
	}
	obj, isObj := v.(map[string]any)
	if !isObj {
		return metaRecord{}, true
	}
	at, present := obj["expiresAt"]
	if !present || at == nil {
		return metaRecord{}, true
	}
	if n, ok := toNumber(at); ok {
		return metaRecord{expiresAt: n, hasExpiry: true}, true
	}
	return metaRecord{}, true
}

// toNumber converts a decoded JSON value to a number like JavaScript's
// ToNumber: true is 1, false and [] are 0, a one-element array converts its
// element, blank strings are 0. ok is false where JavaScript yields NaN.
func toNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	case string:
		return stringToNumber(x)
	case []any:
		switch len(x) {
		case 0:
			return 0, true
		case 1:
			return elementToNumber(x[0])
		}
	}
	return 0, false
}

// elementToNumber converts an array element through its string form, where
// null becomes "" and booleans become words that are not numbers.
func elementToNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case bool:
		return 0, false
	default:
		return toNumber(x)
	}
}

func stringToNumber(s string) (float64, bool) {
	if trimNumberSpace(s) == "" {
		return 0, true
	}
	return coerceNumber(s)
}
