package storage

import "encoding/json"

// GetAs reads key and converts the decoded value to T. Values that are not
// already a T are converted through JSON, so a stored object can be read
// into a struct. ok is false when the key is absent or the value does not fit T.
func GetAs[T any](s *Storage, key string) (out T, ok bool, err error) {
	v, err := s.Get(key)
	if err != nil || v == nil {
		return out, false, err
	}
	if t, isT := v.(T); isT {
		return t, true, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return out, false, nil
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, false, nil
	}
	return out, true, nil
}
