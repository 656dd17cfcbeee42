// Package engine provides the string-keyed stores that storage.Storage wraps.
//
// Every engine is scoped to one namespace id: keys written through one namespace
// are invisible to another, and ClearAll only empties its own namespace.
package engine

// Engine defines the minimal string KV contract consumed by storage.Storage.
// Implementations must be safe for concurrent use by multiple goroutines.
type Engine interface {
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
	// GetString returns the value stored under key. ok is false when the key is absent.
	GetString(key string) (value string, ok bool, err error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
	// ClearAll removes every key in the namespace.
	ClearAll() error
}

// Namespaced is implemented by engines that know the namespace id they are scoped to.
type Namespaced interface {
	Namespace() string
}
