// Package kv provides the string key-value areas the discussion store
// persists its collections into.
package kv

// Storage is a durable string key-value area. A missing key is reported
// through ok, not as an error.
type Storage interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}
