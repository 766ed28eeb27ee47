// Package store provides a simple and convenient data store usable by plugins
// to persist attendance data. Implementations include a leveldb backed one
// for durable local storage and an append-only csv log for auditing
package store

import (
	"io"
)

// StringStorer is implemented by all storage implementations offering
// a string key/value persistence interface
type StringStorer interface {
	// GetString retrieves the value associated to the key
	GetString(key string) (value string, err error)

	// PutString adds or updates the value associated to the key
	PutString(key string, value string) (err error)

	// DeleteString deletes the entry for the key
	DeleteString(key string) (err error)

	// Scan returns the complete set of key/values from the store
	Scan() (entries map[string]string, err error)

	io.Closer
}
