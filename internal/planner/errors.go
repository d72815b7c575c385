package planner

import "errors"

var (
	// ErrNotFound marks a referenced record that no longer exists.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a read or write rejected by the underlying store.
	ErrStorage = errors.New("storage failure")
)
