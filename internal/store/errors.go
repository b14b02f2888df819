package store

import "fmt"

// ValidationError rejects a record before anything touches disk.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// CorruptError means the persisted file exists but cannot be parsed.
// The file is left exactly as found; recovering automatically risks
// silent data loss, so the operator has to intervene.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("objective store %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// WriteError wraps an I/O failure while persisting the collection.
// The append that triggered it is not considered durable.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing objective store %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
