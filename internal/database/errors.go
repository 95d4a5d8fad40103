package database

import "errors"

// Sentinel errors for the persistence layer. Check with errors.Is; storage
// failures are wrapped with context and carry no sentinel.
var (
	// ErrRecordNotFound means no review record exists for a (user, item)
	// pair. Callers may provision one via Ensure and retry once.
	ErrRecordNotFound = errors.New("review record not found")
	// ErrStaleWrite means a concurrent rating update won the race; the
	// caller's read is stale and the write was not applied.
	ErrStaleWrite = errors.New("review record was updated concurrently")
	// ErrNotFound is the generic miss for words and word lists.
	ErrNotFound = errors.New("not found")
)
