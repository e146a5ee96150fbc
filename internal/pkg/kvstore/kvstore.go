package kvstore

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates no record exists for the requested key.
var ErrNotFound = errors.New("kvstore: record not found")

// Record is a flat field map. Values are stored as strings; callers own
// the encoding of timestamps, booleans and numbers.
type Record map[string]string

// Clone returns a copy so callers can mutate safely.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Store is a durable flat key/value record store.
//
// Keys are opaque strings; each key maps to exactly one Record. Put
// replaces the whole record, there is no partial field update.
type Store interface {
	io.Closer

	// Get returns the record stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (Record, error)

	// Put stores the record under key, replacing any previous record.
	Put(ctx context.Context, key string, rec Record) error

	// Delete removes the record under key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error
}
