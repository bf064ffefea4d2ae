// Package store defines the record-store contract the service runs against:
// point get/set of JSON records, prepend-ordered lists for activity logs, and
// key enumeration by prefix. Backends live in subpackages.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no record exists for the key.
var ErrNotFound = errors.New("record not found")

// Store is the minimal capability set the service needs from persistence.
// Values are encoded as JSON by the backend; dst arguments follow the
// json.Unmarshal pointer convention, and ListRange expects a pointer to a
// slice. Lists are most-recent-first: ListPrepend pushes onto the front and
// ListRange(ctx, list, 0, n-1, dst) yields the n newest entries.
type Store interface {
	Get(ctx context.Context, key string, dst any) error
	Set(ctx context.Context, key string, src any) error
	ListPrepend(ctx context.Context, list string, entry any) error
	ListRange(ctx context.Context, list string, start, stop int64, dst any) error
	ListLen(ctx context.Context, list string) (int64, error)
	// ListTrim discards everything past the newest maxLen entries.
	ListTrim(ctx context.Context, list string, maxLen int64) error
	KeysWithPrefix(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
