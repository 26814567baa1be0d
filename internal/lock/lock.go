package lock

import (
	"context"
	"errors"
	"sort"
)

// ErrBusy is returned when the keys could not all be taken within the wait bound
var ErrBusy = errors.New("lock: container busy")

// Locker takes exclusive ownership of a set of keys.
// Acquire either holds every key or none of them. The returned release
// function is idempotent.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (func(), error)
}

// normalize de-duplicates keys and sorts them so that every caller takes
// overlapping key sets in the same order
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
