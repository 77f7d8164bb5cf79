package ledger

import (
	"context"
	"testing"
)

// MustAppend is a test helper that appends an entry and fails the test on error.
func MustAppend(t *testing.T, store Store, entry Entry) Entry {
	t.Helper()
	appended, err := store.Append(context.Background(), entry)
	if err != nil {
		t.Fatalf("append %s entry: %v", entry.Kind, err)
	}
	return appended
}
