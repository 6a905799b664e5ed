package wishlist

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(productID string) Entry {
	return Entry{
		ProductID: productID,
		Name:      "Phone " + productID,
		Price:     decimal.NewFromInt(100),
	}
}

func TestAddIsIdempotentPerProduct(t *testing.T) {
	w := New()

	w.Add(entry("p1"))
	dup := entry("p1")
	dup.Name = "Renamed"
	w.Add(dup)

	entries := w.Entries()
	require.Len(t, entries, 1)
	// Duplicate add is a no-op, not an update.
	assert.Equal(t, "Phone p1", entries[0].Name)
}

func TestAddIgnoresEmptyProductID(t *testing.T) {
	w := New()
	w.Add(Entry{Name: "nameless"})
	assert.Equal(t, 0, w.Len())
}

func TestAddStampsAddedAt(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	w := NewWithClock(func() time.Time { return fixed })

	w.Add(entry("p1"))

	assert.Equal(t, fixed, w.Entries()[0].AddedAt)
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	w := New()
	w.Add(entry("p1"))

	w.Remove("missing")

	assert.Equal(t, 1, w.Len())
}

func TestToggleFlipsMembership(t *testing.T) {
	w := New()

	w.Toggle(entry("p1"))
	assert.True(t, w.Contains("p1"))

	w.Toggle(entry("p1"))
	assert.False(t, w.Contains("p1"))

	w.Toggle(entry("p1"))
	assert.True(t, w.Contains("p1"))
}

func TestEntriesKeepInsertionOrder(t *testing.T) {
	w := New()
	w.Add(entry("p1"))
	w.Add(entry("p2"))
	w.Add(entry("p3"))
	w.Remove("p2")

	entries := w.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].ProductID)
	assert.Equal(t, "p3", entries[1].ProductID)
}

func TestEntriesReturnsCopy(t *testing.T) {
	w := New()
	w.Add(entry("p1"))

	entries := w.Entries()
	entries[0].Name = "tampered"

	assert.Equal(t, "Phone p1", w.Entries()[0].Name)
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := New()
	w.Add(entry("p1"))
	w.Add(entry("p2"))

	restored := New()
	restored.Restore(w.Snapshot())

	assert.Equal(t, w.Entries(), restored.Entries())
}

func TestRestoreDropsInvalidAndDuplicateEntries(t *testing.T) {
	w := New()

	w.Restore(Snapshot{Entries: []Entry{
		{ProductID: ""},
		entry("p1"),
		entry("p1"),
		entry("p2"),
	}})

	entries := w.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "p1", entries[0].ProductID)
	assert.Equal(t, "p2", entries[1].ProductID)
}
