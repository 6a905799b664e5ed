package wishlist

// Package wishlist contains the wishlist aggregate: a set of products keyed
// by product ID with denormalized display fields.

import (
	"time"

	"github.com/shopspring/decimal"
)

// Entry is a single wishlist member. ProductID is the unique key; the
// remaining fields are denormalized for display.
type Entry struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
}

// Wishlist is an insertion-ordered set of entries. It has a single logical
// writer and performs no locking of its own.
type Wishlist struct {
	entries []Entry
	now     func() time.Time
}

// New creates an empty wishlist.
func New() *Wishlist {
	return &Wishlist{now: time.Now}
}

// NewWithClock creates an empty wishlist with an injectable clock for tests.
func NewWithClock(now func() time.Time) *Wishlist {
	w := New()
	if now != nil {
		w.now = now
	}
	return w
}

// Add appends the entry unless its product is already present. Adding an
// existing product is a no-op, not an update.
func (w *Wishlist) Add(e Entry) {
	if e.ProductID == "" || w.Contains(e.ProductID) {
		return
	}
	e.AddedAt = w.now()
	w.entries = append(w.entries, e)
}

// Remove deletes the entry for the given product; absent entries are a
// silent no-op.
func (w *Wishlist) Remove(productID string) {
	for i, e := range w.entries {
		if e.ProductID == productID {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			return
		}
	}
}

// Toggle removes the product if present, otherwise adds the entry.
// Membership is evaluated against current state at call time.
func (w *Wishlist) Toggle(e Entry) {
	if w.Contains(e.ProductID) {
		w.Remove(e.ProductID)
		return
	}
	w.Add(e)
}

// Contains is a pure membership test.
func (w *Wishlist) Contains(productID string) bool {
	for _, e := range w.entries {
		if e.ProductID == productID {
			return true
		}
	}
	return false
}

// Entries returns a copy of the entries in insertion order.
func (w *Wishlist) Entries() []Entry {
	out := make([]Entry, len(w.entries))
	copy(out, w.entries)
	return out
}

// Len returns the number of entries.
func (w *Wishlist) Len() int { return len(w.entries) }

// Snapshot is the serializable view of the wishlist used by the persistence
// bridge.
type Snapshot struct {
	Entries []Entry `json:"entries"`
}

// Snapshot returns the serializable view of the wishlist.
func (w *Wishlist) Snapshot() Snapshot {
	return Snapshot{Entries: w.Entries()}
}

// Restore replaces the wishlist contents from a snapshot, dropping entries
// without a product ID and collapsing duplicates so corrupted storage
// degrades instead of breaking set semantics.
func (w *Wishlist) Restore(snap Snapshot) {
	w.entries = nil
	seen := make(map[string]struct{}, len(snap.Entries))
	for _, e := range snap.Entries {
		if e.ProductID == "" {
			continue
		}
		if _, dup := seen[e.ProductID]; dup {
			continue
		}
		seen[e.ProductID] = struct{}{}
		w.entries = append(w.entries, e)
	}
}
