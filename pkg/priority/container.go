// Package priority implements the bounded priority index described in spec
// §4.2: a container of budget-bearing Items keyed by K, with
// capacity-driven eviction of the lowest-priority element. Two
// implementations share the same Container interface — a deterministic
// heap (Map) and a probabilistic weighted-random variant (Bag) — so callers
// in pkg/reason depend only on the interface, never a concrete structure
// (spec §9, "dynamic dispatch on bag variants").
package priority

import "github.com/khryptorgraphics/nonaxiomatic/pkg/budget"

// Outcome discriminates the result of an insertion attempt (spec §9,
// "exception-style cross-cut escape" / tri-state contract).
type Outcome int

const (
	// Inserted means the item was accepted with no displacement.
	Inserted Outcome = iota
	// Displaced means some other item was evicted to make room.
	Displaced
	// Rejected means the just-inserted item was itself immediately evicted
	// (e.g. it was the lowest-priority item in an already-full container,
	// or capacity is 0).
	Rejected
)

// PutResult is returned by PutIn: what happened, and the displaced item (if
// any — nil for Inserted).
type PutResult[K comparable, V budget.Item[K]] struct {
	Outcome   Outcome
	Displaced V
}

// Container is the bounded priority index interface of spec §4.2.
type Container[K comparable, V budget.Item[K]] interface {
	// PutIn inserts item, evicting the lowest-priority element if at
	// capacity. Inserting a key that already exists displaces the old item
	// under that key (not the lowest-priority item).
	PutIn(item V) PutResult[K, V]
	// Get returns the item for key without mutating the container.
	Get(key K) (V, bool)
	// Take removes and returns the item for key.
	Take(key K) (V, bool)
	// TakeHighestPriorityItem removes and returns the maximum-priority item.
	TakeHighestPriorityItem() (V, bool)
	// PutBack applies forgetting to item's budget, then PutIn's it. This
	// must never be skipped, even when capacity is slack (spec §4.2).
	PutBack(item V, forgetCycles int64, now int64, relativeThreshold float64) PutResult[K, V]
	IsEmpty() bool
	Size() int
	Capacity() int
	// Values returns a snapshot slice of all items currently held, in no
	// particular order.
	Values() []V
}
