package priority

import (
	"container/heap"
	"sync"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
)

// Map is a deterministic, mutex-guarded bounded priority index backed by a
// binary min-heap on priority (container/heap) plus a key->position index.
// Get is a map lookup; PutIn, Take and TakeHighestPriorityItem rebuild the
// whole index after each change, so they cost O(n), not O(log n).
type Map[K comparable, V budget.Item[K]] struct {
	mu       sync.Mutex
	h        mapHeap[K, V]
	index    map[K]int // key -> position in h
	capacity int
}

// NewMap constructs a Map with the given capacity. Capacity 0 rejects every
// insert (spec §4.2 edge case).
func NewMap[K comparable, V budget.Item[K]](capacity int) *Map[K, V] {
	return &Map[K, V]{
		h:        make(mapHeap[K, V], 0),
		index:    make(map[K]int),
		capacity: capacity,
	}
}

type mapHeap[K comparable, V budget.Item[K]] []V

func (h mapHeap[K, V]) Len() int { return len(h) }
func (h mapHeap[K, V]) Less(i, j int) bool {
	return h[i].Budget().Priority < h[j].Budget().Priority
}
func (h mapHeap[K, V]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *mapHeap[K, V]) Push(x any)        { *h = append(*h, x.(V)) }
func (h *mapHeap[K, V]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// fixIndex rebuilds the key->position map after any heap mutation. The heap
// is small by construction (bounded by capacity), so an O(n) rebuild per
// mutation keeps the code simple without violating the amortised bound in
// practice for the bag sizes this reasoner runs with.
func (m *Map[K, V]) fixIndex() {
	for i, v := range m.h {
		m.index[v.Name()] = i
	}
}

// lowestIndex returns the position of the lowest-priority element. Since h
// is a min-heap on priority, that is always the root.
func (m *Map[K, V]) lowestIndex() int { return 0 }

func (m *Map[K, V]) PutIn(item V) PutResult[K, V] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.capacity <= 0 {
		return PutResult[K, V]{Outcome: Rejected, Displaced: item}
	}

	key := item.Name()
	if pos, ok := m.index[key]; ok {
		old := m.h[pos]
		m.h[pos] = item
		heap.Fix(&m.h, pos)
		m.fixIndex()
		return PutResult[K, V]{Outcome: Displaced, Displaced: old}
	}

	if len(m.h) < m.capacity {
		heap.Push(&m.h, item)
		m.fixIndex()
		return PutResult[K, V]{Outcome: Inserted}
	}

	// At capacity: evict the lowest-priority element to make room, unless
	// the incoming item is itself the lowest priority, in which case it is
	// rejected immediately (spec §4.3 step 7's "displaced == concept" case).
	lowest := m.lowestIndex()
	displaced := m.h[lowest]
	if item.Budget().Priority <= displaced.Budget().Priority {
		return PutResult[K, V]{Outcome: Rejected, Displaced: item}
	}
	delete(m.index, displaced.Name())
	m.h[lowest] = item
	heap.Fix(&m.h, lowest)
	m.fixIndex()
	return PutResult[K, V]{Outcome: Displaced, Displaced: displaced}
}

func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return m.h[pos], true
}

func (m *Map[K, V]) Take(key K) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	item := m.h[pos]
	heap.Remove(&m.h, pos)
	delete(m.index, key)
	m.fixIndex()
	return item, true
}

func (m *Map[K, V]) TakeHighestPriorityItem() (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.h) == 0 {
		var zero V
		return zero, false
	}
	highest := 0
	for i := 1; i < len(m.h); i++ {
		if m.h[i].Budget().Priority > m.h[highest].Budget().Priority {
			highest = i
		}
	}
	item := m.h[highest]
	heap.Remove(&m.h, highest)
	delete(m.index, item.Name())
	m.fixIndex()
	return item, true
}

func (m *Map[K, V]) PutBack(item V, forgetCycles int64, now int64, relativeThreshold float64) PutResult[K, V] {
	item.SetBudget(budget.ApplyForgetting(item.Budget(), now, forgetCycles, relativeThreshold))
	return m.PutIn(item)
}

func (m *Map[K, V]) IsEmpty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.h) == 0
}

func (m *Map[K, V]) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.h)
}

func (m *Map[K, V]) Capacity() int { return m.capacity }

func (m *Map[K, V]) Values() []V {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]V, len(m.h))
	copy(out, m.h)
	return out
}
