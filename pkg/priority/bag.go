package priority

import (
	"math/rand"
	"sync"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
)

// Bag is the classic probabilistic priority container: like Map, it is a
// bounded, capacity-evicting index, but it additionally offers TakeNext, a
// weighted-random pop where every present item has nonzero selection
// probability proportional to its priority (spec §4.2). Bag embeds a Map
// for the deterministic operations and adds only the probabilistic pop, so
// it satisfies the same Container interface.
//
// Bag owns a per-instance RNG (not a package-level global), per spec §9's
// "global static state" design note: seed it explicitly for reproducible
// runs.
type Bag[K comparable, V budget.Item[K]] struct {
	*Map[K, V]
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBag constructs a Bag with the given capacity, seeded explicitly for
// determinism.
func NewBag[K comparable, V budget.Item[K]](capacity int, seed int64) *Bag[K, V] {
	return &Bag[K, V]{
		Map: NewMap[K, V](capacity),
		rng: rand.New(rand.NewSource(seed)),
	}
}

// TakeNext removes and returns an item chosen with probability proportional
// to its priority among all items currently present. Every present item,
// including one with priority 0, is given a small floor mass so it remains
// selectable (fairness: nonzero selection probability while present).
func (b *Bag[K, V]) TakeNext() (V, bool) {
	values := b.Map.Values()
	if len(values) == 0 {
		var zero V
		return zero, false
	}

	const floorMass = 1e-6
	total := 0.0
	weights := make([]float64, len(values))
	for i, v := range values {
		w := v.Budget().Priority + floorMass
		weights[i] = w
		total += w
	}

	b.mu.Lock()
	r := b.rng.Float64() * total
	b.mu.Unlock()

	chosen := values[len(values)-1]
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r <= acc {
			chosen = values[i]
			break
		}
	}
	v, ok := b.Map.Take(chosen.Name())
	return v, ok
}
