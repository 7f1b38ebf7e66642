package concept

import (
	"sync"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/priority"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

// Store is the bounded PriorityMap<Term,Concept> guarded for single-writer
// access (spec §5), plus its optional overflow cache. It implements the
// eight-step conceptualize protocol of spec §4.3.
type Store struct {
	mu sync.Mutex

	bag        priority.Container[string, *Concept]
	overflow   *Overflow
	builder    Builder
	bus        *events.Bus
	beliefsMax int
}

// Config bundles Store construction parameters. Overflow may be nil to
// disable the secondary cache entirely.
type Config struct {
	Bag        priority.Container[string, *Concept]
	Overflow   *Overflow
	Builder    Builder
	Bus        *events.Bus
	BeliefsMax int
}

// NewStore constructs a Store. A nil Builder defaults to DefaultBuilder.
func NewStore(cfg Config) *Store {
	b := cfg.Builder
	if b == nil {
		b = DefaultBuilder{}
	}
	return &Store{
		bag:        cfg.Bag,
		overflow:   cfg.Overflow,
		builder:    b,
		bus:        cfg.Bus,
		beliefsMax: cfg.BeliefsMax,
	}
}

// Size returns the number of concepts currently held in the bounded store
// (not counting the overflow cache).
func (s *Store) Size() int { return s.bag.Size() }

// Capacity returns the store's configured bound (spec §8 invariant 1).
func (s *Store) Capacity() int { return s.bag.Capacity() }

// Lookup returns the concept for term t without mutating anything, or nil.
func (s *Store) Lookup(t term.Term) *Concept {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, _ := s.bag.Get(t.Key())
	return c
}

// Conceptualize implements spec §4.3's eight-step protocol: reject
// intervals, normalize, remove-then-reinsert from the store, fall back to
// the overflow cache, optionally build a fresh concept, activate its
// budget under mode, and forget-reinsert it — emitting ConceptNew /
// ConceptRemember / ConceptForget as appropriate. It returns nil for every
// "silent" failure path (InvalidTerm, BuilderRefused, or immediate-eviction
// Rejected).
func (s *Store) Conceptualize(
	b budget.Value,
	t term.Term,
	createIfMissing bool,
	now int64,
	forgetCycles int64,
	qualityRescaled float64,
	mode budget.ActivationMode,
) *Concept {
	if term.IsInterval(t) {
		return nil
	}
	t = term.ReplaceIntervals(t)

	s.mu.Lock()
	defer s.mu.Unlock()

	c, found := s.bag.Take(t.Key())
	if !found {
		if cached, ok := s.overflow.Take(t.Key()); ok {
			c = cached
			found = true
			cb := c.Budget()
			cb.LastForgetTime = now
			c.SetBudget(cb)
			s.emit(events.ConceptRemember, t.Key(), now, nil)
		}
	}

	if !found {
		if !createIfMissing {
			return nil
		}
		built := s.builder.New(b, t, s.beliefsMax)
		if built == nil {
			return nil // BuilderRefused
		}
		c = built
		s.emit(events.ConceptNew, t.Key(), now, nil)
	}

	if found {
		c.SetBudget(budget.Activate(c.Budget(), b, mode))
	}

	result := s.bag.PutBack(c, forgetCycles, now, qualityRescaled)
	switch result.Outcome {
	case priority.Inserted:
		return c
	case priority.Rejected:
		s.conceptRemoved(c, now)
		return nil
	default: // Displaced: some other concept was evicted
		s.conceptRemoved(result.Displaced, now)
		return c
	}
}

// conceptRemoved handles a concept's eviction from the bounded store: it is
// offered to the overflow cache (if present) and a ConceptForget event is
// emitted, per spec §4.3.
func (s *Store) conceptRemoved(c *Concept, now int64) {
	if s.overflow != nil {
		s.overflow.Put(c)
	}
	s.emit(events.ConceptForget, c.Name(), now, nil)
}

// Activate pulls a concept (if present) from the store, merges incoming
// into its budget under mode, and PutBacks it — spec §4.3's standalone
// "activate(concept, budget, mode)" operation, used outside the
// conceptualize flow (e.g. when a premise's belief concept is touched
// again without a fresh task).
func (s *Store) Activate(t term.Term, incoming budget.Value, mode budget.ActivationMode, now int64, forgetCycles int64, qualityRescaled float64) *Concept {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.bag.Take(t.Key())
	if !ok {
		return nil
	}
	c.SetBudget(budget.Activate(c.Budget(), incoming, mode))
	result := s.bag.PutBack(c, forgetCycles, now, qualityRescaled)
	if result.Outcome == priority.Rejected {
		s.conceptRemoved(c, now)
		return nil
	}
	if result.Outcome == priority.Displaced {
		s.conceptRemoved(result.Displaced, now)
	}
	return c
}

// TakeHighestPriority removes and returns the highest-priority concept
// currently in the bounded store, used by the cycle's temporal-anchor
// selection (spec §4.4 step 1).
func (s *Store) TakeHighestPriority() (*Concept, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bag.TakeHighestPriorityItem()
}

// PutBack reinserts c, applying forgetting first (spec §4.2's contract that
// PutBack must never skip the forgetting step).
func (s *Store) PutBack(c *Concept, forgetCycles int64, now int64, qualityRescaled float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := s.bag.PutBack(c, forgetCycles, now, qualityRescaled)
	switch result.Outcome {
	case priority.Rejected:
		s.conceptRemoved(c, now)
	case priority.Displaced:
		s.conceptRemoved(result.Displaced, now)
	}
}

// OverflowSize reports how many concepts are currently cached in the
// overflow ("subconscious"), for observability/tests.
func (s *Store) OverflowSize() int { return s.overflow.Size() }

// All returns every concept currently held in the bounded store, in no
// particular order, for snapshot export (spec §6's persisted "concept
// store with beliefs").
func (s *Store) All() []*Concept {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bag.Values()
}

// OverflowAll returns every concept currently cached in the overflow, most
// recently used first, for snapshot export.
func (s *Store) OverflowAll() []*Concept {
	return s.overflow.All()
}

// Restore inserts c directly into the bounded store, bypassing forgetting
// and event emission: snapshot import is a bulk load, not a live
// conceptualize (spec §6).
func (s *Store) Restore(c *Concept) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bag.PutIn(c)
}

// RestoreOverflow inserts c directly into the overflow cache for snapshot
// import.
func (s *Store) RestoreOverflow(c *Concept) {
	s.overflow.Put(c)
}

func (s *Store) emit(kind events.Kind, subject string, now int64, data any) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(events.Event{Kind: kind, Subject: subject, Time: now, Data: data})
}
