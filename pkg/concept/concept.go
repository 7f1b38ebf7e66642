// Package concept implements the bounded concept store and conceptualize
// protocol of spec §4.3: the PriorityMap<Term,Concept> store, the optional
// overflow cache, and the Concept type itself (beliefs, term-link
// templates, lastFireTime, current event belief).
package concept

import (
	"sync"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

// Concept is the reasoning unit for a term (spec §3): an ordered,
// rank-sorted belief list bounded by beliefsMax, the term's inherited
// term-link templates, lastFireTime, and an optional current event belief.
type Concept struct {
	mu sync.RWMutex

	t            term.Term
	budget       budget.Value
	beliefs      []*task.Task
	beliefsMax   int
	lastFireTime int64
	event        *task.Task
	templates    []term.Term
}

// NegativeInfinity is used as the initial lastFireTime, per spec §3
// ("initial −∞").
const NegativeInfinity = int64(-1) << 62

// New constructs a Concept for term t with the given budget and belief
// capacity.
func New(b budget.Value, t term.Term, beliefsMax int) *Concept {
	return &Concept{
		t:            t,
		budget:       b,
		beliefsMax:   beliefsMax,
		lastFireTime: NegativeInfinity,
		templates:    term.TermLinkTemplates(t),
	}
}

func (c *Concept) Name() string { return c.t.Key() }

func (c *Concept) Budget() budget.Value {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.budget
}

func (c *Concept) SetBudget(b budget.Value) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.budget = b
}

// Term returns the concept's term.
func (c *Concept) Term() term.Term { return c.t }

// TermLinkTemplates returns the canonical component decomposition inherited
// from the concept's compound term (nil for atomic/variable terms).
func (c *Concept) TermLinkTemplates() []term.Term { return c.templates }

func (c *Concept) LastFireTime() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastFireTime
}

func (c *Concept) SetLastFireTime(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastFireTime = now
}

// Event returns the most recent non-eternal judgment belief, or nil.
func (c *Concept) Event() *task.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.event
}

// Beliefs returns a snapshot of the belief list, highest rank first.
func (c *Concept) Beliefs() []*task.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*task.Task, len(c.beliefs))
	copy(out, c.beliefs)
	return out
}

// sameTruthAndStamp reports whether two judgments are duplicates per spec
// §3's "ties with equal truth and equal stamp are rejected" invariant.
func sameTruthAndStamp(a, b *task.Task) bool {
	at, bt := a.Sentence.Truth, b.Sentence.Truth
	if (at == nil) != (bt == nil) {
		return false
	}
	if at != nil && (*at != *bt) {
		return false
	}
	as, bs := a.Sentence.Stamp, b.Sentence.Stamp
	if as.CreationTime != bs.CreationTime || as.OccurrenceTime != bs.OccurrenceTime {
		return false
	}
	if len(as.Evidence) != len(bs.Evidence) {
		return false
	}
	for i := range as.Evidence {
		if as.Evidence[i] != bs.Evidence[i] {
			return false
		}
	}
	return true
}

// AddBelief inserts a judgment task into the belief list, keeping it sorted
// strictly by descending rank, bounded to beliefsMax, and rejecting exact
// (truth, stamp) duplicates (spec §3 invariant). It reports whether the
// belief was added (false for a rejected duplicate). If the belief is
// non-eternal, it also becomes the concept's current event.
func (c *Concept) AddBelief(t *task.Task, now int64) bool {
	if !t.IsJudgment() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, b := range c.beliefs {
		if sameTruthAndStamp(b, t) {
			return false
		}
	}

	rank := task.Rank(t, now)
	pos := len(c.beliefs)
	for i, b := range c.beliefs {
		if task.Rank(b, now) < rank {
			pos = i
			break
		}
	}
	c.beliefs = append(c.beliefs, nil)
	copy(c.beliefs[pos+1:], c.beliefs[pos:])
	c.beliefs[pos] = t

	survived := pos < c.beliefsMax
	if len(c.beliefs) > c.beliefsMax {
		c.beliefs = c.beliefs[:c.beliefsMax]
	}

	if survived && !t.Sentence.Stamp.IsEternal() {
		c.event = t
	}
	return survived
}
