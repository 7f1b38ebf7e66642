package concept

import (
	"testing"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/priority"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bird() term.Term { return term.Atom{Name: "bird"} }

func judgmentTask(freq, conf float64, occurrence int64) *task.Task {
	b := budget.New(0.5, 0.5, 0.5, 0)
	return task.New(task.Sentence{
		Term:        bird(),
		Punctuation: task.Judgment,
		Truth:       &task.Truth{Frequency: freq, Confidence: conf},
		Stamp:       task.Stamp{OccurrenceTime: occurrence, Evidence: []task.Serial{{ReasonerID: 1, Counter: 1}}},
	}, b, false)
}

func TestAddBeliefRejectsExactDuplicate(t *testing.T) {
	c := New(budget.New(0.5, 0.5, 0.5, 0), bird(), 7)
	t1 := judgmentTask(0.9, 0.8, 10)
	require.True(t, c.AddBelief(t1, 10))
	assert.False(t, c.AddBelief(t1, 10))
	assert.Len(t, c.Beliefs(), 1)
}

func TestAddBeliefRejectsNonJudgment(t *testing.T) {
	c := New(budget.New(0.5, 0.5, 0.5, 0), bird(), 7)
	q := task.New(task.Sentence{Term: bird(), Punctuation: task.Question}, budget.New(0.5, 0.5, 0.5, 0), true)
	assert.False(t, c.AddBelief(q, 0))
}

func TestAddBeliefTruncatesBeyondCapacityAndReportsFalse(t *testing.T) {
	c := New(budget.New(0.5, 0.5, 0.5, 0), bird(), 1)
	high := judgmentTask(0.9, 0.9, 10)
	low := judgmentTask(0.9, 0.1, 10)

	require.True(t, c.AddBelief(high, 10))
	// low ranks below the existing high-confidence belief and the capacity
	// is 1, so it should be truncated away and reported as not surviving.
	assert.False(t, c.AddBelief(low, 10))
	assert.Len(t, c.Beliefs(), 1)
	assert.Same(t, high, c.Beliefs()[0])
}

func TestAddBeliefSetsEventOnlyForNonEternalSurvivors(t *testing.T) {
	c := New(budget.New(0.5, 0.5, 0.5, 0), bird(), 7)
	eternal := task.New(task.Sentence{
		Term: bird(), Punctuation: task.Judgment,
		Truth: &task.Truth{Frequency: 0.9, Confidence: 0.9},
		Stamp: task.Stamp{OccurrenceTime: task.Eternal, Evidence: []task.Serial{{ReasonerID: 1, Counter: 1}}},
	}, budget.New(0.5, 0.5, 0.5, 0), false)

	require.True(t, c.AddBelief(eternal, 0))
	assert.Nil(t, c.Event())

	event := judgmentTask(0.9, 0.9, 10)
	require.True(t, c.AddBelief(event, 10))
	assert.Same(t, event, c.Event())
}

func TestOverflowPutTakeRoundTrip(t *testing.T) {
	ov := NewOverflow(2)
	c1 := New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "a"}, 7)
	ov.Put(c1)

	got, ok := ov.Take("atom:a")
	require.True(t, ok)
	assert.Same(t, c1, got)

	_, ok = ov.Take("atom:a")
	assert.False(t, ok)
}

func TestOverflowEvictsLeastRecentlyUsed(t *testing.T) {
	ov := NewOverflow(2)
	a := New(budget.New(0.1, 0.1, 0.1, 0), term.Atom{Name: "a"}, 7)
	b := New(budget.New(0.1, 0.1, 0.1, 0), term.Atom{Name: "b"}, 7)
	c := New(budget.New(0.1, 0.1, 0.1, 0), term.Atom{Name: "c"}, 7)

	ov.Put(a)
	ov.Put(b)
	ov.Put(c) // evicts a, the least recently used

	_, ok := ov.Take("atom:a")
	assert.False(t, ok)
	_, ok = ov.Take("atom:b")
	assert.True(t, ok)
}

func TestOverflowZeroCapacityIsAlwaysMiss(t *testing.T) {
	ov := NewOverflow(0)
	ov.Put(New(budget.New(0.5, 0.5, 0.5, 0), bird(), 7))
	_, ok := ov.Take("atom:bird")
	assert.False(t, ok)
	assert.Equal(t, 0, ov.Size())
}

func TestDefaultBuilderRefusesFreeVariable(t *testing.T) {
	builder := DefaultBuilder{}
	withVar := term.Compound{Connector: "-->", Parts: []term.Term{term.Variable{Symbol: '?', Name: "1"}, bird()}}
	assert.Nil(t, builder.New(budget.New(0.5, 0.5, 0.5, 0), withVar, 7))

	cpt := builder.New(budget.New(0.5, 0.5, 0.5, 0), bird(), 7)
	assert.NotNil(t, cpt)
}

func newStore(capacity int, overflowCap int, bus *events.Bus) *Store {
	return NewStore(Config{
		Bag:        priority.NewMap[string, *Concept](capacity),
		Overflow:   NewOverflow(overflowCap),
		BeliefsMax: 7,
		Bus:        bus,
	})
}

func TestConceptualizeRejectsIntervalTerm(t *testing.T) {
	s := newStore(4, 4, nil)
	got := s.Conceptualize(budget.New(0.5, 0.5, 0.5, 0), term.Interval{Duration: 1}, true, 0, 5, 0.1, budget.TaskLinkActivation)
	assert.Nil(t, got)
}

func TestConceptualizeCreatesOnFirstLookup(t *testing.T) {
	var kinds []events.Kind
	bus := events.NewBus(nil)
	bus.Subscribe(events.ConceptNew, func(ev events.Event) { kinds = append(kinds, ev.Kind) })
	s := newStore(4, 4, bus)

	got := s.Conceptualize(budget.New(0.5, 0.5, 0.5, 0), bird(), true, 0, 5, 0.1, budget.TaskLinkActivation)
	require.NotNil(t, got)
	assert.Equal(t, []events.Kind{events.ConceptNew}, kinds)
	assert.Equal(t, 1, s.Size())
}

func TestConceptualizeReturnsNilWhenMissingAndCreateDisallowed(t *testing.T) {
	s := newStore(4, 4, nil)
	got := s.Conceptualize(budget.New(0.5, 0.5, 0.5, 0), bird(), false, 0, 5, 0.1, budget.TaskLinkActivation)
	assert.Nil(t, got)
}

func TestConceptualizeRemembersFromOverflowAfterEviction(t *testing.T) {
	var kinds []events.Kind
	bus := events.NewBus(nil)
	bus.Subscribe(events.ConceptForget, func(ev events.Event) { kinds = append(kinds, ev.Kind) })
	bus.Subscribe(events.ConceptRemember, func(ev events.Event) { kinds = append(kinds, ev.Kind) })

	s := newStore(1, 4, bus)
	s.Conceptualize(budget.New(0.2, 0.5, 0.5, 0), bird(), true, 0, 5, 0.1, budget.TaskLinkActivation)
	// A second, higher-priority concept evicts "bird" into the overflow.
	s.Conceptualize(budget.New(0.9, 0.5, 0.5, 0), term.Atom{Name: "animal"}, true, 0, 5, 0.1, budget.TaskLinkActivation)
	require.Contains(t, kinds, events.ConceptForget)
	require.Equal(t, 1, s.OverflowSize())

	got := s.Conceptualize(budget.New(0.9, 0.5, 0.5, 0), bird(), true, 1, 5, 0.1, budget.TaskLinkActivation)
	require.NotNil(t, got)
	assert.Contains(t, kinds, events.ConceptRemember)
}

func TestStoreCapacityAndSize(t *testing.T) {
	s := newStore(3, 0, nil)
	assert.Equal(t, 3, s.Capacity())
	assert.Equal(t, 0, s.Size())
}
