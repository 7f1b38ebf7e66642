package reason

import (
	"testing"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/concept"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/priority"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(bus *events.Bus) *Memory {
	params := DefaultParams()
	store := concept.NewStore(concept.Config{
		Bag:        priority.NewMap[string, *concept.Concept](params.ConceptBagSize),
		Overflow:   concept.NewOverflow(params.OverflowCacheSize),
		BeliefsMax: params.ConceptBeliefsMax,
		Bus:        bus,
	})
	return NewMemory(
		params,
		NewClock(0),
		bus,
		task.NewSerialIssuer(1),
		store,
		priority.NewMap[string, *task.Task](8),
		priority.NewMap[string, *FireBelief](8),
		nil,
	)
}

func judgmentTask(term term.Term, priorityVal float64) *task.Task {
	return task.New(task.Sentence{
		Term:        term,
		Punctuation: task.Judgment,
		Truth:       &task.Truth{Frequency: 0.9, Confidence: 0.8},
		Stamp:       task.Stamp{OccurrenceTime: task.Eternal, Evidence: []task.Serial{{ReasonerID: 1, Counter: 1}}},
	}, budget.New(priorityVal, 0.5, 0.5, 0), false)
}

func TestAddTaskInputGoesToFIFONotBag(t *testing.T) {
	mem := newTestMemory(nil)
	in := judgmentTask(term.Atom{Name: "bird"}, 0.5)
	mem.AddTask(in, false)

	got, ok := mem.nextInputTask()
	require.True(t, ok)
	assert.Same(t, in, got)

	_, ok = mem.takeCyclingTask()
	assert.False(t, ok)
}

func TestAddTaskDerivedGoesToCyclingBagAndEmits(t *testing.T) {
	var gotAdd, gotRemove int
	bus := events.NewBus(nil)
	bus.Subscribe(events.TaskAdd, func(ev events.Event) { gotAdd++ })
	bus.Subscribe(events.TaskRemove, func(ev events.Event) { gotRemove++ })
	mem := newTestMemory(bus)

	derived := judgmentTask(term.Atom{Name: "bird"}, 0.5)
	mem.AddTask(derived, true)
	assert.Equal(t, 1, gotAdd)
	assert.Equal(t, 0, gotRemove)

	got, ok := mem.takeCyclingTask()
	require.True(t, ok)
	assert.Same(t, derived, got)
}

func TestAddTaskDerivedRejectedAtCapacityIsSilent(t *testing.T) {
	var gotAdd int
	bus := events.NewBus(nil)
	bus.Subscribe(events.TaskAdd, func(ev events.Event) { gotAdd++ })

	mem := newTestMemory(bus)
	mem.cycling = priority.NewMap[string, *task.Task](0)

	mem.AddTask(judgmentTask(term.Atom{Name: "bird"}, 0.5), true)
	assert.Equal(t, 0, gotAdd)
}

func TestDrainPremisesReturnsHighestPriorityFirstUpToMax(t *testing.T) {
	mem := newTestMemory(nil)
	birdConcept := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "bird"}, 7)
	task1 := judgmentTask(term.Atom{Name: "bird"}, 0.5)

	// FireBelief priority derives from the belief concept's own priority, not
	// the firing task's, so vary the belief concept to get distinct premise
	// priorities.
	lowBeliefConcept := concept.New(budget.New(0.2, 0.5, 0.5, 0), term.Atom{Name: "low"}, 7)
	highBeliefConcept := concept.New(budget.New(0.9, 0.5, 0.5, 0), term.Atom{Name: "high"}, 7)

	lowFB := NewFireBelief(birdConcept, task1, term.Atom{Name: "low"}, lowBeliefConcept, nil, false, 5)
	highFB := NewFireBelief(birdConcept, task1, term.Atom{Name: "high"}, highBeliefConcept, nil, false, 5)
	mem.enqueuePremise(lowFB)
	mem.enqueuePremise(highFB)

	drained := mem.drainPremises(1)
	require.Len(t, drained, 1)
	assert.Same(t, highFB, drained[0])

	drainedRest := mem.drainPremises(8)
	require.Len(t, drainedRest, 1)
	assert.Same(t, lowFB, drainedRest[0])
}

func TestFeedbackBudgetUsesConfiguredDefaults(t *testing.T) {
	mem := newTestMemory(nil)
	b := mem.FeedbackBudget(0.3)
	assert.Equal(t, mem.params.DefaultFeedbackPriority, b.Priority)
	assert.Equal(t, mem.params.DefaultFeedbackDurability, b.Durability)
	assert.Equal(t, 0.3, b.Quality)
}
