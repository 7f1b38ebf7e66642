package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/concept"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/priority"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/reason"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

func newTestMemory(t *testing.T) *reason.Memory {
	t.Helper()
	params := reason.DefaultParams()
	bus := events.NewBus(nil)
	store := concept.NewStore(concept.Config{
		Bag:        priority.NewMap[string, *concept.Concept](params.ConceptBagSize),
		Overflow:   concept.NewOverflow(params.OverflowCacheSize),
		BeliefsMax: params.ConceptBeliefsMax,
		Bus:        bus,
	})
	return reason.NewMemory(
		params, reason.NewClock(0), bus, task.NewSerialIssuer(7), store,
		priority.NewMap[string, *task.Task](params.TaskLinkBagSize),
		priority.NewMap[string, *reason.FireBelief](params.PremisesMaxFired),
		nil,
	)
}

func TestBuildCapturesConceptsAndQueues(t *testing.T) {
	mem := newTestMemory(t)

	reader := term.NewReader()
	birdAnimal, err := reader.Parse("bird --> animal")
	require.NoError(t, err)

	cpt := mem.Store().Conceptualize(budget.New(0.8, 0.8, 0.5, 0), birdAnimal, true, 0, 1, 0.5, budget.TaskLinkActivation)
	require.NotNil(t, cpt)

	belief := task.New(task.Sentence{
		Term:        birdAnimal,
		Punctuation: task.Judgment,
		Truth:       &task.Truth{Frequency: 1.0, Confidence: 0.9},
		Stamp:       task.Stamp{OccurrenceTime: task.Eternal, Evidence: []task.Serial{mem.Serial().Next()}},
	}, budget.New(0.8, 0.8, 0.5, 0), true)
	cpt.AddBelief(belief, 0)

	input, err := reader.Parse("robin --> bird")
	require.NoError(t, err)
	mem.AddTask(task.New(task.Sentence{Term: input, Punctuation: task.Question}, budget.New(0.9, 0.9, 0.5, 0), true), false)

	snap := Build(mem, "nar-1")

	assert.Equal(t, "nar-1", snap.NarID)
	assert.Equal(t, uint32(7), snap.CurrentStampSerial.ReasonerID)
	assert.Equal(t, uint64(1), snap.CurrentStampSerial.Counter)
	require.Len(t, snap.Concepts, 1)
	assert.Equal(t, "bird --> animal", snap.Concepts[0].Term)
	require.Len(t, snap.Concepts[0].Beliefs, 1)
	assert.Equal(t, 1.0, *snap.Concepts[0].Beliefs[0].Frequency)
	require.Len(t, snap.InputTasks, 1)
	assert.Equal(t, "robin --> bird", snap.InputTasks[0].Term)
}

func TestApplyRestoresConceptsAndQueues(t *testing.T) {
	source := newTestMemory(t)
	reader := term.NewReader()

	birdAnimal, err := reader.Parse("bird --> animal")
	require.NoError(t, err)
	cpt := source.Store().Conceptualize(budget.New(0.8, 0.8, 0.5, 0), birdAnimal, true, 0, 1, 0.5, budget.TaskLinkActivation)
	require.NotNil(t, cpt)
	belief := task.New(task.Sentence{
		Term:        birdAnimal,
		Punctuation: task.Judgment,
		Truth:       &task.Truth{Frequency: 1.0, Confidence: 0.9},
		Stamp:       task.Stamp{OccurrenceTime: task.Eternal, Evidence: []task.Serial{source.Serial().Next()}},
	}, budget.New(0.8, 0.8, 0.5, 0), true)
	cpt.AddBelief(belief, 0)

	input, err := reader.Parse("robin --> bird")
	require.NoError(t, err)
	source.AddTask(task.New(task.Sentence{Term: input, Punctuation: task.Question}, budget.New(0.9, 0.9, 0.5, 0), true), false)

	snap := Build(source, "nar-1")

	dest := newTestMemory(t)
	require.NoError(t, Apply(snap, dest))

	restored := dest.Store().Lookup(birdAnimal)
	require.NotNil(t, restored)
	assert.Equal(t, 0.8, restored.Budget().Priority)
	require.Len(t, restored.Beliefs(), 1)
	assert.Equal(t, 1.0, restored.Beliefs()[0].Sentence.Truth.Frequency)

	pending := dest.PendingInputTasks()
	require.Len(t, pending, 1)
	assert.Equal(t, "robin --> bird", pending[0].Sentence.Term.String())
}

func TestApplyRejectsUnparsableTerm(t *testing.T) {
	snap := &Snapshot{Concepts: []ConceptRecord{{Term: ""}}}
	dest := newTestMemory(t)
	err := Apply(snap, dest)
	assert.Error(t, err)
}
