package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDispatchesToSubscribedKindOnly(t *testing.T) {
	bus := NewBus(nil)
	var gotNew, gotForget int
	bus.Subscribe(ConceptNew, func(ev Event) { gotNew++ })
	bus.Subscribe(ConceptForget, func(ev Event) { gotForget++ })

	bus.Publish(Event{Kind: ConceptNew, Subject: "x"})
	assert.Equal(t, 1, gotNew)
	assert.Equal(t, 0, gotForget)
}

func TestPublishFansOutToMultipleObservers(t *testing.T) {
	bus := NewBus(nil)
	var calls int
	bus.Subscribe(TaskAdd, func(ev Event) { calls++ })
	bus.Subscribe(TaskAdd, func(ev Event) { calls++ })

	bus.Publish(Event{Kind: TaskAdd})
	assert.Equal(t, 2, calls)
}

func TestPublishRecoversFromPanickingObserver(t *testing.T) {
	bus := NewBus(nil)
	var ranAfterPanic bool
	bus.Subscribe(CycleStart, func(ev Event) { panic("boom") })
	bus.Subscribe(CycleStart, func(ev Event) { ranAfterPanic = true })

	require.NotPanics(t, func() {
		bus.Publish(Event{Kind: CycleStart})
	})
	assert.True(t, ranAfterPanic)
}

func TestKindStringCoversEveryValue(t *testing.T) {
	kinds := []Kind{
		ConceptNew, ConceptRemember, ConceptForget, ConceptBeliefAdd, ConceptBeliefRemove,
		TaskAdd, TaskRemove, CycleStart, CycleEnd, ResetStart, ResetEnd,
	}
	for _, k := range kinds {
		assert.NotEqual(t, "Unknown", k.String())
	}
	assert.Equal(t, "Unknown", Kind(999).String())
}
