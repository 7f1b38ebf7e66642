package rules

import (
	"testing"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/reason"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func question(tm term.Term) *task.Task {
	return task.New(task.Sentence{Term: tm, Punctuation: task.Question}, budget.New(0.5, 0.5, 0.5, 0), true)
}

func TestTrySolutionMatchesSameTermJudgment(t *testing.T) {
	bus := events.NewBus(nil)
	var published *events.Event
	bus.Subscribe(events.TaskAdd, func(ev events.Event) { published = &ev })
	mem := newTestMemory(bus)

	belief := judgment(term.Atom{Name: "bird"}, 0.9, 0.8, 1)
	q := question(term.Atom{Name: "bird"})

	ctx := &reason.Context{Memory: mem, Now: 42}
	var lr reason.LocalRules = LocalMatcher{}

	ok := lr.TrySolution(belief, q, ctx, true)
	require.True(t, ok)
	require.NotNil(t, published)
	assert.Equal(t, q.Name(), published.Subject)
	assert.Same(t, belief, published.Data)
}

func TestTrySolutionRejectsMismatchedTerm(t *testing.T) {
	belief := judgment(term.Atom{Name: "bird"}, 0.9, 0.8, 1)
	q := question(term.Atom{Name: "animal"})
	var lr reason.LocalRules = LocalMatcher{}
	assert.False(t, lr.TrySolution(belief, q, &reason.Context{}, true))
}

func TestTrySolutionRejectsNonQuestionOrNonJudgment(t *testing.T) {
	belief := judgment(term.Atom{Name: "bird"}, 0.9, 0.8, 1)
	notAQuestion := judgment(term.Atom{Name: "bird"}, 0.5, 0.5, 2)
	var lr reason.LocalRules = LocalMatcher{}
	assert.False(t, lr.TrySolution(belief, notAQuestion, &reason.Context{}, true))

	q := question(term.Atom{Name: "bird"})
	assert.False(t, lr.TrySolution(nil, q, &reason.Context{}, true))
}
