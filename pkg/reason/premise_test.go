package reason

import (
	"testing"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/concept"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventTask(tm term.Term, occurrence int64, evidence task.Serial) *task.Task {
	return task.New(task.Sentence{
		Term:        tm,
		Punctuation: task.Judgment,
		Truth:       &task.Truth{Frequency: 0.9, Confidence: 0.8},
		Stamp:       task.Stamp{OccurrenceTime: occurrence, Evidence: []task.Serial{evidence}},
	}, budget.New(0.5, 0.5, 0.5, 0), false)
}

func TestNewFireBeliefUsesVirtualExpectationWhenNoBelief(t *testing.T) {
	bc := concept.New(budget.New(0.8, 0.4, 0.3, 0), term.Atom{Name: "animal"}, 7)
	tc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "bird"}, 7)
	tsk := eventTask(term.Atom{Name: "bird"}, 10, task.Serial{ReasonerID: 1, Counter: 1})

	fb := NewFireBelief(tc, tsk, term.Atom{Name: "animal"}, bc, nil, false, 5)
	assert.InDelta(t, 0.8*virtualBeliefExpectation, fb.Budget().Priority, 1e-9)
	assert.InDelta(t, 1.0, fb.Budget().Durability, 1e-9) // TASKLINK_FORGET_DURATIONS=5 clamps to 1.0
	assert.Equal(t, 0.0, fb.Budget().Quality)
}

func TestNewFireBeliefUsesBeliefTruthExpectationWhenPresent(t *testing.T) {
	bc := concept.New(budget.New(0.8, 0.4, 0.3, 0), term.Atom{Name: "animal"}, 7)
	tc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "bird"}, 7)
	tsk := eventTask(term.Atom{Name: "bird"}, 10, task.Serial{ReasonerID: 1, Counter: 1})
	belief := eventTask(term.Atom{Name: "animal"}, 10, task.Serial{ReasonerID: 1, Counter: 2})

	fb := NewFireBelief(tc, tsk, term.Atom{Name: "animal"}, bc, belief, false, 5)
	expectation := belief.Sentence.Truth.Expectation()
	assert.InDelta(t, 0.8*expectation, fb.Budget().Priority, 1e-9)
}

type recordingRules struct {
	called bool
	ctx    *Context
}

func (r *recordingRules) Reason(ctx *Context) {
	r.called = true
	r.ctx = ctx
}

type stubLocalRules struct {
	solve bool
	called bool
}

func (s *stubLocalRules) TrySolution(belief *task.Task, question *task.Task, ctx *Context, isInput bool) bool {
	s.called = true
	return s.solve
}

func TestExecuteSkipsReasonOnEvidentialOverlap(t *testing.T) {
	mem := newTestMemory(nil)
	shared := task.Serial{ReasonerID: 1, Counter: 1}
	tsk := eventTask(term.Atom{Name: "bird"}, 10, shared)
	belief := eventTask(term.Atom{Name: "animal"}, 10, shared)

	tc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "bird"}, 7)
	bc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "animal"}, 7)

	fb := NewFireBelief(tc, tsk, term.Atom{Name: "animal"}, bc, belief, false, 5)
	rules := &recordingRules{}
	local := &stubLocalRules{}

	fb.Execute(mem, rules, local)
	assert.False(t, rules.called)
}

func TestExecuteReturnsEarlyOnSolvedQuestion(t *testing.T) {
	mem := newTestMemory(nil)
	question := task.New(task.Sentence{
		Term:        term.Atom{Name: "bird"},
		Punctuation: task.Question,
		Stamp:       task.Stamp{OccurrenceTime: task.Eternal, Evidence: []task.Serial{{ReasonerID: 1, Counter: 1}}},
	}, budget.New(0.5, 0.5, 0.5, 0), true)
	belief := eventTask(term.Atom{Name: "animal"}, 10, task.Serial{ReasonerID: 1, Counter: 2})

	tc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "bird"}, 7)
	bc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "animal"}, 7)

	fb := NewFireBelief(tc, question, term.Atom{Name: "animal"}, bc, belief, false, 5)
	rules := &recordingRules{}
	local := &stubLocalRules{solve: true}

	fb.Execute(mem, rules, local)
	assert.True(t, local.called)
	assert.False(t, rules.called)
}

func TestExecuteReasonsOverNonTemporalVirtualPremise(t *testing.T) {
	mem := newTestMemory(nil)
	tsk := eventTask(term.Atom{Name: "bird"}, 10, task.Serial{ReasonerID: 1, Counter: 1})

	tc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "bird"}, 7)
	bc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "animal"}, 7)

	fb := NewFireBelief(tc, tsk, term.Atom{Name: "animal"}, bc, nil, false, 5)
	rules := &recordingRules{}
	local := &stubLocalRules{}

	fb.Execute(mem, rules, local)
	require.True(t, rules.called)
	assert.True(t, rules.ctx.IsVirtual())
}

func TestExecuteCallsReasonForNonVirtualPremise(t *testing.T) {
	mem := newTestMemory(nil)
	tsk := eventTask(term.Atom{Name: "bird"}, 10, task.Serial{ReasonerID: 1, Counter: 1})
	belief := eventTask(term.Atom{Name: "animal"}, 10, task.Serial{ReasonerID: 1, Counter: 2})

	tc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "bird"}, 7)
	bc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "animal"}, 7)

	fb := NewFireBelief(tc, tsk, term.Atom{Name: "animal"}, bc, belief, false, 5)
	rules := &recordingRules{}
	local := &stubLocalRules{}

	fb.Execute(mem, rules, local)
	require.True(t, rules.called)
	assert.False(t, rules.ctx.IsVirtual())
}

type panickingRules struct{}

func (panickingRules) Reason(ctx *Context) { panic("boom") }

func TestExecuteRecoversFromRulesPanic(t *testing.T) {
	mem := newTestMemory(nil)
	tsk := eventTask(term.Atom{Name: "bird"}, 10, task.Serial{ReasonerID: 1, Counter: 1})
	belief := eventTask(term.Atom{Name: "animal"}, 10, task.Serial{ReasonerID: 1, Counter: 2})

	tc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "bird"}, 7)
	bc := concept.New(budget.New(0.5, 0.5, 0.5, 0), term.Atom{Name: "animal"}, 7)

	fb := NewFireBelief(tc, tsk, term.Atom{Name: "animal"}, bc, belief, false, 5)
	local := &stubLocalRules{}

	assert.NotPanics(t, func() {
		fb.Execute(mem, panickingRules{}, local)
	})
}
