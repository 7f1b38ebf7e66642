package reason

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/concept"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

var premiseSeq int64

func nextPremiseID() string {
	return fmt.Sprintf("premise-%d", atomic.AddInt64(&premiseSeq, 1))
}

// FireBelief is a queued premise: a firing task paired with one belief
// concept's term-link template and, if a matching belief was found, the
// belief itself (spec §4.4 step 4). A nil Belief marks a virtual premise.
// It implements budget.Item so it can live in the bounded premise queue.
type FireBelief struct {
	mu sync.RWMutex
	id string
	b  budget.Value

	TaskConcept   *concept.Concept
	BeliefConcept *concept.Concept
	Task          *task.Task
	Subterm       term.Term
	Belief        *task.Task
	Temporal      bool
}

// virtualBeliefExpectation is the truth-expectation substitute used when a
// premise has no matching belief (spec §4.4 step 4 / open question:
// virtual-premise budget derives "as if" a belief of expectation 0.5 —
// maximum uncertainty — had been found).
const virtualBeliefExpectation = 0.5

// NewFireBelief builds a premise record and computes its derived budget
// (spec §4.5): priority = beliefConcept.priority * (belief present ?
// belief.truth.expectation : virtualBeliefExpectation), durability =
// taskLinkForgetDurations (Params.TaskLinkForgetDurations), quality = 0 —
// the premise queue's own forgetting floor, distinct from the belief
// concept's budget.
func NewFireBelief(taskConcept *concept.Concept, t *task.Task, subterm term.Term, beliefConcept *concept.Concept, belief *task.Task, temporal bool, taskLinkForgetDurations int64) *FireBelief {
	expectation := virtualBeliefExpectation
	if belief != nil && belief.Sentence.Truth != nil {
		expectation = belief.Sentence.Truth.Expectation()
	}
	bc := beliefConcept.Budget()
	priority := bc.Priority * expectation
	derived := budget.New(priority, float64(taskLinkForgetDurations), 0, bc.LastForgetTime)

	return &FireBelief{
		id:            nextPremiseID(),
		b:             derived,
		TaskConcept:   taskConcept,
		BeliefConcept: beliefConcept,
		Task:          t,
		Subterm:       subterm,
		Belief:        belief,
		Temporal:      temporal,
	}
}

func (fb *FireBelief) Name() string { return fb.id }

func (fb *FireBelief) Budget() budget.Value {
	fb.mu.RLock()
	defer fb.mu.RUnlock()
	return fb.b
}

func (fb *FireBelief) SetBudget(b budget.Value) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.b = b
}

// Execute runs one premise through stamp construction, the evidential-
// overlap guard, question matching, and the external rule table, per spec
// §4.5. A panic from either external collaborator is recovered and logged:
// a single bad derivation must never take down the cycle.
func (fb *FireBelief) Execute(mem *Memory, rt RuleTables, lr LocalRules) {
	defer func() {
		if r := recover(); r != nil {
			mem.Logger().Error("premise execution panicked",
				"premise", fb.id, "task", fb.Task.Name(), "panic", r)
		}
	}()

	now := mem.Clock().Now()

	var stamp task.Stamp
	if fb.Belief == nil {
		stamp = task.Copy(fb.Task.Sentence.Stamp, now)
	} else {
		if fb.Task.Sentence.Stamp.Overlaps(fb.Belief.Sentence.Stamp) {
			return
		}
		stamp = task.Merge(fb.Task.Sentence.Stamp, fb.Belief.Sentence.Stamp, now)
	}

	ctx := &Context{
		Memory:        mem,
		Now:           now,
		TaskConcept:   fb.TaskConcept,
		BeliefConcept: fb.BeliefConcept,
		Task:          fb.Task,
		Belief:        fb.Belief,
		Subterm:       fb.Subterm,
		Stamp:         stamp,
		Temporal:      fb.Temporal,
	}

	if fb.Task.Sentence.Punctuation == task.Question && fb.Belief != nil {
		if lr.TrySolution(fb.Belief, fb.Task, ctx, fb.Task.IsInput) {
			return
		}
	}

	rt.Reason(ctx)
}
