package reason

import (
	"log/slog"
	"sync"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/concept"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

// Cycle is the ALANN-style inference circle: one Step runs temporal-anchor
// selection, task selection, pre-activation (conceptualize), firing (premise
// enqueue), and premise-batch draining (spec §4.4), in that order.
type Cycle struct {
	stepMu sync.Mutex
	mem    *Memory
	rules  RuleTables
	local  LocalRules
	logger *slog.Logger
}

// NewCycle constructs a Cycle from its external collaborators. The free-
// variable unifier is not one of them: implementations of RuleTables that
// need it hold their own Variables collaborator (see pkg/rules.Engine).
func NewCycle(mem *Memory, rules RuleTables, local LocalRules) *Cycle {
	return &Cycle{mem: mem, rules: rules, local: local, logger: mem.Logger()}
}

// Step advances the reasoner by one cycle and returns the number of
// premises drained and executed (mainly for observability/tests). Every
// task selected this cycle is reinserted into the cycling bag with
// forgetting applied after firing (spec §4.4 step 4), whether it came from
// the input FIFO or the cycling bag itself.
func (c *Cycle) Step() int {
	c.stepMu.Lock()
	defer c.stepMu.Unlock()

	now := c.mem.clock.Tick()
	c.mem.emit(events.CycleStart, "", now)
	defer c.mem.emit(events.CycleEnd, "", now)

	anchors := c.temporalAnchors(now)
	selected := c.selectTasks()
	fired := make([]*concept.Concept, 0, len(selected))

	for _, t := range selected {
		cpt := c.preActivate(t, now)
		if cpt != nil {
			fired = append(fired, cpt)
		}
	}

	for _, cpt := range fired {
		c.fireConcept(cpt, anchors, now)
	}

	for _, t := range selected {
		c.mem.putBackCyclingTask(t, now)
	}

	premises := c.mem.drainPremises(c.mem.params.PremisesMaxFired)
	for _, fb := range premises {
		fb.Execute(c.mem, c.rules, c.local)
	}
	return len(premises)
}

// temporalAnchors draws up to SEQUENCE_BAG_ATTEMPTS highest-priority
// concepts, keeps those carrying a recent (non-eternal) event belief as
// anchors, and puts every drawn concept straight back, so this
// step never removes a concept from circulation — it only samples candidate
// context for the firing step's temporal premises (spec §4.4 step 1).
func (c *Cycle) temporalAnchors(now int64) []*concept.Concept {
	attempts := c.mem.params.SequenceBagAttempts
	anchors := make([]*concept.Concept, 0, attempts)
	drawn := make([]*concept.Concept, 0, attempts)

	for i := 0; i < attempts; i++ {
		cpt, ok := c.mem.store.TakeHighestPriority()
		if !ok {
			break
		}
		drawn = append(drawn, cpt)
		if cpt.Event() != nil {
			anchors = append(anchors, cpt)
		}
	}
	for _, cpt := range drawn {
		c.mem.store.PutBack(cpt, c.mem.params.ConceptForgetDurations, now, c.mem.params.QualityRescaled)
	}
	return anchors
}

// selectTasks pulls up to TASKS_MAX_FIRED tasks for this cycle, preferring
// the oldest input task before any derived (cycling) task (spec §4.4 step 2).
func (c *Cycle) selectTasks() []*task.Task {
	out := make([]*task.Task, 0, c.mem.params.TasksMaxFired)
	for i := 0; i < c.mem.params.TasksMaxFired; i++ {
		if t, ok := c.mem.nextInputTask(); ok {
			out = append(out, t)
			continue
		}
		if t, ok := c.mem.takeCyclingTask(); ok {
			out = append(out, t)
			continue
		}
		break
	}
	return out
}

// preActivate conceptualizes the task's term, folds the task in as a belief
// or leaves it for question/goal matching, and returns the resulting
// concept so the firing step can use it as a term-link source (spec §4.4
// step 3). A judgment task is added as a belief not only to its own concept
// but to every component-term concept reachable via its term-link
// templates (addToBeliefsConceptualizingComponents), conceptualizing each
// component on demand. Question and goal tasks activate under
// QuestionActivation instead of TaskLinkActivation, since getting attended
// to soon matters more than the slower-building durability a belief earns.
func (c *Cycle) preActivate(t *task.Task, now int64) *concept.Concept {
	mode := budget.QuestionActivation
	if t.IsJudgment() {
		mode = budget.TaskLinkActivation
	}
	cpt := c.mem.store.Conceptualize(t.Budget(), t.Sentence.Term, true, now, c.mem.params.ConceptForgetDurations, c.mem.params.QualityRescaled, mode)
	if cpt == nil {
		return nil
	}
	if t.IsJudgment() {
		cpt.AddBelief(t, now)
		for _, tmpl := range cpt.TermLinkTemplates() {
			compCpt := c.mem.store.Conceptualize(t.Budget(), tmpl, true, now, c.mem.params.ConceptForgetDurations, c.mem.params.QualityRescaled, budget.TaskLinkActivation)
			if compCpt == nil {
				continue
			}
			compCpt.AddBelief(t, now)
		}
	}
	return cpt
}

// fireConcept implements fireTask (spec §4.4 step 4): gated by the novelty
// horizon, it walks the firing concept's term-link templates, resolves each
// to a belief concept (building it on demand), and enqueues one FireBelief
// premise per template for the concept's current event belief, plus one
// temporal premise per anchor other than the concept itself.
func (c *Cycle) fireConcept(cpt *concept.Concept, anchors []*concept.Concept, now int64) {
	last := cpt.LastFireTime()
	if last != concept.NegativeInfinity && now-last < c.mem.params.NoveltyHorizon {
		return
	}
	cpt.SetLastFireTime(now)

	evt := cpt.Event()
	if evt == nil {
		return
	}

	for _, tmpl := range cpt.TermLinkTemplates() {
		beliefConcept := c.mem.store.Lookup(tmpl)
		if beliefConcept == nil {
			// Allow the belief concept itself to be built lazily with
			// feedback-grade budget, so repeated firing eventually seeds it.
			beliefConcept = c.mem.store.Conceptualize(
				c.mem.FeedbackBudget(c.mem.params.QualityRescaled), tmpl, true, now,
				c.mem.params.ConceptForgetDurations, c.mem.params.QualityRescaled, budget.TaskLinkActivation)
			if beliefConcept == nil {
				continue
			}
		}
		belief := bestBelief(beliefConcept, evt.Sentence.Term)
		fb := NewFireBelief(cpt, evt, tmpl, beliefConcept, belief, false, c.mem.params.TaskLinkForgetDurations)
		c.enqueue(fb)
	}

	for _, anchor := range anchors {
		if anchor == cpt {
			continue
		}
		fb := NewFireBelief(cpt, evt, anchor.Term(), anchor, anchor.Event(), true, c.mem.params.TaskLinkForgetDurations)
		c.enqueue(fb)
	}
}

// enqueue inserts a premise into the bounded premise queue; an eviction or
// an outright rejection is silent, mirroring Conceptualize's convention —
// losing a candidate premise under resource pressure is a normal outcome,
// not an error.
func (c *Cycle) enqueue(fb *FireBelief) {
	_ = c.mem.enqueuePremise(fb)
}

// bestBelief returns the highest-rank belief in cpt whose term differs from
// the firing task's own term (so a concept never serves as its own belief),
// or nil if none qualifies.
func bestBelief(cpt *concept.Concept, exclude term.Term) *task.Task {
	for _, b := range cpt.Beliefs() {
		if b.Sentence.Term.Key() != exclude.Key() {
			return b
		}
	}
	return nil
}
