// Package rules provides the default external collaborators the reasoning
// core depends on but never implements itself: the rule table, the local
// (question/goal matching) rules, and the free-variable unifier. The core
// only ever calls these through the reason.RuleTables / reason.LocalRules /
// reason.Variables interfaces; this package supplies a working but narrow
// implementation — structural equality and a single deduction-shaped
// syllogism — sufficient to drive the inference cycle end to end without
// pretending to be a full NAL rule set.
package rules

import (
	"log/slog"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/reason"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

// Engine is the default RuleTables implementation. Every derivation is a
// pure function of the Context it receives and its injected Variables
// unifier; it holds no other state.
type Engine struct {
	logger *slog.Logger
	vars   reason.Variables
}

// NewEngine constructs an Engine. A nil logger defaults to slog.Default();
// a nil vars defaults to Unifier{}.
func NewEngine(logger *slog.Logger, vars reason.Variables) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if vars == nil {
		vars = Unifier{}
	}
	return &Engine{logger: logger, vars: vars}
}

// Reason is the RuleTables entry point (spec §4.5's "reason(task, belief?,
// term, context, temporal)"). For a virtual premise (no belief) there is
// nothing to syllogize against, so Reason only handles a task and a belief
// that are inheritance statements linked by a middle term (the predicate of
// one is the subject of the other) — the one deduction shape this engine
// knows:
//
//	task:   S --> M
//	belief: M --> P
//	derived: S --> P, truth by deduction
//
// Anything else is silently a no-op: an unrecognized premise shape derives
// nothing, which is a valid (if unproductive) outcome of firing.
func (e *Engine) Reason(ctx *reason.Context) {
	if ctx.IsVirtual() {
		return
	}
	taskStmt, ok1 := ctx.Task.Sentence.Term.(term.Compound)
	beliefStmt, ok2 := ctx.Belief.Sentence.Term.(term.Compound)
	if !ok1 || !ok2 || taskStmt.Connector != "-->" || beliefStmt.Connector != "-->" {
		return
	}
	if len(taskStmt.Parts) != 2 || len(beliefStmt.Parts) != 2 {
		return
	}

	taskSubj, taskPred := taskStmt.Parts[0], taskStmt.Parts[1]
	belSubj, belPred := beliefStmt.Parts[0], beliefStmt.Parts[1]

	if term.Equal(taskPred, belSubj) || e.vars.Unify('?', taskPred, belSubj) {
		e.deduce(ctx, taskSubj, belPred)
		return
	}
	if term.Equal(belPred, taskSubj) || e.vars.Unify('?', belPred, taskSubj) {
		e.deduce(ctx, belSubj, taskPred)
		return
	}
}

func (e *Engine) deduce(ctx *reason.Context, subject, predicate term.Term) {
	derivedTerm := term.Compound{Connector: "-->", Parts: []term.Term{subject, predicate}}
	if term.HasFreeVariable(derivedTerm) {
		return
	}

	tt := ctx.Task.Sentence.Truth
	bt := ctx.Belief.Sentence.Truth
	if tt == nil || bt == nil {
		e.logger.Debug("skipping deduction: non-judgment premise reached Reason", "term", derivedTerm.String())
		return
	}
	derivedTruth := task.Truth{
		Frequency:  tt.Frequency * bt.Frequency,
		Confidence: tt.Confidence * bt.Confidence * (tt.Frequency * bt.Frequency),
	}

	stamp := ctx.Stamp
	derivedSentence := task.Sentence{
		Term:        derivedTerm,
		Punctuation: task.Judgment,
		Truth:       &derivedTruth,
		Stamp:       stamp,
	}

	derivedBudget := ctx.TaskConcept.Budget()
	derivedBudget.Priority *= derivedTruth.Expectation()

	ctx.Memory.AddTask(task.New(derivedSentence, derivedBudget, false), true)
}
