package reason

import (
	"github.com/khryptorgraphics/nonaxiomatic/pkg/concept"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

// Context carries everything a derivation needs to know about the premise
// currently being executed (spec §4.5): the firing concept, the belief
// concept being matched (virtual premises have none), the two sentences
// involved, and the merged/copied stamp they derive under.
type Context struct {
	Memory *Memory
	Now    int64

	TaskConcept  *concept.Concept
	BeliefConcept *concept.Concept

	Task    *task.Task
	Belief  *task.Task // nil for a virtual premise
	Subterm term.Term  // the term-link template this premise fired on
	Stamp   task.Stamp
	Temporal bool
}

// IsVirtual reports whether this premise has no matching belief (spec §4.4
// step 4, "virtual premises").
func (c *Context) IsVirtual() bool { return c.Belief == nil }

// RuleTables is the external rule-table collaborator (spec §6): given a
// fully-populated Context it derives zero or more new tasks and submits them
// back through ctx.Memory.AddTask. It is intentionally opaque to the core —
// FireBelief.Execute invokes it once for every premise it runs, virtual or
// not, unless the evidential-overlap guard or a solved question returns first.
type RuleTables interface {
	Reason(ctx *Context)
}

// LocalRules is the external collaborator responsible for matching a
// question against a candidate judgment belief and, on a sufficiently good
// match, reporting a solution (spec §6's "trySolution(belief, task, context,
// isInput)"). It reports whether belief solves task.
type LocalRules interface {
	TrySolution(belief *task.Task, question *task.Task, ctx *Context, isInput bool) bool
}

// Variables is the external free-variable unifier (spec §6): unify attempts
// to bind t2's free variables (of the given kind symbol, e.g. '?' or '#') so
// that it structurally matches t1, reporting success.
type Variables interface {
	Unify(varKind byte, t1, t2 term.Term) bool
}
