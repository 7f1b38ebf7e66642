package concept

import (
	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

// Builder is the injected ConceptBuilder collaborator of spec §6:
// Builder.New(budget, term, beliefsMax) returns nil if the term cannot host
// a concept (e.g. it still contains a free variable).
type Builder interface {
	New(b budget.Value, t term.Term, beliefsMax int) *Concept
}

// DefaultBuilder refuses terms that still contain a free variable
// (spec §4.3 step 5, "BuilderRefused"); everything else is buildable.
type DefaultBuilder struct{}

func (DefaultBuilder) New(b budget.Value, t term.Term, beliefsMax int) *Concept {
	if term.HasFreeVariable(t) {
		return nil
	}
	return New(b, t, beliefsMax)
}
