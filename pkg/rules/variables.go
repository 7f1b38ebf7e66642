package rules

import "github.com/khryptorgraphics/nonaxiomatic/pkg/term"

// Unifier is the default Variables implementation. It only understands
// structural unification against query variables ('?'): a query variable on
// either side matches anything in the corresponding position of the other; every other
// position must be an exact structural match. Independent ('$') and
// dependent ('#') variable binding is left to a fuller rule-table
// implementation — this one reports no match for those kinds.
type Unifier struct{}

func (Unifier) Unify(varKind byte, t1, t2 term.Term) bool {
	if varKind != '?' {
		return false
	}
	return unify(t1, t2)
}

func unify(t1, t2 term.Term) bool {
	if v, ok := t2.(term.Variable); ok && v.Symbol == '?' {
		return true
	}
	if v, ok := t1.(term.Variable); ok && v.Symbol == '?' {
		return true
	}
	if t1.Kind() != t2.Kind() {
		return false
	}
	c1, ok1 := t1.(term.Compound)
	c2, ok2 := t2.(term.Compound)
	if ok1 != ok2 {
		return false
	}
	if !ok1 {
		return term.Equal(t1, t2)
	}
	if c1.Connector != c2.Connector || len(c1.Parts) != len(c2.Parts) {
		return false
	}
	for i := range c1.Parts {
		if !unify(c1.Parts[i], c2.Parts[i]) {
			return false
		}
	}
	return true
}
