// Package term provides the minimal, concrete term substrate the reasoning
// core needs in order to conceptualize, hash, and decompose symbolic
// expressions. The actual NARS term language (copulas, compound-term
// grammar, the parser/AST) is out of scope for this repository; this package
// supplies just enough structure — atoms, compounds, variables, and
// intervals — for pkg/concept and pkg/reason to operate on.
package term

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
)

// Kind distinguishes the handful of term shapes the core cares about.
type Kind int

const (
	KindAtom Kind = iota
	KindCompound
	KindVariable
	KindInterval
)

// Term is a structurally hashable, equality-comparable symbolic expression.
// Compound terms expose an ordered mapping from component term to a
// term-link template (here simply the component term itself, since this
// package does not model term-link weighting beyond identity).
type Term interface {
	Kind() Kind
	// Key returns a stable, comparable string usable as a map key.
	Key() string
	// Components returns the ordered list of component terms for a compound
	// term; nil for atoms, variables, and intervals.
	Components() []Term
	String() string
}

// Atom is a primitive named term, e.g. "bird".
type Atom struct {
	Name string
}

func (a Atom) Kind() Kind        { return KindAtom }
func (a Atom) Key() string       { return "atom:" + a.Name }
func (a Atom) Components() []Term { return nil }
func (a Atom) String() string    { return a.Name }

// Variable is a query or independent variable, e.g. "?1" or "$x".
type Variable struct {
	Symbol byte // '?', '$', or '#'
	Name   string
}

func (v Variable) Kind() Kind        { return KindVariable }
func (v Variable) Key() string       { return fmt.Sprintf("var:%c%s", v.Symbol, v.Name) }
func (v Variable) Components() []Term { return nil }
func (v Variable) String() string    { return fmt.Sprintf("%c%s", v.Symbol, v.Name) }

// Interval is a positional marker between temporally ordered terms. It is
// never conceptual (spec §4.3 step 1: conceptualize rejects intervals).
type Interval struct {
	Duration int64
}

func (i Interval) Kind() Kind        { return KindInterval }
func (i Interval) Key() string       { return fmt.Sprintf("interval:%d", i.Duration) }
func (i Interval) Components() []Term { return nil }
func (i Interval) String() string    { return fmt.Sprintf("+%d", i.Duration) }

// Compound is a structured term built from a copula-like connector and an
// ordered list of component terms, e.g. Compound{Connector:"-->", Parts:
// [bird, animal]} for "bird --> animal".
type Compound struct {
	Connector string
	Parts     []Term
}

func (c Compound) Kind() Kind { return KindCompound }

func (c Compound) Key() string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(c.Connector)
	for _, p := range c.Parts {
		b.WriteString(" ")
		b.WriteString(p.Key())
	}
	b.WriteString(")")
	return b.String()
}

func (c Compound) Components() []Term { return c.Parts }

func (c Compound) String() string {
	if c.Connector == "-->" && len(c.Parts) == 2 {
		return c.Parts[0].String() + " --> " + c.Parts[1].String()
	}
	parts := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		parts[i] = p.String()
	}
	return "(" + c.Connector + " " + strings.Join(parts, " ") + ")"
}

// IsInterval reports whether t is an Interval term. Conceptualize rejects
// these outright: intervals are positional, not conceptual (spec §4.3).
func IsInterval(t Term) bool {
	_, ok := t.(Interval)
	return ok
}

// HasFreeVariable reports whether t contains any Variable component,
// recursively. A ConceptBuilder may refuse to build a concept for such a
// term (spec §4.3 step 5, "BuilderRefused").
func HasFreeVariable(t Term) bool {
	if _, ok := t.(Variable); ok {
		return true
	}
	for _, c := range t.Components() {
		if HasFreeVariable(c) {
			return true
		}
	}
	return false
}

// ReplaceIntervals returns a canonical form of t with any Interval
// components stripped out of compound term lists, per spec §4.3 step 2.
// Atoms, variables, and bare intervals are returned unchanged (a bare
// interval is rejected by Conceptualize before normalization runs).
func ReplaceIntervals(t Term) Term {
	c, ok := t.(Compound)
	if !ok {
		return t
	}
	stripped := make([]Term, 0, len(c.Parts))
	changed := false
	for _, p := range c.Parts {
		if IsInterval(p) {
			changed = true
			continue
		}
		np := ReplaceIntervals(p)
		if np != p {
			changed = true
		}
		stripped = append(stripped, np)
	}
	if !changed {
		return t
	}
	return Compound{Connector: c.Connector, Parts: stripped}
}

// TermLinkTemplates returns the ordered, deduplicated list of a compound
// term's direct components, the canonical decomposition used by §4.4 to
// enumerate belief concepts during firing.
func TermLinkTemplates(t Term) []Term {
	comps := t.Components()
	if len(comps) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(comps))
	out := make([]Term, 0, len(comps))
	for _, c := range comps {
		k := c.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out
}

// StructuralHash returns a deterministic 64-bit hash of t's Key(), used by
// pkg/cluster for rendezvous-hash shard assignment across reasoner peers.
func StructuralHash(t Term) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.Key()))
	return h.Sum64()
}

// Equal reports structural equality between two terms via their Key().
func Equal(a, b Term) bool { return a.Key() == b.Key() }

// SortedKeys returns the Key() of each term in ts, sorted; a helper for
// deterministic iteration/snapshot output.
func SortedKeys(ts []Term) []string {
	keys := make([]string, len(ts))
	for i, t := range ts {
		keys[i] = t.Key()
	}
	sort.Strings(keys)
	return keys
}
