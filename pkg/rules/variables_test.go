package rules

import (
	"testing"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
	"github.com/stretchr/testify/assert"
)

func TestUnifyOnlyHandlesQueryVariableKind(t *testing.T) {
	u := Unifier{}
	assert.False(t, u.Unify('$', term.Atom{Name: "a"}, term.Atom{Name: "a"}))
	assert.True(t, u.Unify('?', term.Atom{Name: "a"}, term.Atom{Name: "a"}))
}

func TestUnifyMatchesQueryVariableAgainstAnything(t *testing.T) {
	u := Unifier{}
	v := term.Variable{Symbol: '?', Name: "1"}
	assert.True(t, u.Unify('?', term.Atom{Name: "bird"}, v))
	assert.True(t, u.Unify('?', v, term.Atom{Name: "bird"}))
}

func TestUnifyRequiresMatchingAtoms(t *testing.T) {
	u := Unifier{}
	assert.True(t, u.Unify('?', term.Atom{Name: "bird"}, term.Atom{Name: "bird"}))
	assert.False(t, u.Unify('?', term.Atom{Name: "bird"}, term.Atom{Name: "animal"}))
}

func TestUnifyRecursesIntoCompoundParts(t *testing.T) {
	u := Unifier{}
	a := term.Compound{Connector: "-->", Parts: []term.Term{term.Atom{Name: "bird"}, term.Atom{Name: "animal"}}}
	withVar := term.Compound{Connector: "-->", Parts: []term.Term{term.Atom{Name: "bird"}, term.Variable{Symbol: '?', Name: "1"}}}
	mismatch := term.Compound{Connector: "-->", Parts: []term.Term{term.Atom{Name: "rock"}, term.Atom{Name: "mineral"}}}

	assert.True(t, u.Unify('?', a, withVar))
	assert.False(t, u.Unify('?', a, mismatch))
}

func TestUnifyRejectsMismatchedConnectorOrArity(t *testing.T) {
	u := Unifier{}
	a := term.Compound{Connector: "-->", Parts: []term.Term{term.Atom{Name: "bird"}, term.Atom{Name: "animal"}}}
	otherConnector := term.Compound{Connector: "<->", Parts: []term.Term{term.Atom{Name: "bird"}, term.Atom{Name: "animal"}}}
	otherArity := term.Compound{Connector: "-->", Parts: []term.Term{term.Atom{Name: "bird"}}}

	assert.False(t, u.Unify('?', a, otherConnector))
	assert.False(t, u.Unify('?', a, otherArity))
}

func TestUnifyRejectsMismatchedKind(t *testing.T) {
	u := Unifier{}
	assert.False(t, u.Unify('?', term.Atom{Name: "bird"}, term.Compound{Connector: "-->", Parts: []term.Term{term.Atom{Name: "a"}, term.Atom{Name: "b"}}}))
}
