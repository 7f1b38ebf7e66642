package term

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompoundKeyIsStableAndOrderSensitive(t *testing.T) {
	bird := Atom{Name: "bird"}
	animal := Atom{Name: "animal"}

	a := Compound{Connector: "-->", Parts: []Term{bird, animal}}
	b := Compound{Connector: "-->", Parts: []Term{bird, animal}}
	c := Compound{Connector: "-->", Parts: []Term{animal, bird}}

	assert.Equal(t, a.Key(), b.Key())
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestIsInterval(t *testing.T) {
	assert.True(t, IsInterval(Interval{Duration: 5}))
	assert.False(t, IsInterval(Atom{Name: "x"}))
}

func TestHasFreeVariable(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want bool
	}{
		{"atom", Atom{Name: "bird"}, false},
		{"bare variable", Variable{Symbol: '?', Name: "1"}, true},
		{"compound without variable", Compound{Connector: "-->", Parts: []Term{Atom{Name: "bird"}, Atom{Name: "animal"}}}, false},
		{"compound with nested variable", Compound{
			Connector: "-->",
			Parts: []Term{
				Compound{Connector: "&", Parts: []Term{Atom{Name: "bird"}, Variable{Symbol: '?', Name: "x"}}},
				Atom{Name: "animal"},
			},
		}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasFreeVariable(tt.term))
		})
	}
}

func TestReplaceIntervalsStripsOnlyIntervals(t *testing.T) {
	in := Compound{Connector: "&/", Parts: []Term{
		Atom{Name: "a"},
		Interval{Duration: 3},
		Atom{Name: "b"},
	}}
	out := ReplaceIntervals(in)
	outC, ok := out.(Compound)
	require.True(t, ok)
	require.Len(t, outC.Parts, 2)
	assert.Equal(t, "a", outC.Parts[0].(Atom).Name)
	assert.Equal(t, "b", outC.Parts[1].(Atom).Name)

	// An input with no intervals is returned unchanged (same value).
	clean := Compound{Connector: "-->", Parts: []Term{Atom{Name: "a"}, Atom{Name: "b"}}}
	assert.Equal(t, clean, ReplaceIntervals(clean))
}

func TestTermLinkTemplatesDeduplicates(t *testing.T) {
	bird := Atom{Name: "bird"}
	c := Compound{Connector: "&", Parts: []Term{bird, bird, Atom{Name: "animal"}}}
	templates := TermLinkTemplates(c)
	assert.Len(t, templates, 2)
}

func TestStructuralHashIsDeterministic(t *testing.T) {
	a := Compound{Connector: "-->", Parts: []Term{Atom{Name: "bird"}, Atom{Name: "animal"}}}
	b := Compound{Connector: "-->", Parts: []Term{Atom{Name: "bird"}, Atom{Name: "animal"}}}
	assert.Equal(t, StructuralHash(a), StructuralHash(b))
}

func TestReaderParsesInheritanceAndVariables(t *testing.T) {
	r := NewReader()

	got, err := r.Parse("bird --> animal")
	require.NoError(t, err)
	assert.Equal(t, "(--> atom:bird atom:animal)", got.Key())

	got, err = r.Parse("? --> animal")
	require.NoError(t, err)
	c, ok := got.(Compound)
	require.True(t, ok)
	v, ok := c.Parts[0].(Variable)
	require.True(t, ok)
	assert.Equal(t, byte('?'), v.Symbol)

	_, err = r.Parse("")
	assert.Error(t, err)
}
