package task

import (
	"testing"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func judgment(now int64, occurrence int64) Sentence {
	return Sentence{
		Term:        term.Atom{Name: "bird"},
		Punctuation: Judgment,
		Truth:       &Truth{Frequency: 0.9, Confidence: 0.8},
		Stamp:       Stamp{CreationTime: now, OccurrenceTime: occurrence, Evidence: []Serial{{ReasonerID: 1, Counter: 1}}},
	}
}

func TestNewTaskHasUniqueID(t *testing.T) {
	b := budget.New(0.5, 0.5, 0.5, 0)
	t1 := New(judgment(0, Eternal), b, false)
	t2 := New(judgment(0, Eternal), b, false)
	assert.NotEqual(t, t1.Name(), t2.Name())
}

func TestIsJudgment(t *testing.T) {
	b := budget.New(0.5, 0.5, 0.5, 0)
	j := New(judgment(0, Eternal), b, false)
	assert.True(t, j.IsJudgment())

	q := New(Sentence{Term: term.Atom{Name: "bird"}, Punctuation: Question}, b, true)
	assert.False(t, q.IsJudgment())
}

func TestRankFavorsConfidenceAndRecency(t *testing.T) {
	b := budget.New(0.5, 0.5, 0.5, 0)
	eternal := New(Sentence{
		Term: term.Atom{Name: "bird"}, Punctuation: Judgment,
		Truth: &Truth{Frequency: 0.9, Confidence: 0.9},
		Stamp: Stamp{OccurrenceTime: Eternal},
	}, b, false)
	recentEvent := New(judgment(0, 100), b, false)
	oldEvent := New(judgment(0, 0), b, false)

	assert.Greater(t, Rank(recentEvent, 100), Rank(oldEvent, 100))
	assert.Greater(t, Rank(eternal, 100), 0.0)
}

func TestSerialIssuerIncrementsCounter(t *testing.T) {
	issuer := NewSerialIssuer(7)
	s1 := issuer.Next()
	s2 := issuer.Next()
	assert.Equal(t, uint32(7), s1.ReasonerID)
	assert.Equal(t, uint64(1), s1.Counter)
	assert.Equal(t, uint64(2), s2.Counter)
}

func TestStampOverlapsSharesEvidence(t *testing.T) {
	s := Serial{ReasonerID: 1, Counter: 1}
	a := Stamp{Evidence: []Serial{s}}
	b := Stamp{Evidence: []Serial{s}}
	c := Stamp{Evidence: []Serial{{ReasonerID: 2, Counter: 1}}}

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
}

func TestMergeUnionsEvidenceAndEternalRules(t *testing.T) {
	a := Stamp{OccurrenceTime: Eternal, Evidence: []Serial{{ReasonerID: 1, Counter: 1}}}
	b := Stamp{OccurrenceTime: 50, Evidence: []Serial{{ReasonerID: 1, Counter: 2}}}

	merged := Merge(a, b, 100)
	require.Len(t, merged.Evidence, 2)
	assert.Equal(t, int64(50), merged.OccurrenceTime)
	assert.Equal(t, int64(100), merged.CreationTime)

	bothEvents := Merge(Stamp{OccurrenceTime: 10, Evidence: []Serial{{ReasonerID: 1, Counter: 3}}}, b, 100)
	assert.Equal(t, int64(100), bothEvents.OccurrenceTime)
}

func TestCopyRetimesWithoutMerging(t *testing.T) {
	s := Stamp{CreationTime: 0, OccurrenceTime: 5, Evidence: []Serial{{ReasonerID: 1, Counter: 1}}}
	out := Copy(s, 50)
	assert.Equal(t, int64(50), out.CreationTime)
	assert.Equal(t, int64(5), out.OccurrenceTime)
	assert.Equal(t, s.Evidence, out.Evidence)
}
