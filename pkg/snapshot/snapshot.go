// Package snapshot implements the whole-memory persistence contract of
// spec §6: the concept store (with beliefs), the overflow cache, the input
// and cycling task queues, the evidence-serial counter, and the reasoner
// identity, serialized as a single opaque blob. The event bus is never
// persisted; it is re-created fresh on import.
package snapshot

import (
	"fmt"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/budget"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/concept"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/reason"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/task"
	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

// SerialRecord is one evidential-base entry.
type SerialRecord struct {
	ReasonerID uint32 `json:"reasoner_id"`
	Counter    uint64 `json:"counter"`
}

// BeliefRecord is a single judgment belief attached to a concept.
type BeliefRecord struct {
	Term           string         `json:"term"`
	Frequency      *float64       `json:"frequency,omitempty"`
	Confidence     *float64       `json:"confidence,omitempty"`
	CreationTime   int64          `json:"creation_time"`
	OccurrenceTime int64          `json:"occurrence_time"`
	Evidence       []SerialRecord `json:"evidence"`
	Priority       float64        `json:"priority"`
	Durability     float64        `json:"durability"`
	Quality        float64        `json:"quality"`
}

// ConceptRecord is one concept's budget and belief list. Term-link
// templates are not persisted: Concept.New recomputes them deterministically
// from the term itself.
type ConceptRecord struct {
	Term           string         `json:"term"`
	Priority       float64        `json:"priority"`
	Durability     float64        `json:"durability"`
	Quality        float64        `json:"quality"`
	LastForgetTime int64          `json:"last_forget_time"`
	LastFireTime   int64          `json:"last_fire_time"`
	Beliefs        []BeliefRecord `json:"beliefs"`
}

// TaskRecord is one pending task in the input FIFO or the cycling bag.
type TaskRecord struct {
	Term        string         `json:"term"`
	Punctuation int            `json:"punctuation"`
	Frequency   *float64       `json:"frequency,omitempty"`
	Confidence  *float64       `json:"confidence,omitempty"`
	Occurrence  int64          `json:"occurrence_time"`
	Evidence    []SerialRecord `json:"evidence"`
	Priority    float64        `json:"priority"`
	Durability  float64        `json:"durability"`
	Quality     float64        `json:"quality"`
	IsInput     bool           `json:"is_input"`
}

// Snapshot is the whole-memory blob of spec §6. OperatorRegistry is carried
// as an opaque placeholder: the operator registry itself is an out-of-scope
// external collaborator (spec §1), so the core has nothing concrete to put
// there yet.
type Snapshot struct {
	NarID              string          `json:"nar_id"`
	LogicalTime        int64           `json:"logical_time"`
	CurrentStampSerial SerialRecord    `json:"current_stamp_serial"`
	Concepts           []ConceptRecord `json:"concepts"`
	Overflow           []ConceptRecord `json:"overflow"`
	InputTasks         []TaskRecord    `json:"input_tasks"`
	CyclingTasks       []TaskRecord    `json:"cycling_tasks"`
	OperatorRegistry   []byte          `json:"operator_registry,omitempty"`
}

var reader = term.NewReader()

// Build captures the full state of mem into a Snapshot, tagged with narID.
func Build(mem *reason.Memory, narID string) *Snapshot {
	store := mem.Store()

	snap := &Snapshot{
		NarID:       narID,
		LogicalTime: mem.Clock().Now(),
		CurrentStampSerial: SerialRecord{
			ReasonerID: mem.Serial().ReasonerID(),
			Counter:    mem.Serial().Counter(),
		},
	}

	for _, c := range store.All() {
		snap.Concepts = append(snap.Concepts, conceptToRecord(c))
	}
	for _, c := range store.OverflowAll() {
		snap.Overflow = append(snap.Overflow, conceptToRecord(c))
	}
	for _, t := range mem.PendingInputTasks() {
		snap.InputTasks = append(snap.InputTasks, taskToRecord(t))
	}
	for _, t := range mem.PendingCyclingTasks() {
		snap.CyclingTasks = append(snap.CyclingTasks, taskToRecord(t))
	}

	return snap
}

func conceptToRecord(c *concept.Concept) ConceptRecord {
	b := c.Budget()
	rec := ConceptRecord{
		Term:           c.Term().String(),
		Priority:       b.Priority,
		Durability:     b.Durability,
		Quality:        b.Quality,
		LastForgetTime: b.LastForgetTime,
		LastFireTime:   c.LastFireTime(),
	}
	for _, belief := range c.Beliefs() {
		rec.Beliefs = append(rec.Beliefs, taskToRecord(belief).toBelief())
	}
	return rec
}

func taskToRecord(t *task.Task) TaskRecord {
	s := t.Sentence
	b := t.Budget()
	rec := TaskRecord{
		Term:        s.Term.String(),
		Punctuation: int(s.Punctuation),
		Occurrence:  s.Stamp.OccurrenceTime,
		Priority:    b.Priority,
		Durability:  b.Durability,
		Quality:     b.Quality,
		IsInput:     t.IsInput,
	}
	if s.Truth != nil {
		freq, conf := s.Truth.Frequency, s.Truth.Confidence
		rec.Frequency, rec.Confidence = &freq, &conf
	}
	for _, e := range s.Stamp.Evidence {
		rec.Evidence = append(rec.Evidence, SerialRecord{ReasonerID: e.ReasonerID, Counter: e.Counter})
	}
	return rec
}

func (r TaskRecord) toBelief() BeliefRecord {
	return BeliefRecord{
		Term:           r.Term,
		Frequency:      r.Frequency,
		Confidence:     r.Confidence,
		CreationTime:   r.Occurrence,
		OccurrenceTime: r.Occurrence,
		Evidence:       r.Evidence,
		Priority:       r.Priority,
		Durability:     r.Durability,
		Quality:        r.Quality,
	}
}

// Apply repopulates mem, which the caller has already built with
// reason.NewMemory, from snap. Apply only repopulates the concept store,
// the overflow cache and the task queues, capping each restored belief
// list at mem's ConceptBeliefsMax.
func Apply(snap *Snapshot, mem *reason.Memory) error {
	beliefsMax := mem.Params().ConceptBeliefsMax
	now := mem.Clock().Now()

	for _, rec := range snap.Concepts {
		c, err := recordToConcept(rec, beliefsMax, now)
		if err != nil {
			return fmt.Errorf("snapshot: restoring concept %q: %w", rec.Term, err)
		}
		mem.Store().Restore(c)
	}
	for _, rec := range snap.Overflow {
		c, err := recordToConcept(rec, beliefsMax, now)
		if err != nil {
			return fmt.Errorf("snapshot: restoring overflow concept %q: %w", rec.Term, err)
		}
		mem.Store().RestoreOverflow(c)
	}
	for _, rec := range snap.InputTasks {
		t, err := recordToTask(rec)
		if err != nil {
			return fmt.Errorf("snapshot: restoring input task %q: %w", rec.Term, err)
		}
		mem.RestoreInputTask(t)
	}
	for _, rec := range snap.CyclingTasks {
		t, err := recordToTask(rec)
		if err != nil {
			return fmt.Errorf("snapshot: restoring cycling task %q: %w", rec.Term, err)
		}
		mem.RestoreCyclingTask(t)
	}

	return nil
}

func recordToConcept(rec ConceptRecord, beliefsMax int, now int64) (*concept.Concept, error) {
	t, err := reader.Parse(rec.Term)
	if err != nil {
		return nil, err
	}

	b := budget.Value{
		Priority:       rec.Priority,
		Durability:     rec.Durability,
		Quality:        rec.Quality,
		LastForgetTime: rec.LastForgetTime,
	}
	c := concept.New(b, t, beliefsMax)
	c.SetLastFireTime(rec.LastFireTime)

	for _, belief := range rec.Beliefs {
		bt, err := beliefToTask(belief)
		if err != nil {
			return nil, err
		}
		c.AddBelief(bt, now)
	}

	return c, nil
}

func beliefToTask(rec BeliefRecord) (*task.Task, error) {
	t, err := reader.Parse(rec.Term)
	if err != nil {
		return nil, err
	}

	var truth *task.Truth
	if rec.Frequency != nil && rec.Confidence != nil {
		truth = &task.Truth{Frequency: *rec.Frequency, Confidence: *rec.Confidence}
	}

	stamp := task.Stamp{
		CreationTime:   rec.CreationTime,
		OccurrenceTime: rec.OccurrenceTime,
		Evidence:       recordsToSerials(rec.Evidence),
	}

	b := budget.Value{Priority: rec.Priority, Durability: rec.Durability, Quality: rec.Quality}
	return task.New(task.Sentence{Term: t, Punctuation: task.Judgment, Truth: truth, Stamp: stamp}, b, false), nil
}

func recordToTask(rec TaskRecord) (*task.Task, error) {
	t, err := reader.Parse(rec.Term)
	if err != nil {
		return nil, err
	}

	var truth *task.Truth
	if rec.Frequency != nil && rec.Confidence != nil {
		truth = &task.Truth{Frequency: *rec.Frequency, Confidence: *rec.Confidence}
	}

	stamp := task.Stamp{OccurrenceTime: rec.Occurrence, Evidence: recordsToSerials(rec.Evidence)}
	b := budget.Value{Priority: rec.Priority, Durability: rec.Durability, Quality: rec.Quality}
	sentence := task.Sentence{Term: t, Punctuation: task.Punctuation(rec.Punctuation), Truth: truth, Stamp: stamp}
	return task.New(sentence, b, rec.IsInput), nil
}

func recordsToSerials(recs []SerialRecord) []task.Serial {
	out := make([]task.Serial, 0, len(recs))
	for _, r := range recs {
		out = append(out, task.Serial{ReasonerID: r.ReasonerID, Counter: r.Counter})
	}
	return out
}
