package reason

import "fmt"

// Params holds the reasoner's configuration parameters (spec §6 table).
// All durations are expressed in cycles, not wall-clock time.
type Params struct {
	ConceptBagSize          int
	TaskLinkBagSize         int
	ConceptBeliefsMax       int
	ConceptForgetDurations  int64
	TaskLinkForgetDurations int64
	NoveltyHorizon          int64
	SequenceBagAttempts     int
	TasksMaxFired           int
	PremisesMaxFired        int
	Duration                int64
	Volume                  int
	QualityRescaled         float64

	DefaultFeedbackPriority   float64
	DefaultFeedbackDurability float64

	// OverflowCacheSize is an implementation-level knob for the optional
	// overflow cache's own capacity policy (spec §4.3: "has its own
	// capacity policy"); 0 disables the cache entirely. Not one of the
	// named §6 parameters since the spec leaves that cache's policy
	// unspecified beyond "typically LRU, capacity >= store capacity".
	OverflowCacheSize int
}

// DefaultParams returns a Params populated with the values used across the
// spec's worked examples (spec §8): DURATION=5, NOVELTY_HORIZON=10,
// TASKS_MAX_FIRED=1, PREMISES_MAX_FIRED=8, CONCEPT_BAG_SIZE=32,
// CONCEPT_BELIEFS_MAX=7.
func DefaultParams() Params {
	return Params{
		ConceptBagSize:            32,
		TaskLinkBagSize:           64,
		ConceptBeliefsMax:         7,
		ConceptForgetDurations:    5,
		TaskLinkForgetDurations:   5,
		NoveltyHorizon:            10,
		SequenceBagAttempts:       4,
		TasksMaxFired:             1,
		PremisesMaxFired:          8,
		Duration:                  5,
		Volume:                    50,
		QualityRescaled:           0.1,
		DefaultFeedbackPriority:   0.8,
		DefaultFeedbackDurability: 0.5,
		OverflowCacheSize:         64,
	}
}

// Validate enforces the "ParameterOutOfRange at construction is fatal" rule
// of spec §7.
func (p Params) Validate() error {
	if p.ConceptBagSize <= 0 {
		return fmt.Errorf("reason: CONCEPT_BAG_SIZE must be > 0, got %d", p.ConceptBagSize)
	}
	if p.TaskLinkBagSize <= 0 {
		return fmt.Errorf("reason: TASK_LINK_BAG_SIZE must be > 0, got %d", p.TaskLinkBagSize)
	}
	if p.ConceptBeliefsMax <= 0 {
		return fmt.Errorf("reason: CONCEPT_BELIEFS_MAX must be > 0, got %d", p.ConceptBeliefsMax)
	}
	if p.TasksMaxFired < 0 || p.PremisesMaxFired < 0 || p.SequenceBagAttempts < 0 {
		return fmt.Errorf("reason: per-cycle fired counts must be >= 0")
	}
	if p.Volume < 0 || p.Volume > 100 {
		return fmt.Errorf("reason: VOLUME must be in [0,100], got %d", p.Volume)
	}
	if p.QualityRescaled < 0 || p.QualityRescaled > 1 {
		return fmt.Errorf("reason: QUALITY_RESCALED must be in [0,1], got %f", p.QualityRescaled)
	}
	return nil
}
