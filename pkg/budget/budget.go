// Package budget implements the BudgetValue algebra and forgetting math that
// governs attention in the reasoning core: priority, durability, quality,
// and the decay applied on every reinsertion into a bounded priority
// container (spec §4.1).
package budget

import "math"

// ActivationMode selects the combinator Activate uses to merge an incoming
// budget into a target budget. The spec (§4.1) requires at least three
// distinct, deterministic modes.
type ActivationMode int

const (
	// TaskLinkActivation is an or-like combination: the result tracks
	// whichever operand is currently more salient, plus a small residual
	// contribution from the other, so a hot incoming signal can wake a cold
	// concept without being fully averaged down by it.
	TaskLinkActivation ActivationMode = iota
	// BeliefActivation favours durability: used when a belief judgment
	// reinforces a concept, where persistence of attention matters more
	// than an immediate priority spike.
	BeliefActivation
	// QuestionActivation favours priority: used when conceptualizing on
	// behalf of a question or goal, where getting attended to soon matters
	// more than sticking around.
	QuestionActivation
)

// Value is the BudgetValue triple of spec §3: priority, durability, and
// quality, each in [0,1], plus the last cycle time forgetting was applied.
type Value struct {
	Priority       float64
	Durability     float64
	Quality        float64
	LastForgetTime int64
}

// New constructs a Value, clamping each component into [0,1].
func New(priority, durability, quality float64, now int64) Value {
	return Value{
		Priority:       clamp01(priority),
		Durability:     clamp01(durability),
		Quality:        clamp01(quality),
		LastForgetTime: now,
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// Summary returns the scalar used for comparisons and noise-floor
// thresholds: a quality/durability/priority-weighted mean, weighted toward
// priority since that is what attention selection actually orders by.
func (v Value) Summary() float64 {
	return v.Priority*0.6 + v.Durability*0.3 + v.Quality*0.1
}

// AboveThreshold reports whether v's Summary clears the given noise level.
func (v Value) AboveThreshold(noiseLevel float64) bool {
	return v.Summary() > noiseLevel
}

// Activate merges incoming into target under the given mode, returning the
// merged Value. The combined priority is always >= max(target, incoming)'s
// priority (bounded to 1), per spec §4.1.
func Activate(target, incoming Value, mode ActivationMode) Value {
	out := target
	switch mode {
	case TaskLinkActivation:
		hi, lo := target.Priority, incoming.Priority
		if lo > hi {
			hi, lo = lo, hi
		}
		out.Priority = clamp01(hi + (1-hi)*lo*0.5)
		out.Durability = strongerOf(target.Durability, incoming.Durability)
	case BeliefActivation:
		maxP := math.Max(target.Priority, incoming.Priority)
		avgP := (target.Priority + incoming.Priority) / 2
		out.Priority = clamp01(math.Max(maxP, avgP))
		out.Durability = clamp01(target.Durability*0.7 + incoming.Durability*0.3)
	case QuestionActivation:
		hi, lo := target.Priority, incoming.Priority
		if lo > hi {
			hi, lo = lo, hi
		}
		out.Priority = clamp01(hi + (1-hi)*lo*0.8)
		out.Durability = clamp01(incoming.Durability)
	default:
		out.Priority = clamp01(math.Max(target.Priority, incoming.Priority))
	}
	// Quality is unchanged by activation (spec §4.1).
	return out
}

// strongerOf takes durability toward whichever operand is larger, per spec
// §4.1 ("durability taken toward the stronger operand").
func strongerOf(a, b float64) float64 {
	if b > a {
		return a + (b-a)*0.5
	}
	return a
}

// ApplyForgetting multiplicatively decays priority toward
// quality*relativeThreshold by a factor depending on durability and the
// cycle delta since LastForgetTime (spec §4.1). The decay is monotonic:
// priority never increases, and never crosses below the quality floor.
func ApplyForgetting(v Value, now int64, forgetCycles int64, relativeThreshold float64) Value {
	floor := v.Quality * relativeThreshold
	if v.Priority <= floor {
		v.LastForgetTime = now
		return v
	}
	delta := now - v.LastForgetTime
	if delta <= 0 {
		v.LastForgetTime = now
		return v
	}
	if forgetCycles <= 0 {
		forgetCycles = 1
	}
	// The per-period decay rate is 1 - 0.9*durability: durability 0 leaves
	// priority unchanged, durability 1 decays fastest (rate 0.1). The
	// exponent scales decay by how many forgetCycles-worth of time elapsed.
	exponent := float64(delta) / float64(forgetCycles)
	decayRate := 1 - v.Durability*0.9 // in [0.1, 1]
	factor := math.Pow(decayRate, exponent)
	v.Priority = floor + (v.Priority-floor)*factor
	if v.Priority < floor {
		v.Priority = floor
	}
	if v.Priority > 1 {
		v.Priority = 1
	}
	v.LastForgetTime = now
	return v
}
