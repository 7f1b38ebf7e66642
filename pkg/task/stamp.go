// Package task defines the Sentence/Task/Stamp data carried through the
// reasoning core (spec §3). The truth-value algebra itself is out of scope
// (an external collaborator); Truth here is the minimal struct the core
// needs to read an expectation value out of.
package task

import "math"

// Eternal marks a Stamp's OccurrenceTime as having no specific time (an
// eternal judgment, as opposed to an event).
const Eternal int64 = math.MaxInt64

// Serial is one evidential-base entry: a (reasonerID, monotonic counter)
// pair, as issued by SerialIssuer.Next.
type Serial struct {
	ReasonerID uint32
	Counter    uint64
}

// SerialIssuer issues Serials for one reasoner instance. It is owned by the
// reasoner (not a package global), per spec §9's "global static state"
// design note.
type SerialIssuer struct {
	reasonerID uint32
	counter    uint64
}

// NewSerialIssuer constructs an issuer scoped to reasonerID.
func NewSerialIssuer(reasonerID uint32) *SerialIssuer {
	return &SerialIssuer{reasonerID: reasonerID}
}

// Next returns the next Serial for this issuer.
func (s *SerialIssuer) Next() Serial {
	s.counter++
	return Serial{ReasonerID: s.reasonerID, Counter: s.counter}
}

// ReasonerID returns the issuer's owning reasoner identity.
func (s *SerialIssuer) ReasonerID() uint32 { return s.reasonerID }

// Counter returns the last-issued counter value, for snapshot export
// (spec §6's persisted `currentStampSerial`).
func (s *SerialIssuer) Counter() uint64 { return s.counter }

// RestoreSerialIssuer reconstructs an issuer at a known counter value, for
// snapshot import.
func RestoreSerialIssuer(reasonerID uint32, counter uint64) *SerialIssuer {
	return &SerialIssuer{reasonerID: reasonerID, counter: counter}
}

// Stamp is evidence-trail metadata: creation time, occurrence time, and a
// base of evidential serials, supporting overlap tests and merging
// (spec §3).
type Stamp struct {
	CreationTime   int64
	OccurrenceTime int64
	Evidence       []Serial
}

// NewStamp creates a Stamp with a single evidence serial.
func NewStamp(now, occurrence int64, serial Serial) Stamp {
	return Stamp{CreationTime: now, OccurrenceTime: occurrence, Evidence: []Serial{serial}}
}

// IsEternal reports whether the stamp carries no specific occurrence time.
func (s Stamp) IsEternal() bool { return s.OccurrenceTime == Eternal }

// Overlaps reports whether s and o share any evidential serial, which rules
// tables use to avoid circular inference.
func (s Stamp) Overlaps(o Stamp) bool {
	seen := make(map[Serial]bool, len(s.Evidence))
	for _, e := range s.Evidence {
		seen[e] = true
	}
	for _, e := range o.Evidence {
		if seen[e] {
			return true
		}
	}
	return false
}

// Merge unions the evidential bases of a and b into a new Stamp retimed to
// now (spec §4.5 step 2).
func Merge(a, b Stamp, now int64) Stamp {
	union := make([]Serial, 0, len(a.Evidence)+len(b.Evidence))
	seen := make(map[Serial]bool, len(a.Evidence)+len(b.Evidence))
	for _, e := range a.Evidence {
		if !seen[e] {
			seen[e] = true
			union = append(union, e)
		}
	}
	for _, e := range b.Evidence {
		if !seen[e] {
			seen[e] = true
			union = append(union, e)
		}
	}
	occ := a.OccurrenceTime
	if !a.IsEternal() && !b.IsEternal() {
		occ = now
	} else if a.IsEternal() {
		occ = b.OccurrenceTime
	}
	return Stamp{CreationTime: now, OccurrenceTime: occ, Evidence: union}
}

// Copy retimes s to now without merging any other evidence (spec §4.5 step
// 2, the "no belief present" branch).
func Copy(s Stamp, now int64) Stamp {
	evidence := make([]Serial, len(s.Evidence))
	copy(evidence, s.Evidence)
	return Stamp{CreationTime: now, OccurrenceTime: s.OccurrenceTime, Evidence: evidence}
}
