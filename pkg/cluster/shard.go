package cluster

import (
	"hash/fnv"
	"sync"

	"github.com/dgryski/go-rendezvous"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/term"
)

// ShardRing answers "which peer owns this term's concept" by rendezvous
// hashing on the term's structural key, so every peer can compute the same
// answer without coordination (spec §5's "implementers may shard it across
// workers", realized as an actual deployment option).
type ShardRing struct {
	mu   sync.RWMutex
	self string
	r    *rendezvous.Rendezvous
}

// NewShardRing constructs a ring containing self and peers.
func NewShardRing(self string, peers []string) *ShardRing {
	nodes := append([]string{self}, peers...)
	return &ShardRing{self: self, r: rendezvous.New(nodes, hashNode)}
}

func hashNode(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// OwnerOf returns the peer ID that owns t's concept under the current
// membership.
func (s *ShardRing) OwnerOf(t term.Term) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r.Lookup(t.Key())
}

// OwnsLocally reports whether self owns t's concept.
func (s *ShardRing) OwnsLocally(t term.Term) bool {
	return s.OwnerOf(t) == s.self
}

// AddNode incorporates a newly joined peer into the ring.
func (s *ShardRing) AddNode(peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Add(peerID)
}

// RemoveNode drops a departed peer from the ring.
func (s *ShardRing) RemoveNode(peerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r.Remove(peerID)
}
