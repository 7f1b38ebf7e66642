package cluster

import "sync"

// Coordinator runs a bully-style election to decide which cluster member is
// responsible for triggering periodic snapshot export (spec §6): the
// highest-sorting peer ID among known, live members wins, and every member
// can compute the same answer independently without an explicit election
// protocol or message round-trip.
type Coordinator struct {
	mu    sync.RWMutex
	self  string
	peers map[string]struct{}
}

// NewCoordinator starts a Coordinator that knows only about self.
func NewCoordinator(self string) *Coordinator {
	return &Coordinator{self: self, peers: make(map[string]struct{})}
}

// AddPeer incorporates a newly joined peer into the election set.
func (c *Coordinator) AddPeer(peerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peers[peerID] = struct{}{}
}

// RemovePeer drops a departed peer from the election set.
func (c *Coordinator) RemovePeer(peerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.peers, peerID)
}

// Leader returns the current coordinator's peer ID: the lexicographically
// greatest ID among self and all known peers.
func (c *Coordinator) Leader() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	leader := c.self
	for p := range c.peers {
		if p > leader {
			leader = p
		}
	}
	return leader
}

// IsLeader reports whether self is the current snapshot coordinator.
func (c *Coordinator) IsLeader() bool {
	return c.Leader() == c.self
}
