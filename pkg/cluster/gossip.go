package cluster

import (
	"encoding/json"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
)

// GossipEvent is the wire payload gossiped between peers: a concept or
// cycle event plus the reasoner's logical time, mirroring events.Event
// minus its free-form Data (which may carry non-serializable task/concept
// pointers that only make sense within the originating process).
type GossipEvent struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Time    int64  `json:"time"`
}

// gossipKinds is the subset of the event catalogue worth propagating to
// peers: concept lifecycle (so a remote overflow cache can stay warm) and
// cycle boundaries (so peers can observe liveness). Task events are
// intentionally not gossiped: task identity is process-local and derived
// tasks never cross the wire in this design.
var gossipKinds = []events.Kind{
	events.ConceptNew,
	events.ConceptForget,
	events.CycleEnd,
}

// RemoteEventHandler receives gossiped events from peers.
type RemoteEventHandler func(from string, ev GossipEvent)

// subscribeGossip wires c's broadcastLocal call to the given bus for every kind
// in gossipKinds.
func (c *Cluster) subscribeGossip(bus *events.Bus) {
	if bus == nil {
		return
	}
	for _, kind := range gossipKinds {
		kind := kind
		bus.Subscribe(kind, func(ev events.Event) {
			c.broadcastLocal(GossipEvent{Kind: kind.String(), Subject: ev.Subject, Time: ev.Time})
		})
	}
}

func encodeGossipEvent(ev GossipEvent) ([]byte, error) { return json.Marshal(ev) }
func decodeGossipEvent(data []byte) (GossipEvent, error) {
	var ev GossipEvent
	err := json.Unmarshal(data, &ev)
	return ev, err
}
