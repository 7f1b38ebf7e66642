// Package cluster realizes spec §5's "implementers may shard it across
// workers" as an actual multi-process deployment option: reasoner peers
// join a mesh over libp2p, gossip concept lifecycle events to keep each
// other's overflow caches warm, agree on which peer owns a term's concept
// by rendezvous hashing, and elect a snapshot coordinator. A single-process
// reasoner is the degenerate, always-valid case (a Cluster of size one).
package cluster

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	"github.com/multiformats/go-multiaddr"

	"github.com/khryptorgraphics/nonaxiomatic/pkg/events"
)

// Cluster is one reasoner's membership in a gossip mesh: a libp2p host,
// the shard-ownership ring, the bully-style coordinator, and an optional
// handler for events received from peers.
type Cluster struct {
	cfg    Config
	host   host.Host
	ring   *ShardRing
	coord  *Coordinator
	logger *slog.Logger

	mu      sync.RWMutex
	onEvent RemoteEventHandler
}

// New constructs a Cluster bound to cfg.ListenAddr and subscribes it to
// bus so concept lifecycle events are gossiped to peers as they occur. bus
// may be nil, producing a cluster that can still be joined and queried for
// shard ownership but gossips nothing.
func New(ctx context.Context, cfg Config, bus *events.Bus, logger *slog.Logger) (*Cluster, error) {
	if logger == nil {
		logger = slog.Default()
	}

	h, err := libp2p.New(libp2p.ListenAddrStrings(cfg.ListenAddr))
	if err != nil {
		return nil, fmt.Errorf("cluster: create libp2p host: %w", err)
	}

	selfID := h.ID().String()
	c := &Cluster{
		cfg:    cfg,
		host:   h,
		ring:   NewShardRing(selfID, nil),
		coord:  NewCoordinator(selfID),
		logger: logger,
	}

	h.SetStreamHandler(protocol.ID(gossipProtocolID), c.handleStream)
	c.subscribeGossip(bus)

	for _, addr := range cfg.BootstrapPeers {
		if err := c.Join(ctx, addr); err != nil {
			logger.Warn("cluster: failed to join bootstrap peer", "addr", addr, "error", err)
		}
	}

	logger.Info("cluster node started", "id", selfID, "listen", cfg.ListenAddr)
	return c, nil
}

// ID returns this node's libp2p peer identity.
func (c *Cluster) ID() string { return c.host.ID().String() }

// Ring returns the shard-ownership ring for term lookups.
func (c *Cluster) Ring() *ShardRing { return c.ring }

// Coordinator returns the bully-style snapshot-coordinator elector.
func (c *Cluster) Coordinator() *Coordinator { return c.coord }

// OnRemoteEvent registers the handler invoked for every gossiped event
// received from a peer.
func (c *Cluster) OnRemoteEvent(h RemoteEventHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvent = h
}

// Join dials a peer's multiaddr (including its /p2p/<id> suffix), connects,
// and incorporates it into the shard ring and coordinator membership.
func (c *Cluster) Join(ctx context.Context, addr string) error {
	maddr, err := multiaddr.NewMultiaddr(addr)
	if err != nil {
		return fmt.Errorf("cluster: parse multiaddr: %w", err)
	}
	info, err := peer.AddrInfoFromP2pAddr(maddr)
	if err != nil {
		return fmt.Errorf("cluster: resolve peer info: %w", err)
	}

	dialCtx, cancel := context.WithTimeout(ctx, c.cfg.DialTimeout)
	defer cancel()
	if err := c.host.Connect(dialCtx, *info); err != nil {
		return fmt.Errorf("cluster: connect: %w", err)
	}

	peerID := info.ID.String()
	c.ring.AddNode(peerID)
	c.coord.AddPeer(peerID)
	c.logger.Info("cluster peer joined", "peer", peerID)
	return nil
}

// Leave disconnects from a peer and removes it from shard and coordinator
// membership.
func (c *Cluster) Leave(peerID string) {
	c.ring.RemoveNode(peerID)
	c.coord.RemovePeer(peerID)
	for _, p := range c.host.Network().Peers() {
		if p.String() == peerID {
			c.host.Network().ClosePeer(p)
		}
	}
	c.logger.Info("cluster peer left", "peer", peerID)
}

// Peers returns the IDs of currently connected peers.
func (c *Cluster) Peers() []string {
	conns := c.host.Network().Peers()
	out := make([]string, len(conns))
	for i, p := range conns {
		out[i] = p.String()
	}
	return out
}

// broadcastLocal opens one stream per connected peer and writes ev as
// JSON, logging (but not failing) individual peer errors: one unreachable
// peer must never block the reasoner's own cycle.
func (c *Cluster) broadcastLocal(ev GossipEvent) {
	data, err := encodeGossipEvent(ev)
	if err != nil {
		c.logger.Error("cluster: failed to encode gossip event", "error", err)
		return
	}

	ctx := context.Background()
	for _, p := range c.host.Network().Peers() {
		s, err := c.host.NewStream(ctx, p, protocol.ID(gossipProtocolID))
		if err != nil {
			c.logger.Warn("cluster: failed to open gossip stream", "peer", p.String(), "error", err)
			continue
		}
		if _, err := s.Write(data); err != nil {
			c.logger.Warn("cluster: failed to write gossip event", "peer", p.String(), "error", err)
		}
		s.Close()
	}
}

func (c *Cluster) handleStream(s network.Stream) {
	defer s.Close()

	data, err := io.ReadAll(s)
	if err != nil {
		c.logger.Warn("cluster: failed to read gossip stream", "error", err)
		return
	}
	ev, err := decodeGossipEvent(data)
	if err != nil {
		c.logger.Warn("cluster: failed to decode gossip event", "error", err)
		return
	}

	c.mu.RLock()
	handler := c.onEvent
	c.mu.RUnlock()
	if handler != nil {
		handler(s.Conn().RemotePeer().String(), ev)
	}
}

// Close shuts down the libp2p host and all its connections.
func (c *Cluster) Close() error {
	return c.host.Close()
}
