package cluster

import "time"

// Config configures a Cluster's libp2p host and shard membership, trimmed
// from the teacher's P2P `NodeConfig` down to what a gossip-and-shard
// reasoner peer actually needs (no relay/NAT/mDNS knobs: a reasoner
// cluster is expected to run inside an operator-controlled network, not
// discover itself on a public one).
type Config struct {
	ListenAddr     string        `json:"listen_addr" yaml:"listen_addr"`
	BootstrapPeers []string      `json:"bootstrap_peers" yaml:"bootstrap_peers"`
	DialTimeout    time.Duration `json:"dial_timeout" yaml:"dial_timeout"`
	MaxConnections int           `json:"max_connections" yaml:"max_connections"`
}

// DefaultConfig returns sane defaults for a single-process or small
// cluster deployment.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     "/ip4/0.0.0.0/tcp/0",
		BootstrapPeers: nil,
		DialTimeout:    10 * time.Second,
		MaxConnections: 64,
	}
}

// gossipProtocolID is the libp2p stream protocol used to fan concept
// events out to peers. A dedicated protocol ID plays the same role a
// pubsub topic name would, without adding a dependency this pack's example
// repos never exercise (see DESIGN.md).
const gossipProtocolID = "/nars-core/gossip/1.0.0"
