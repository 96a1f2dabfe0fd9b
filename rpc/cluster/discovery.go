package cluster

import (
	"fmt"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"github.com/ValentinKolb/rexkv/rpc/serializer"
	"github.com/ValentinKolb/rexkv/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"sync/atomic"
)

var Logger = logger.GetLogger("cluster")

var (
	discoveryOK     = metrics.GetOrCreateCounter(`rex_discovery_total{result="ok"}`)
	discoveryFailed = metrics.GetOrCreateCounter(`rex_discovery_total{result="failed"}`)

	// registryMembers sums the members of all registries in the process
	registryMembers atomic.Int64
	_               = metrics.GetOrCreateGauge("rex_registry_members", func() float64 {
		return float64(registryMembers.Load())
	})
)

// Bootstrap seeds the registry with the seed address and runs discovery
// against it. Discovery only runs if the registry was empty before, so
// calling Bootstrap again on the same registry is a no-op.
// It reports whether discovery was run.
func Bootstrap(seed string, registry *Registry, t transport.IRPCClientTransport, s serializer.IRPCSerializer) bool {
	if !registry.Seed(seed) {
		return false
	}
	Discover(seed, registry, t, s)
	return true
}

// Discover asks the seed node for the members it knows and merges the
// answer into the registry. Failures are logged and otherwise ignored, the
// registry then still contains what it contained before.
// It returns the number of newly learned addresses.
func Discover(seed string, registry *Registry, t transport.IRPCClientTransport, s serializer.IRPCSerializer) int {
	pong, err := ping(seed, t, s)
	if err != nil {
		discoveryFailed.Inc()
		Logger.Warningf("Discovery via %s failed, continuing with %d known node(s): %v", seed, registry.Len(), err)
		return 0
	}

	addrs := make([]string, 0, len(pong.Members)+1)
	for _, addr := range append([]string{pong.Sender}, pong.Members...) {
		if _, _, err := common.SplitNodeAddress(addr); err != nil {
			Logger.Warningf("Ignoring member announced by %s: %v", seed, err)
			continue
		}
		addrs = append(addrs, addr)
	}

	added := registry.Merge(addrs...)
	discoveryOK.Inc()
	Logger.Infof("Discovery via %s learned %d new node(s), %d known", seed, added, registry.Len())
	return added
}

// ping sends a Gossip(Ping) to the node and returns the Pong.
// The transport returns the connection to its pool on every path.
func ping(node string, t transport.IRPCClientTransport, s serializer.IRPCSerializer) (*common.GossipMessage, error) {
	reqBytes, err := s.SerializeCommand(*common.NewPingRequest())
	if err != nil {
		return nil, err
	}

	respBytes, err := t.Send(node, reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &common.Response{}
	if err := s.DeserializeResponse(respBytes, resp); err != nil {
		return nil, err
	}
	if err := resp.Expects(common.CmdTGossip); err != nil {
		return nil, fmt.Errorf("unexpected answer to ping: %w", err)
	}
	return resp.Pong(), nil
}
