package server

import (
	"fmt"
	"github.com/ValentinKolb/rexkv/lib/store"
	"github.com/ValentinKolb/rexkv/lib/store/lstore"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"github.com/ValentinKolb/rexkv/rpc/serializer"
	"github.com/ValentinKolb/rexkv/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"os/signal"
	"runtime"
	"syscall"
)

var Logger = logger.GetLogger("node")

// RexNode is an in-process node speaking the store protocol.
// It keeps all data in memory and answers gossip with a static member list.
type RexNode struct {
	config     common.NodeConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	store      store.IStore
	adapters   map[common.CommandType]IRPCServerAdapter
}

// NewRexNode creates a new node with its own in-memory store
//
// Usage:
//
//	n := server.NewRexNode(
//		config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewJSONSerializer(),
//	)
//
//	if err := n.Serve(); err != nil {
//		panic(err)
//	}
func NewRexNode(
	config common.NodeConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RexNode {
	return NewRexNodeWithStore(config, lstore.NewLocalStore(), transport, serializer)
}

// NewRexNodeWithStore creates a new node backed by the given store.
// Nodes sharing a store behave like a fully replicated cluster.
func NewRexNodeWithStore(
	config common.NodeConfig,
	st store.IStore,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RexNode {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	n := &RexNode{
		config:     config,
		transport:  transport,
		serializer: serializer,
		store:      st,
	}

	storeAdapter := NewIStoreServerAdapter()
	n.adapters = map[common.CommandType]IRPCServerAdapter{
		common.CmdTGet:    storeAdapter,
		common.CmdTSet:    storeAdapter,
		common.CmdTGossip: NewGossipServerAdapter(n.AdvertiseAddr, config.Members),
	}
	return n
}

// Listen binds the node to its endpoint without serving requests yet
func (n *RexNode) Listen() error {
	n.transport.RegisterHandler(n.handle)
	if err := n.transport.Listen(n.config); err != nil {
		return err
	}
	Logger.Infof("Node listening on %s, advertising %s", n.transport.Addr(), n.AdvertiseAddr())
	Logger.Debugf(n.config.String())
	return nil
}

// Serve answers requests until the node is closed. Listen is called if
// it was not called before.
func (n *RexNode) Serve() error {
	if n.transport.Addr() == "" {
		if err := n.Listen(); err != nil {
			return err
		}
	}
	return n.transport.Serve()
}

// Addr returns the address the node is listening on
func (n *RexNode) Addr() string {
	return n.transport.Addr()
}

// AdvertiseAddr returns the address reported as sender in Pong messages
func (n *RexNode) AdvertiseAddr() string {
	if n.config.Advertise != "" {
		return n.config.Advertise
	}
	return n.transport.Addr()
}

// Close stops the node and closes all client connections
func (n *RexNode) Close() error {
	return n.transport.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// handle decodes a request, lets the matching adapter answer it and encodes the response
func (n *RexNode) handle(req []byte) []byte {
	var cmd common.Command
	var resp *common.Response

	if err := n.serializer.DeserializeCommand(req, &cmd); err != nil {
		resp = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
	} else if adapter, ok := n.adapters[cmd.CmdType]; ok {
		resp = adapter.Handle(&cmd, n.store)
	} else {
		resp = common.NewErrorResponse(fmt.Sprintf("unsupported command: %s", cmd.CmdType))
	}

	metrics.GetOrCreateCounter(fmt.Sprintf(`rex_node_requests_total{cmd=%q,resp=%q}`, cmd.CmdType, resp.RespType)).Inc()

	b, err := n.serializer.SerializeResponse(*resp)
	if err != nil {
		Logger.Errorf("Failed to serialize response: %v", err)
		b, _ = n.serializer.SerializeResponse(*common.NewErrorResponse(
			fmt.Sprintf("failed to serialize response: %s", err),
		))
	}
	return b
}
