package base

import (
	"fmt"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"github.com/ValentinKolb/rexkv/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"net"
	"time"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint (timeout 0 = no timeout)
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Client Transport
// -----------------------------------------------------------

// clientTransport implements the core client transport functionality
// independent of the specific transport medium
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	pool      *connPool
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector, config common.ClientConfig) transport.IRPCClientTransport {
	return newClientTransport(connector, config)
}

func newClientTransport(connector IClientConnector, config common.ClientConfig) *clientTransport {
	return &clientTransport{
		connector: connector,
		config:    config,
		pool:      newConnPool(connector, config),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Send(node string, req []byte) (resp []byte, err error) {
	conn, err := t.pool.acquire(node)
	if err != nil {
		return nil, err
	}

	// Only a connection that completed the exchange is returned to the pool,
	// after any error the stream state is unknown and the connection is closed
	defer func() {
		if err != nil {
			t.pool.discard(conn)
		} else {
			t.pool.release(conn)
		}
	}()

	// Set the deadline for the whole exchange
	if err = conn.SetDeadline(time.Now().Add(t.config.RequestTimeout())); err != nil {
		return nil, fmt.Errorf("%w: failed to set deadline: %w", common.ErrTransport, err)
	}

	if err = writeFrame(conn, req); err != nil {
		Logger.Debugf("Failed to send request to %s: %v", node, err)
		return nil, err
	}

	resp, err = readFrame(conn)
	if err != nil {
		Logger.Debugf("Failed to read response from %s: %v", node, err)
		return nil, err
	}

	return resp, nil
}

func (t *clientTransport) Close() error {
	t.pool.close()
	return nil
}
