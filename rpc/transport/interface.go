package transport

import (
	"github.com/ValentinKolb/rexkv/rpc/common"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// ServerHandleFunc is a function type that handles incoming requests
// This function is called by a server transport layer for every received frame
// and returns the payload of the response frame
type ServerHandleFunc func(req []byte) (resp []byte)

// IRPCServerTransport is the interface for the server side of the transport layer
type IRPCServerTransport interface {
	// RegisterHandler registers a handler for the transport layer
	// This handler is called for every request frame
	RegisterHandler(handler ServerHandleFunc)
	// Listen binds the transport to the configured endpoint without blocking
	Listen(config common.NodeConfig) error
	// Serve accepts connections until Close is called
	Serve() error
	// Addr returns the address the transport is bound to
	Addr() string
	// Close stops accepting connections and closes all open ones
	Close() error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IRPCClientTransport is the interface for the pooled client transport
type IRPCClientTransport interface {
	// Send sends a request frame to the node and returns the payload of the response frame.
	// A connection is taken from the pool of the node (or opened) for the duration of the call.
	Send(node string, req []byte) (resp []byte, err error)
	// Close closes all idle connections
	Close() error
}
