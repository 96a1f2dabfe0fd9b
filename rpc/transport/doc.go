// Package transport defines the interfaces and abstractions for the framed
// request/response communication with store nodes.
//
// The package focuses on:
//   - Defining clear interfaces for client and server transport layers
//   - Addressing requests to individual nodes (host:port)
//   - Keeping the wire framing independent of the message encoding
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handle connection pooling and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receive request frames and pass them to a handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
package transport
