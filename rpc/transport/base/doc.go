// Package base provides the foundation of the transport layer, implementing
// the framed request/response exchange with store nodes independent of the
// specific network protocol. It is extended with protocol-specific
// connectors (see the tcp package).
//
// The package focuses on:
//   - Length-prefixed framing of messages
//   - A bounded pool of reusable connections per node
//   - Guaranteed return or disposal of every connection taken from the pool
//   - A minimal server side used by the in-process mock node
//
// Frame Format:
//
//	+----------------------------+------------------------+
//	| length (uint32, big endian) | payload (length bytes) |
//	+----------------------------+------------------------+
//
// A frame is read with io.ReadFull, so short reads are retried until the
// announced length is consumed. A stream that ends early yields a
// common.ErrFraming error, other I/O failures a common.ErrTransport error.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - connPool: One idle list per node, guarded by its own mutex. acquire pops the
//     most recently released connection and checks it with a non-blocking read
//     (a peer that hung up is detected and the connection dropped). release keeps
//     at most ClientTransportConfig.MaxIdlePerNode idle connections and closes the
//     rest.
//
//   - clientTransport: Send takes a connection for the addressed node, writes the
//     request frame, reads the response frame and returns the connection to the
//     pool. After any error the connection is closed instead.
//
//   - serverTransport: Accepts connections and answers frames in order with a
//     registered handler.
//
// Thread Safety:
//
//	All public methods are thread-safe. A connection is used by exactly one
//	caller at a time, the pool hands it out and takes it back under the lock
//	of its node.
package base
