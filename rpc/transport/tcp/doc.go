// Package tcp implements the TCP transport used to talk to store nodes.
// It provides concrete implementations of the base package's connector
// interfaces for TCP connections.
//
// This package builds on the base package's transport functionality, inheriting
// its connection pooling and frame handling. See the base package documentation
// for details on the underlying transport mechanisms.
//
// Key Components:
//
//   - clientConnector: TCP-specific implementation of base.IClientConnector. Every
//     connection has keep-alive enabled, further socket options (TCP_NODELAY,
//     linger, buffer sizes, keep-alive period) are taken from the client config.
//
//   - serverConnector: TCP-specific implementation of base.IServerConnector, used by
//     the in-process mock node.
package tcp
