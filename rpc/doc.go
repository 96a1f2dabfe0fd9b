// Package rpc provides the client side communication layer of the Rex key-value
// store. It sends framed requests to store nodes, keeps track of the cluster
// members and contains an in-process node used for testing.
//
// The package is organized into several subpackages:
//
//   - common: Core data structures and utilities used across the RPC system,
//     including the Command/Response protocol, error classification, configuration
//     structures, and logging.
//
//   - transport: Framed request/response communication with pooled connections
//     per node (TCP).
//
//   - serializer: Externally tagged JSON encoding of commands and responses
//     (encoding/json or sonic).
//
//   - cluster: The node registry and the one-shot discovery against a seed node.
//
//   - client: The dispatcher (random node per request, no retry) and the store
//     client built on top of it.
//
//   - server: An in-memory node answering Get, Set and Gossip(Ping) requests.
package rpc
