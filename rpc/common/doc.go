// Package common provides core data structures and utilities shared across
// the rpc packages. It defines the protocol types, the error classification,
// configuration structures and the logger setup.
//
// Key Components:
//
//   - Command: A request sent to a node (Get, Set or Gossip(Ping)). Includes
//     factory methods for all requests.
//
//   - Response: The answer of a node, either Ok with a payload (Value, Gossip(Pong)
//     or an Ack) or an error with a reason. Expects checks that the payload
//     matches the request.
//
//   - Errors: The sentinels ErrConnect, ErrFraming, ErrTransport, ErrProtocol and
//     ErrApplication. Errors returned by the rpc packages wrap exactly one of them,
//     so callers classify failures with errors.Is. IsTransportFailure reports
//     whether a failure happened below the protocol level.
//
//   - ClientConfig: Configuration of the client transport (seed address, timeouts,
//     idle connections per node, socket options).
//
//   - NodeConfig: Configuration of the in-process node.
//
//   - Logger: Custom logging implementation that integrates with Dragonboat's
//     logging system while providing consistent formatting across the application.
package common
