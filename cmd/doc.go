// Package cmd implements the command-line interface of rexkv, a client for the
// Rex key-value store. It provides a hierarchical command structure with
// operations for talking to a cluster and for running a local mock node.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, members)
//   - perf: YCSB style benchmark (load, run) against Rex or redis
//   - serve: Commands for starting an in-memory node speaking the store protocol
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// All flags can also be set via environment variables REX_<FLAG> (e.g. REX_SEED=10.0.0.1:8000),
// which may be placed in a .env or .env.local file.
//
// See rexkv -help for a list of all commands.
package cmd
