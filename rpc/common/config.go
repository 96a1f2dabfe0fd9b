package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultSeedAddress is the node contacted first if nothing else is configured
	DefaultSeedAddress = "127.0.0.1:8000"
	// DefaultMaxIdlePerNode is the default bound of idle connections kept per node
	DefaultMaxIdlePerNode = 10
	// DefaultTimeoutSecond is the default read/write timeout of a connection
	DefaultTimeoutSecond = 30
	// DefaultDialTimeoutSecond is the default timeout for establishing a connection
	DefaultDialTimeoutSecond = 5
)

// --------------------------------------------------------------------------
// Socket configuration structs
// --------------------------------------------------------------------------

// SocketConf holds buffer settings for stream sockets
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket options
type TCPConf struct {
	// TCPNoDelay disables Nagle's algorithm
	TCPNoDelay bool
	// TCPKeepAliveSec is the keep-alive period, keep-alive itself is always enabled (0 = OS default period)
	TCPKeepAliveSec int
	// TCPLingerSec is passed to SetLinger if >= 0
	TCPLingerSec int
}

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig configures the pooled connection transport
type ClientTransportConfig struct {
	// MaxIdlePerNode bounds the number of idle connections retained per node
	MaxIdlePerNode int
	// DialTimeoutSecond bounds connection establishment (0 = no timeout)
	DialTimeoutSecond int

	SocketConf
	TCPConf
}

// ClientConfig holds all parameters consumed by the client transport layer
type ClientConfig struct {
	// SeedAddress is the default node (host:port), used to seed the node registry
	SeedAddress string
	// TimeoutSecond is the read/write timeout of a single request on a connection
	TimeoutSecond int

	Transport ClientTransportConfig
}

// DefaultClientConfig returns a client configuration with all defaults applied
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		SeedAddress:   DefaultSeedAddress,
		TimeoutSecond: DefaultTimeoutSecond,
		Transport: ClientTransportConfig{
			MaxIdlePerNode:    DefaultMaxIdlePerNode,
			DialTimeoutSecond: DefaultDialTimeoutSecond,
			TCPConf: TCPConf{
				TCPNoDelay:   true,
				TCPLingerSec: -1,
			},
		},
	}
}

// Validate checks the configuration for values the transport cannot work with
func (c *ClientConfig) Validate() error {
	if _, _, err := SplitNodeAddress(c.SeedAddress); err != nil {
		return fmt.Errorf("invalid seed address: %w", err)
	}
	if c.Transport.MaxIdlePerNode < 0 {
		return fmt.Errorf("max idle connections per node must not be negative, got %d", c.Transport.MaxIdlePerNode)
	}
	if c.TimeoutSecond <= 0 {
		return fmt.Errorf("timeout must be positive, got %d", c.TimeoutSecond)
	}
	return nil
}

// RequestTimeout returns the deadline of a single request.
// A non-positive TimeoutSecond falls back to DefaultTimeoutSecond, a request is never unbounded.
func (c *ClientConfig) RequestTimeout() time.Duration {
	if c.TimeoutSecond <= 0 {
		return DefaultTimeoutSecond * time.Second
	}
	return time.Duration(c.TimeoutSecond) * time.Second
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Seed Address", c.SeedAddress)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	addSection("Transport")
	addField("Max Idle Per Node", strconv.Itoa(c.Transport.MaxIdlePerNode))
	addField("Dial Timeout", fmt.Sprintf("%d sec", c.Transport.DialTimeoutSecond))
	addField("TCP NoDelay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP KeepAlive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))

	return sb.String()
}

// --------------------------------------------------------------------------
// Mock node configuration struct
// --------------------------------------------------------------------------

// NodeConfig configures an in-process node speaking the store protocol
type NodeConfig struct {
	// Endpoint is the address to listen on
	Endpoint string
	// Advertise is the address reported as sender in Pong messages (defaults to the listen address)
	Advertise string
	// Members are the peers reported in Pong messages
	Members []string
	// TimeoutSecond is the read/write timeout per request (0 = none)
	TimeoutSecond int
	// LogLevel of all loggers
	LogLevel string
}

// String returns a formatted string representation of the node configuration
func (c *NodeConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Node")
	addField("Endpoint", c.Endpoint)
	addField("Advertise", c.Advertise)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	addSection("Members")
	for i, member := range c.Members {
		addField(strconv.Itoa(i), member)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// SplitNodeAddress splits a host:port node address and validates the port
func SplitNodeAddress(addr string) (host string, port int, err error) {
	i := strings.LastIndex(addr, ":")
	if i <= 0 || i == len(addr)-1 {
		return "", 0, fmt.Errorf("address %q is not of the form host:port", addr)
	}
	host = strings.Trim(addr[:i], "[]")
	port, err = strconv.Atoi(addr[i+1:])
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("address %q has an invalid port", addr)
	}
	return host, port, nil
}
