package base

import (
	"fmt"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

var (
	poolDials     = metrics.GetOrCreateCounter("rex_pool_dials_total")
	poolDialFails = metrics.GetOrCreateCounter("rex_pool_dial_failures_total")
	poolReused    = metrics.GetOrCreateCounter("rex_pool_reused_total")
	poolDiscarded = metrics.GetOrCreateCounter("rex_pool_discarded_total")
	poolClosed    = metrics.GetOrCreateCounter("rex_pool_closed_total")

	// idleConns counts idle connections of all pools in the process
	idleConns atomic.Int64
	_         = metrics.GetOrCreateGauge("rex_pool_idle_connections", func() float64 {
		return float64(idleConns.Load())
	})
)

// -----------------------------------------------------------
// Pooled Connection
// -----------------------------------------------------------

// poolConn is a connection owned by the pool or by exactly one caller.
// It remembers the node it was opened for, so it can be returned to the
// right idle list regardless of how the remote address resolves.
type poolConn struct {
	net.Conn
	node   string
	closed atomic.Bool
}

// Close closes the underlying connection once
func (c *poolConn) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.Conn.Close()
}

// isAlive reports whether the connection is open and the peer has not hung up
func (c *poolConn) isAlive() bool {
	if c.closed.Load() {
		return false
	}
	return connCheck(c.Conn) == nil
}

// -----------------------------------------------------------
// Connection Pool
// -----------------------------------------------------------

// idleList holds the idle connections of one node, the last element is the most recently released one
type idleList struct {
	mu    sync.Mutex
	conns []*poolConn
}

// connPool keeps a bounded list of idle connections per node.
// Each node has its own lock, so callers working with different
// nodes never contend with each other.
type connPool struct {
	connector IClientConnector
	config    common.ClientConfig
	idle      *xsync.MapOf[string, *idleList]
}

func newConnPool(connector IClientConnector, config common.ClientConfig) *connPool {
	return &connPool{
		connector: connector,
		config:    config,
		idle:      xsync.NewMapOf[string, *idleList](),
	}
}

// acquire returns a live idle connection for the node or opens a new one
func (p *connPool) acquire(node string) (*poolConn, error) {
	if conn := p.popIdle(node); conn != nil {
		poolReused.Inc()
		return conn, nil
	}
	return p.dial(node)
}

// release returns a connection to the idle list of its node.
// Closed connections are ignored, connections exceeding the bound are closed.
func (p *connPool) release(conn *poolConn) {
	if conn == nil || conn.closed.Load() {
		return
	}

	l := p.list(conn.node)
	l.mu.Lock()
	if len(l.conns) < p.config.Transport.MaxIdlePerNode {
		l.conns = append(l.conns, conn)
		l.mu.Unlock()
		idleConns.Add(1)
		return
	}
	l.mu.Unlock()

	// pool is full
	if err := conn.Close(); err != nil {
		Logger.Warningf("Error closing connection to %s: %v", conn.node, err)
	}
	poolClosed.Inc()
}

// discard closes a connection that must not be reused
func (p *connPool) discard(conn *poolConn) {
	if conn == nil {
		return
	}
	_ = conn.Close()
	poolDiscarded.Inc()
}

// idleCount returns the number of idle connections held for the node
func (p *connPool) idleCount(node string) int {
	l, ok := p.idle.Load(node)
	if !ok {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.conns)
}

// close closes all idle connections
func (p *connPool) close() {
	p.idle.Range(func(node string, l *idleList) bool {
		l.mu.Lock()
		for _, conn := range l.conns {
			_ = conn.Close()
			idleConns.Add(-1)
		}
		l.conns = nil
		l.mu.Unlock()
		return true
	})
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (p *connPool) list(node string) *idleList {
	l, _ := p.idle.LoadOrCompute(node, func() *idleList {
		return &idleList{}
	})
	return l
}

// popIdle takes idle connections (most recent first) until a live one is found.
// Dead connections are closed and dropped.
func (p *connPool) popIdle(node string) *poolConn {
	l := p.list(node)
	l.mu.Lock()
	defer l.mu.Unlock()

	for len(l.conns) > 0 {
		last := len(l.conns) - 1
		conn := l.conns[last]
		l.conns[last] = nil
		l.conns = l.conns[:last]
		idleConns.Add(-1)

		if conn.isAlive() {
			return conn
		}

		Logger.Debugf("Dropping dead idle connection to %s", node)
		_ = conn.Close()
		poolDiscarded.Inc()
	}
	return nil
}

// dial opens and upgrades a new connection to the node
func (p *connPool) dial(node string) (*poolConn, error) {
	timeout := time.Duration(p.config.Transport.DialTimeoutSecond) * time.Second

	conn, err := p.connector.Connect(node, timeout)
	if err != nil {
		poolDialFails.Inc()
		return nil, fmt.Errorf("%w: failed to connect to %s: %w", common.ErrConnect, node, err)
	}

	// Upgrade the connection with protocol-specific settings
	if err := p.connector.UpgradeConnection(conn, p.config); err != nil {
		_ = conn.Close()
		poolDialFails.Inc()
		return nil, fmt.Errorf("%w: failed to upgrade connection to %s: %w", common.ErrConnect, node, err)
	}

	poolDials.Inc()
	Logger.Debugf("Opened new %s connection to %s", p.connector.GetName(), node)
	return &poolConn{Conn: conn, node: node}, nil
}
