package base

import (
	"github.com/ValentinKolb/rexkv/rpc/common"
	"net"
	"sync"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Test connector
// --------------------------------------------------------------------------

// testConnector dials plain TCP and remembers every connection it opened
type testConnector struct {
	mu    sync.Mutex
	conns []net.Conn
}

func (c *testConnector) GetName() string {
	return "test"
}

func (c *testConnector) Connect(endpoint string, timeout time.Duration) (net.Conn, error) {
	conn, err := net.DialTimeout("tcp", endpoint, timeout)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.conns = append(c.conns, conn)
	c.mu.Unlock()
	return conn, nil
}

func (c *testConnector) UpgradeConnection(_ net.Conn, _ common.ClientConfig) error {
	return nil
}

func (c *testConnector) opened() []net.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]net.Conn(nil), c.conns...)
}

// openCount returns how many of the opened connections are still open
func (c *testConnector) openCount() int {
	open := 0
	for _, conn := range c.opened() {
		if !isClosed(conn) {
			open++
		}
	}
	return open
}

// isClosed reports whether Close was called on the connection
func isClosed(conn net.Conn) bool {
	return conn.SetDeadline(time.Time{}) != nil
}

// --------------------------------------------------------------------------
// Scripted server
// --------------------------------------------------------------------------

// testServer runs script for every accepted connection
type testServer struct {
	listener net.Listener
	done     chan struct{} // closed when the accept loop returned

	mu    sync.Mutex
	conns []net.Conn
	wg    sync.WaitGroup
}

func startTestServer(t *testing.T, script func(conn net.Conn)) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	s := &testServer{
		listener: listener,
		done:     make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			s.mu.Lock()
			s.conns = append(s.conns, conn)
			s.mu.Unlock()

			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer conn.Close()
				script(conn)
			}()
		}
	}()

	t.Cleanup(func() {
		_ = listener.Close()
		// no wg.Add can happen once the accept loop returned
		<-s.done

		s.mu.Lock()
		for _, conn := range s.conns {
			_ = conn.Close()
		}
		s.mu.Unlock()
		s.wg.Wait()
	})
	return s
}

func (s *testServer) addr() string {
	return s.listener.Addr().String()
}

// echoScript answers every frame with the same payload
func echoScript(conn net.Conn) {
	for {
		req, err := readFrame(conn)
		if err != nil {
			return
		}
		if err := writeFrame(conn, req); err != nil {
			return
		}
	}
}

func testConfig(maxIdle int) common.ClientConfig {
	config := common.DefaultClientConfig()
	config.Transport.MaxIdlePerNode = maxIdle
	config.TimeoutSecond = 5
	return config
}
