package base

import (
	"bytes"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"net"
	"sync"
	"testing"
	"time"
)

// testServerConnector listens on plain TCP
type testServerConnector struct{}

func (testServerConnector) GetName() string {
	return "test"
}

func (testServerConnector) Listen(config common.NodeConfig) (net.Listener, error) {
	return net.Listen("tcp", config.Endpoint)
}

func startServerTransport(t *testing.T) (*serverTransport, chan error) {
	t.Helper()

	server := NewBaseServerTransport(testServerConnector{}).(*serverTransport)
	server.RegisterHandler(func(req []byte) []byte {
		return bytes.ToUpper(req)
	})
	if err := server.Listen(common.NodeConfig{Endpoint: "127.0.0.1:0", TimeoutSecond: 5}); err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	served := make(chan error, 1)
	go func() {
		served <- server.Serve()
	}()
	return server, served
}

// TestServerAnswersInOrder tests that frames on one connection are answered in order
func TestServerAnswersInOrder(t *testing.T) {
	server, served := startServerTransport(t)

	conn, err := net.Dial("tcp", server.Addr())
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	for _, req := range []string{"a", "bb", "ccc"} {
		if err := writeFrame(conn, []byte(req)); err != nil {
			t.Fatalf("Failed to write frame: %v", err)
		}
	}
	for _, expected := range []string{"A", "BB", "CCC"} {
		resp, err := readFrame(conn)
		if err != nil {
			t.Fatalf("Failed to read frame: %v", err)
		}
		if string(resp) != expected {
			t.Errorf("Expected %s, got %s", expected, resp)
		}
	}

	if err := server.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := <-served; err != nil {
		t.Errorf("Serve returned error: %v", err)
	}
}

// TestServerCloseWhileAccepting tests closing the server while clients keep connecting
func TestServerCloseWhileAccepting(t *testing.T) {
	server, served := startServerTransport(t)
	addr := server.Addr()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				conn, err := net.DialTimeout("tcp", addr, time.Second)
				if err != nil {
					continue
				}
				_ = conn.SetDeadline(time.Now().Add(time.Second))
				if err := writeFrame(conn, []byte("ping")); err == nil {
					_, _ = readFrame(conn)
				}
				_ = conn.Close()
			}
		}()
	}

	time.Sleep(50 * time.Millisecond)
	if err := server.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	close(stop)
	wg.Wait()

	select {
	case err := <-served:
		if err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after Close")
	}

	if got := server.conns.Size(); got != 0 {
		t.Errorf("Expected all connections to be closed, %d left", got)
	}
	if err := server.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}
