package server

import (
	"github.com/ValentinKolb/rexkv/lib/store/lstore"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"github.com/ValentinKolb/rexkv/rpc/serializer"
	"github.com/ValentinKolb/rexkv/rpc/transport"
	"github.com/ValentinKolb/rexkv/rpc/transport/tcp"
	"reflect"
	"testing"
)

func startNode(t *testing.T, config common.NodeConfig) *RexNode {
	t.Helper()

	if config.Endpoint == "" {
		config.Endpoint = "127.0.0.1:0"
	}
	n := NewRexNode(config, tcp.NewTCPServerTransport(), serializer.NewJSONSerializer())
	if err := n.Listen(); err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- n.Serve()
	}()

	t.Cleanup(func() {
		_ = n.Close()
		if err := <-done; err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	})
	return n
}

func newClient(t *testing.T) transport.IRPCClientTransport {
	t.Helper()
	c := tcp.NewTCPClientTransport(common.DefaultClientConfig())
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// send sends a raw request body and decodes the response
func send(t *testing.T, c transport.IRPCClientTransport, node string, body string) (*common.Response, string) {
	t.Helper()

	raw, err := c.Send(node, []byte(body))
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	resp := &common.Response{}
	if err := serializer.NewJSONSerializer().DeserializeResponse(raw, resp); err != nil {
		t.Fatalf("Invalid response %s: %v", raw, err)
	}
	return resp, string(raw)
}

// TestNodeSetGet tests the store commands on the wire
func TestNodeSetGet(t *testing.T) {
	n := startNode(t, common.NodeConfig{})
	c := newClient(t)

	resp, _ := send(t, c, n.Addr(), `{"Set":{"key":"user:1","value":"alice"}}`)
	if err := resp.Expects(common.CmdTSet); err != nil {
		t.Fatalf("Set was not acknowledged: %v", err)
	}

	resp, _ = send(t, c, n.Addr(), `{"Get":{"key":"user:1"}}`)
	if err := resp.Expects(common.CmdTGet); err != nil {
		t.Fatalf("Unexpected Get response: %v", err)
	}
	if !resp.Found || resp.Value == nil || *resp.Value != "alice" {
		t.Errorf("Expected alice, got found=%v value=%v", resp.Found, resp.Value)
	}

	_, raw := send(t, c, n.Addr(), `{"Get":{"key":"user:2"}}`)
	if raw != `{"Ok":{"Value":{"found":false,"value":null}}}` {
		t.Errorf("Unexpected not found response %s", raw)
	}
}

// TestNodePong tests that a Ping is answered with the advertised address and the members
func TestNodePong(t *testing.T) {
	members := []string{"10.0.0.3:8000", "10.0.0.4:8000"}

	testCases := map[string]struct {
		advertise string
	}{
		"Configured advertise address": {advertise: "10.0.0.2:8000"},
		"Listen address":               {advertise: ""},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			n := startNode(t, common.NodeConfig{Advertise: tc.advertise, Members: members})
			c := newClient(t)

			resp, _ := send(t, c, n.Addr(), `{"Gossip":{"Ping":null}}`)
			if err := resp.Expects(common.CmdTGossip); err != nil {
				t.Fatalf("Unexpected Gossip response: %v", err)
			}

			expectedSender := tc.advertise
			if expectedSender == "" {
				expectedSender = n.Addr()
			}
			pong := resp.Pong()
			if pong.Sender != expectedSender {
				t.Errorf("Expected sender %s, got %s", expectedSender, pong.Sender)
			}
			if !reflect.DeepEqual(pong.Members, members) {
				t.Errorf("Expected members %v, got %v", members, pong.Members)
			}
		})
	}
}

// TestNodeErrors tests that invalid requests are answered with an error reason
func TestNodeErrors(t *testing.T) {
	n := startNode(t, common.NodeConfig{})
	c := newClient(t)

	requests := map[string]string{
		"Invalid json":    `{"Get":`,
		"Unknown command": `{"Delete":{"key":"a"}}`,
		"Missing key":     `{"Get":{}}`,
		"Empty key":       `{"Set":{"key":"","value":"v"}}`,
		"Pong request":    `{"Gossip":{"Pong":{"sender":"a:1","members":[]}}}`,
	}

	for name, body := range requests {
		t.Run(name, func(t *testing.T) {
			resp, raw := send(t, c, n.Addr(), body)
			if resp.RespType != common.RespTError || resp.Err == "" {
				t.Errorf("Expected error response, got %s", raw)
			}
		})
	}

	// the connection is still usable after errors
	resp, _ := send(t, c, n.Addr(), `{"Get":{"key":"a"}}`)
	if err := resp.Expects(common.CmdTGet); err != nil {
		t.Errorf("Unexpected response after errors: %v", err)
	}
}

// TestNodesSharedStore tests that nodes sharing a store see each others writes
func TestNodesSharedStore(t *testing.T) {
	st := lstore.NewLocalStore()
	c := newClient(t)

	var addrs []string
	for i := 0; i < 2; i++ {
		n := NewRexNodeWithStore(common.NodeConfig{Endpoint: "127.0.0.1:0"}, st, tcp.NewTCPServerTransport(), serializer.NewSonicSerializer())
		if err := n.Listen(); err != nil {
			t.Fatalf("Failed to listen: %v", err)
		}
		go func() { _ = n.Serve() }()
		t.Cleanup(func() { _ = n.Close() })
		addrs = append(addrs, n.Addr())
	}

	send(t, c, addrs[0], `{"Set":{"key":"k","value":"v"}}`)
	resp, _ := send(t, c, addrs[1], `{"Get":{"key":"k"}}`)
	if !resp.Found || *resp.Value != "v" {
		t.Errorf("Expected value written via the other node")
	}
}
