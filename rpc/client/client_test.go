package client

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/rexkv/lib/store/lstore"
	"github.com/ValentinKolb/rexkv/rpc/cluster"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"github.com/ValentinKolb/rexkv/rpc/serializer"
	"github.com/ValentinKolb/rexkv/rpc/server"
	"github.com/ValentinKolb/rexkv/rpc/transport/tcp"
	"net"
	"reflect"
	"sort"
	"testing"
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// fakeTransport answers every request with a fixed response or error
type fakeTransport struct {
	resp  []byte
	err   error
	nodes []string
}

func (f *fakeTransport) Send(node string, _ []byte) ([]byte, error) {
	f.nodes = append(f.nodes, node)
	return f.resp, f.err
}

func (f *fakeTransport) Close() error {
	return nil
}

// newFakeStore creates a store on an already seeded registry, so no discovery takes place
func newFakeStore(t *testing.T, ft *fakeTransport) IRPCStore {
	t.Helper()

	config := common.DefaultClientConfig()
	config.SeedAddress = "10.0.0.1:8000"
	registry := cluster.NewRegistry(config.SeedAddress)
	registry.Seed(config.SeedAddress)

	s, err := NewRPCStore(config, registry, ft, serializer.NewJSONSerializer())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}

// startCluster starts n nodes sharing one store, the first node announces all others
func startCluster(t *testing.T, n int) []string {
	t.Helper()

	st := lstore.NewLocalStore()
	addrs := make([]string, n)

	start := func(config common.NodeConfig) string {
		node := server.NewRexNodeWithStore(config, st, tcp.NewTCPServerTransport(), serializer.NewJSONSerializer())
		if err := node.Listen(); err != nil {
			t.Fatalf("Failed to listen: %v", err)
		}
		go func() { _ = node.Serve() }()
		t.Cleanup(func() { _ = node.Close() })
		return node.Addr()
	}

	for i := 1; i < n; i++ {
		addrs[i] = start(common.NodeConfig{Endpoint: "127.0.0.1:0", TimeoutSecond: 5})
	}
	addrs[0] = start(common.NodeConfig{Endpoint: "127.0.0.1:0", Members: addrs[1:], TimeoutSecond: 5})
	return addrs
}

// --------------------------------------------------------------------------
// Tests against the mock node
// --------------------------------------------------------------------------

// TestRPCStoreCluster tests discovery and dispatch against a running cluster
func TestRPCStoreCluster(t *testing.T) {
	addrs := startCluster(t, 3)

	config := common.DefaultClientConfig()
	config.SeedAddress = addrs[0]
	config.TimeoutSecond = 5

	transport := tcp.NewTCPClientTransport(config)
	defer transport.Close()

	s, err := NewRPCStore(config, nil, transport, serializer.NewSonicSerializer())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	expected := append([]string{}, addrs...)
	sort.Strings(expected)
	if !reflect.DeepEqual(s.Members(), expected) {
		t.Fatalf("Expected members %v, got %v", expected, s.Members())
	}

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := s.Set(key, []byte(fmt.Sprintf("value-%d", i))); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
	}
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("key-%d", i)
		value, ok, err := s.Get(key)
		if err != nil || !ok {
			t.Fatalf("Expected %s to be found, got ok=%v err=%v", key, ok, err)
		}
		if string(value) != fmt.Sprintf("value-%d", i) {
			t.Errorf("Unexpected value %s for %s", value, key)
		}
	}

	if _, ok, err := s.Get("missing"); ok || err != nil {
		t.Errorf("Expected not found without error, got ok=%v err=%v", ok, err)
	}

	// the node rejects empty keys
	err = s.Set("", []byte("v"))
	if !errors.Is(err, common.ErrApplication) {
		t.Errorf("Expected application error, got %v", err)
	}
}

// TestRPCStoreUnreachableSeed tests that a failed discovery does not prevent creating the store
func TestRPCStoreUnreachableSeed(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	config := common.DefaultClientConfig()
	config.SeedAddress = addr
	transport := tcp.NewTCPClientTransport(config)
	defer transport.Close()

	s, err := NewRPCStore(config, nil, transport, serializer.NewJSONSerializer())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if !reflect.DeepEqual(s.Members(), []string{addr}) {
		t.Errorf("Expected only the seed, got %v", s.Members())
	}

	_, _, err = s.Get("key")
	if !errors.Is(err, common.ErrConnect) {
		t.Errorf("Expected connect error, got %v", err)
	}
}

// TestRPCStoreInvalidConfig tests that an invalid seed address is rejected
func TestRPCStoreInvalidConfig(t *testing.T) {
	config := common.DefaultClientConfig()
	config.SeedAddress = "no-port"

	if _, err := NewRPCStore(config, nil, &fakeTransport{}, serializer.NewJSONSerializer()); err == nil {
		t.Errorf("Expected error for invalid seed address")
	}
}

// TestDispatcherNoFailover tests that a dead node stays selectable and fails with a connect error
func TestDispatcherNoFailover(t *testing.T) {
	addrs := startCluster(t, 1)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	dead := listener.Addr().String()
	_ = listener.Close()

	registry := cluster.NewRegistry(addrs[0])
	registry.Merge(addrs[0], dead)

	transport := tcp.NewTCPClientTransport(common.DefaultClientConfig())
	defer transport.Close()
	d := NewDispatcher(registry, transport, serializer.NewJSONSerializer())

	var ok, failed int
	for i := 0; i < 100; i++ {
		_, err := d.Execute(common.NewGetRequest("key"))
		switch {
		case err == nil:
			ok++
		case errors.Is(err, common.ErrConnect):
			failed++
		default:
			t.Fatalf("Unexpected error: %v", err)
		}
	}

	if ok == 0 || failed == 0 {
		t.Errorf("Expected both nodes to be picked, got %d successes and %d failures", ok, failed)
	}
	if !registry.Contains(dead) {
		t.Errorf("Dead node was removed from the registry")
	}
}

// --------------------------------------------------------------------------
// Tests with scripted responses
// --------------------------------------------------------------------------

// TestGetResponses tests how Get maps the possible answers of a node
func TestGetResponses(t *testing.T) {
	testCases := []struct {
		name      string
		resp      string
		wantValue string
		wantFound bool
		wantErr   error
	}{
		{name: "Found", resp: `{"Ok":{"Value":{"found":true,"value":"v"}}}`, wantValue: "v", wantFound: true},
		{name: "Found empty value", resp: `{"Ok":{"Value":{"found":true,"value":""}}}`, wantValue: "", wantFound: true},
		{name: "Not found", resp: `{"Ok":{"Value":{"found":false}}}`},
		{name: "Not found with null", resp: `{"Ok":{"Value":{"found":false,"value":null}}}`},
		{name: "Found without value", resp: `{"Ok":{"Value":{"found":true,"value":null}}}`},
		{name: "Application error", resp: `{"error":"key too long"}`, wantErr: common.ErrApplication},
		{name: "Acknowledgement", resp: `{"Ok":"Set"}`, wantErr: common.ErrProtocol},
		{name: "Pong", resp: `{"Ok":{"GossipMessage":{"Pong":{"sender":"a:1","members":[]}}}}`, wantErr: common.ErrProtocol},
		{name: "Unknown top level tag", resp: `{"Maybe":{}}`, wantErr: common.ErrProtocol},
		{name: "Invalid json", resp: `{"Ok":{"Value":`, wantErr: common.ErrProtocol},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newFakeStore(t, &fakeTransport{resp: []byte(tc.resp)})

			value, found, err := s.Get("key")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Expected %v, got %v", tc.wantErr, err)
				}
				if common.IsTransportFailure(err) {
					t.Errorf("Error must not be reported as transport failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if found != tc.wantFound || string(value) != tc.wantValue {
				t.Errorf("Expected (%q, %v), got (%q, %v)", tc.wantValue, tc.wantFound, value, found)
			}
		})
	}
}

// TestSetResponses tests that every acknowledgement shape is accepted for Set
func TestSetResponses(t *testing.T) {
	testCases := map[string]struct {
		resp    string
		wantErr error
	}{
		"Tag":               {resp: `{"Ok":"Set"}`},
		"Null":              {resp: `{"Ok":null}`},
		"Empty object":      {resp: `{"Ok":{}}`},
		"Unit variant":      {resp: `{"Ok":{"Set":null}}`},
		"Error":             {resp: `{"error":"read only"}`, wantErr: common.ErrApplication},
		"Error alias":       {resp: `{"Err":"read only"}`, wantErr: common.ErrApplication},
		"Missing ok":        {resp: `{}`, wantErr: common.ErrProtocol},
		"Not an object":     {resp: `[]`, wantErr: common.ErrProtocol},
		"Multiple payloads": {resp: `{"Ok":{"Set":null,"Get":null}}`, wantErr: common.ErrProtocol},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			s := newFakeStore(t, &fakeTransport{resp: []byte(tc.resp)})

			err := s.Set("key", []byte("value"))
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

// TestInvalidUTF8Rejected tests that bytes which are not valid UTF-8 are rejected before sending
func TestInvalidUTF8Rejected(t *testing.T) {
	invalid := string([]byte{0xff, 0xfe, 'a'})

	testCases := map[string]func(s IRPCStore) error{
		"Set value": func(s IRPCStore) error { return s.Set("key", []byte(invalid)) },
		"Set key":   func(s IRPCStore) error { return s.Set(invalid, []byte("value")) },
		"Get key": func(s IRPCStore) error {
			_, _, err := s.Get(invalid)
			return err
		},
	}

	for name, op := range testCases {
		t.Run(name, func(t *testing.T) {
			ft := &fakeTransport{resp: []byte(`{"Ok":"Set"}`)}
			s := newFakeStore(t, ft)

			if err := op(s); !errors.Is(err, common.ErrProtocol) {
				t.Errorf("Expected protocol error, got %v", err)
			}
			if len(ft.nodes) != 0 {
				t.Errorf("Expected no request to be sent, got %d", len(ft.nodes))
			}
		})
	}
}

// TestValueRoundTripUTF8 tests that multi-byte values survive a round trip through a node
func TestValueRoundTripUTF8(t *testing.T) {
	addrs := startCluster(t, 1)

	config := common.DefaultClientConfig()
	config.SeedAddress = addrs[0]
	config.TimeoutSecond = 5
	transport := tcp.NewTCPClientTransport(config)
	defer transport.Close()

	s, err := NewRPCStore(config, nil, transport, serializer.NewJSONSerializer())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	value := []byte("grüße \u2603 ☃")
	if err := s.Set("k", value); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, found, err := s.Get("k")
	if err != nil || !found || !reflect.DeepEqual(got, value) {
		t.Errorf("Expected %q, got %q (found=%v, err=%v)", value, got, found, err)
	}

	if err := s.Set("k", []byte{0xff, 0xfe, 'a'}); !errors.Is(err, common.ErrProtocol) {
		t.Fatalf("Expected protocol error, got %v", err)
	}
	got, _, _ = s.Get("k")
	if !reflect.DeepEqual(got, value) {
		t.Errorf("Rejected value must not overwrite the stored one, got %q", got)
	}
}

// TestApplicationErrorReason tests that the reason of the node is kept
func TestApplicationErrorReason(t *testing.T) {
	s := newFakeStore(t, &fakeTransport{resp: []byte(`{"error":"disk full"}`)})

	var appErr *common.ApplicationError
	if err := s.Set("k", nil); !errors.As(err, &appErr) {
		t.Fatalf("Expected application error, got %v", err)
	}
	if appErr.Reason != "disk full" {
		t.Errorf("Expected reason 'disk full', got %q", appErr.Reason)
	}
}

// TestTransportErrors tests that transport failures are passed through distinguishable
func TestTransportErrors(t *testing.T) {
	for _, sentinel := range []error{common.ErrConnect, common.ErrFraming, common.ErrTransport} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			ft := &fakeTransport{err: fmt.Errorf("%w: injected", sentinel)}
			s := newFakeStore(t, ft)

			_, _, err := s.Get("key")
			if !errors.Is(err, sentinel) || !common.IsTransportFailure(err) {
				t.Errorf("Expected %v, got %v", sentinel, err)
			}
			if !reflect.DeepEqual(ft.nodes, []string{"10.0.0.1:8000"}) {
				t.Errorf("Expected exactly one attempt on the seed, got %v", ft.nodes)
			}
		})
	}
}

// TestRequestStatus tests the classification used for request metrics
func TestRequestStatus(t *testing.T) {
	testCases := []struct {
		resp *common.Response
		err  error
		want string
	}{
		{resp: common.NewAckResponse("Set"), want: "ok"},
		{resp: common.NewValueResponse(nil), want: "not_found"},
		{err: &common.ApplicationError{Reason: "x"}, want: "app_error"},
		{err: fmt.Errorf("%w: x", common.ErrProtocol), want: "protocol_error"},
		{err: fmt.Errorf("%w: x", common.ErrFraming), want: "transport_error"},
	}

	for _, tc := range testCases {
		if got := requestStatus(tc.resp, tc.err); got != tc.want {
			t.Errorf("Expected %s, got %s", tc.want, got)
		}
	}
}
