package client

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/rexkv/rpc/cluster"
	"github.com/ValentinKolb/rexkv/rpc/common"
	"github.com/ValentinKolb/rexkv/rpc/serializer"
	"github.com/ValentinKolb/rexkv/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var (
	Logger = logger.GetLogger("rpc")
)

// Dispatcher sends commands to a randomly chosen node of the registry.
// A failed request is neither retried nor sent to another node, and the
// node stays in the registry. Every call picks a node anew.
type Dispatcher struct {
	registry   *cluster.Registry
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// NewDispatcher creates a dispatcher working on the given registry
func NewDispatcher(
	registry *cluster.Registry,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) *Dispatcher {
	return &Dispatcher{
		registry:   registry,
		transport:  transport,
		serializer: serializer,
	}
}

// Execute sends the command to a random node and returns the decoded response.
//
// The returned error wraps one of the errors of the common package:
// ErrConnect, ErrFraming or ErrTransport if the exchange failed,
// ErrProtocol if the answer is not a valid response to the command and
// an *common.ApplicationError if the node answered with an error reason.
// A Get for a missing key is not an error.
func (d *Dispatcher) Execute(cmd *common.Command) (resp *common.Response, err error) {
	node := d.registry.PickRandom()
	start := time.Now()

	defer func() {
		metrics.GetOrCreateCounter(fmt.Sprintf(`rex_requests_total{cmd=%q,status=%q}`, cmd.CmdType, requestStatus(resp, err))).Inc()
		metrics.GetOrCreateHistogram(fmt.Sprintf(`rex_request_duration_seconds{cmd=%q}`, cmd.CmdType)).UpdateDuration(start)
	}()

	resp, err = d.executeOn(node, cmd)
	if err != nil {
		if common.IsTransportFailure(err) {
			Logger.Warningf("%s request to %s failed: %v", cmd.CmdType, node, err)
		} else {
			Logger.Debugf("%s request to %s failed: %v", cmd.CmdType, node, err)
		}
		return nil, fmt.Errorf("%s request to %s failed: %w", cmd.CmdType, node, err)
	}
	return resp, nil
}

// executeOn sends the command to the given node.
// The transport returns the connection to its pool (or closes it) on every path.
func (d *Dispatcher) executeOn(node string, cmd *common.Command) (*common.Response, error) {
	// Serialize the request
	reqBytes, err := d.serializer.SerializeCommand(*cmd)
	if err != nil {
		return nil, err
	}

	// Send the request
	respBytes, err := d.transport.Send(node, reqBytes)
	if err != nil {
		return nil, err
	}

	// Deserialize the response
	resp := &common.Response{}
	if err := d.serializer.DeserializeResponse(respBytes, resp); err != nil {
		return nil, err
	}

	// Check if the response is an error response or belongs to another command
	if err := resp.Expects(cmd.CmdType); err != nil {
		return nil, err
	}

	return resp, nil
}

// requestStatus classifies the outcome of a request for metrics
func requestStatus(resp *common.Response, err error) string {
	switch {
	case err == nil && resp.Payload == common.PayloadTValue && !resp.Found:
		return "not_found"
	case err == nil:
		return "ok"
	case errors.Is(err, common.ErrApplication):
		return "app_error"
	case errors.Is(err, common.ErrProtocol):
		return "protocol_error"
	default:
		return "transport_error"
	}
}
