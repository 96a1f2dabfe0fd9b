package common

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Command Structure
// --------------------------------------------------------------------------

// Command represents a single request sent to a store node.
// Which fields are used depends on the type of the command.
type Command struct {
	// Type of command
	CmdType CommandType

	Key   string // Used for: Get, Set
	Value string // Used for: Set

	// Used for: Gossip
	Gossip *GossipMessage
}

// GossipMessage is the payload of the membership exchange.
// A Ping carries no data, a Pong lists the sender and the members it knows.
type GossipMessage struct {
	GossipType GossipType
	Sender     string
	Members    []string
}

// --------------------------------------------------------------------------
// Response Structure
// --------------------------------------------------------------------------

// Response represents a single response received from a store node.
// RespType tells whether the node accepted the command (RespTOk) or
// reported an application error (RespTError). For ok responses the
// Payload field tells which of the payload fields are set.
type Response struct {
	RespType ResponseType
	Payload  PayloadType

	// Used for: Value payload
	Found bool
	Value *string

	// Used for: GossipMessage payload
	Gossip *GossipMessage

	// Used for: Ack payload, the tag the node answered with (may be empty)
	Tag string

	// Used for: Error responses
	Err string
}

// --------------------------------------------------------------------------
// Factory Functions
// --------------------------------------------------------------------------

// NewGetRequest creates a new Get command
func NewGetRequest(key string) *Command {
	return &Command{
		CmdType: CmdTGet,
		Key:     key,
	}
}

// NewSetRequest creates a new Set command
func NewSetRequest(key, value string) *Command {
	return &Command{
		CmdType: CmdTSet,
		Key:     key,
		Value:   value,
	}
}

// NewPingRequest creates a new Gossip(Ping) command
func NewPingRequest() *Command {
	return &Command{
		CmdType: CmdTGossip,
		Gossip:  &GossipMessage{GossipType: GossipTPing},
	}
}

// NewValueResponse creates the response to a Get command.
// A nil value results in found=false.
func NewValueResponse(value *string) *Response {
	return &Response{
		RespType: RespTOk,
		Payload:  PayloadTValue,
		Found:    value != nil,
		Value:    value,
	}
}

// NewPongResponse creates the response to a Gossip(Ping) command
func NewPongResponse(sender string, members []string) *Response {
	return &Response{
		RespType: RespTOk,
		Payload:  PayloadTGossip,
		Gossip: &GossipMessage{
			GossipType: GossipTPong,
			Sender:     sender,
			Members:    members,
		},
	}
}

// NewAckResponse creates a plain acknowledgement (e.g. for Set)
func NewAckResponse(tag string) *Response {
	return &Response{
		RespType: RespTOk,
		Payload:  PayloadTAck,
		Tag:      tag,
	}
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Response {
	return &Response{
		RespType: RespTError,
		Err:      err,
	}
}

// Pong returns the Pong message carried by the response or nil
func (r *Response) Pong() *GossipMessage {
	if r.RespType != RespTOk || r.Payload != PayloadTGossip || r.Gossip == nil {
		return nil
	}
	if r.Gossip.GossipType != GossipTPong {
		return nil
	}
	return r.Gossip
}

// Expects checks whether the response is a valid answer to a command of the given type.
// It returns an *ApplicationError for error responses and an ErrProtocol error if the
// payload does not belong to the command.
func (r *Response) Expects(cmdType CommandType) error {
	if r.RespType == RespTError {
		return &ApplicationError{Reason: r.Err}
	}
	if r.RespType != RespTOk {
		return fmt.Errorf("%w: unknown response type %d", ErrProtocol, r.RespType)
	}

	switch cmdType {
	case CmdTGet:
		if r.Payload != PayloadTValue {
			return fmt.Errorf("%w: expected Value payload for get, got %s", ErrProtocol, r.Payload)
		}
	case CmdTGossip:
		if r.Pong() == nil {
			return fmt.Errorf("%w: expected Pong payload for gossip, got %s", ErrProtocol, r.Payload)
		}
	case CmdTSet:
		// any ok payload acknowledges a set
	default:
		return fmt.Errorf("%w: unknown command type %d", ErrProtocol, cmdType)
	}
	return nil
}

// --------------------------------------------------------------------------
// Type Definitions
// --------------------------------------------------------------------------

// CommandType defines the type of command sent to a node.
type CommandType uint8

const (
	CmdTUnknown CommandType = iota
	CmdTGet                 // Get a value by key
	CmdTSet                 // Set a key-value pair
	CmdTGossip              // Membership exchange
)

// String returns the wire tag of a CommandType.
func (t CommandType) String() string {
	switch t {
	case CmdTGet:
		return "Get"
	case CmdTSet:
		return "Set"
	case CmdTGossip:
		return "Gossip"
	default:
		return "unknown"
	}
}

// GossipType defines the kind of gossip message.
type GossipType uint8

const (
	GossipTUnknown GossipType = iota
	GossipTPing
	GossipTPong
)

func (t GossipType) String() string {
	switch t {
	case GossipTPing:
		return "Ping"
	case GossipTPong:
		return "Pong"
	default:
		return "unknown"
	}
}

// ResponseType defines whether a node accepted a command.
type ResponseType uint8

const (
	RespTUnknown ResponseType = iota
	RespTOk
	RespTError
)

func (t ResponseType) String() string {
	switch t {
	case RespTOk:
		return "Ok"
	case RespTError:
		return "error"
	default:
		return "unknown"
	}
}

// PayloadType defines which payload an ok response carries.
type PayloadType uint8

const (
	PayloadTNone   PayloadType = iota
	PayloadTValue              // result of a Get
	PayloadTGossip             // result of a Gossip
	PayloadTAck                // plain acknowledgement
)

func (t PayloadType) String() string {
	switch t {
	case PayloadTValue:
		return "Value"
	case PayloadTGossip:
		return "GossipMessage"
	case PayloadTAck:
		return "Ack"
	default:
		return "none"
	}
}
