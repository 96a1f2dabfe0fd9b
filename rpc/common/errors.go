package common

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Error Taxonomy
// --------------------------------------------------------------------------

var (
	// ErrConnect is returned if no connection to a node could be established
	ErrConnect = errors.New("connect error")
	// ErrFraming is returned if a frame could not be read completely (stream ended early)
	ErrFraming = errors.New("framing error")
	// ErrTransport is returned for any other read or write failure on an established connection
	ErrTransport = errors.New("transport error")
	// ErrProtocol is returned if a frame does not contain a valid message
	ErrProtocol = errors.New("protocol error")
	// ErrApplication is matched by every *ApplicationError
	ErrApplication = errors.New("application error")
)

// ApplicationError is returned if the store answered with an error reason.
// It is a logical failure and says nothing about the health of the connection.
type ApplicationError struct {
	Reason string
}

func (e *ApplicationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrApplication, e.Reason)
}

// Is makes errors.Is(err, ErrApplication) work for all application errors
func (e *ApplicationError) Is(target error) bool {
	return target == ErrApplication
}

// IsTransportFailure reports whether err was caused by the transport (connect, framing
// or read/write failure) rather than by the content of a message.
func IsTransportFailure(err error) bool {
	return errors.Is(err, ErrConnect) || errors.Is(err, ErrFraming) || errors.Is(err, ErrTransport)
}
