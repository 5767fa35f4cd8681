package node

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode marks a line that is not a well-formed message.
	ErrDecode = errors.New("malformed message")
	// ErrUnroutable marks a message no handler can answer.
	ErrUnroutable = errors.New("unroutable message")
	// ErrEncode marks a reply that could not be serialized.
	ErrEncode = errors.New("cannot encode message")
	// ErrTransport marks a broken input or output stream. It is the only
	// error that stops Run.
	ErrTransport = errors.New("transport failure")
)

// RoutingError is returned for reply-only payloads and for commands with no
// registered handler.
type RoutingError struct {
	Command string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("no handler for command %q", e.Command)
}

func (e *RoutingError) Unwrap() error {
	return ErrUnroutable
}
