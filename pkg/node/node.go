package node

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Node reads requests from its input, routes each one to the handler
// registered for its command and writes the reply to its output. Requests
// are handled one at a time, in the order they arrive.
type Node struct {
	ctx context.Context

	state State

	in     *bufio.Reader
	out    *bufio.Writer
	logger *logrus.Entry

	handlers map[string]Handler
}

func NewNode(ctx context.Context, config *Config) *Node {
	n := Node{
		ctx:      ctx,
		in:       bufio.NewReader(config.In),
		out:      bufio.NewWriter(config.Out),
		logger:   config.Logger(),
		handlers: map[string]Handler{},
	}

	n.Register(&initHandler{logger: n.logger})

	return &n
}

// Register adds h under h.Name(), replacing any handler already registered
// for that command.
func (n *Node) Register(h Handler) {
	n.handlers[h.Name()] = h
}

// Handle registers fn as the handler for command.
func (n *Node) Handle(command string, fn HandlerFunc) {
	n.Register(NewHandler(command, fn))
}

// State returns a copy of the node's current identity and peers.
func (n *Node) State() State {
	s := n.state
	s.Neighbours = n.Neighbours()
	return s
}

func (n *Node) ID() string {
	return n.state.ID
}

func (n *Node) Neighbours() []string {
	return append([]string(nil), n.state.Neighbours...)
}

// Run processes input until it is exhausted, returning nil at end of input.
// Malformed or unroutable lines are logged and dropped. Only a failure of the
// input or output stream, or the node's context being done, stops it early.
func (n *Node) Run() error {
	n.logger.Debug("starting node")

	for {
		select {
		case <-n.ctx.Done():
			return n.ctx.Err()
		default:
		}

		line, readErr := n.in.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("%w: reading input: %w", ErrTransport, readErr)
		}

		if len(line) > 0 {
			if err := n.process(line); err != nil {
				return err
			}
		}

		if readErr != nil {
			n.logger.Debug("input closed")
			return nil
		}
	}
}

// process handles one input line. Only transport errors are returned, every
// other failure is logged.
func (n *Node) process(line []byte) error {
	line = bytes.TrimSpace(line)
	n.logger.WithField("in", string(line)).Debug("received")

	output, err := n.handleMessage(line)
	if err != nil {
		n.logError(err)
		return nil
	}

	output = append(output, '\n')
	if _, err := n.out.Write(output); err != nil {
		return fmt.Errorf("%w: writing output: %w", ErrTransport, err)
	}
	if err := n.out.Flush(); err != nil {
		return fmt.Errorf("%w: flushing output: %w", ErrTransport, err)
	}

	n.logger.WithField("out", string(output[:len(output)-1])).Debug("replied")

	return nil
}

// handleMessage decodes, routes and answers a single line, returning the
// encoded reply.
func (n *Node) handleMessage(line []byte) ([]byte, error) {
	msg, err := DecodeMessage(line)
	if err != nil {
		return nil, err
	}

	command, err := Command(msg.Body.Payload)
	if err != nil {
		return nil, err
	}

	handler, found := n.handlers[command]
	if !found {
		return nil, &RoutingError{Command: command}
	}

	reply, err := handler.Handle(&n.state, msg)
	if err != nil {
		return nil, fmt.Errorf("handling %s: %w", command, err)
	}

	return EncodeMessage(reply)
}

func (n *Node) logError(err error) {
	entry := n.logger.WithError(err)

	switch {
	case errors.Is(err, ErrDecode):
		entry.Warn("failed to decode message")
	case errors.Is(err, ErrUnroutable):
		entry.Warn("no handler for command")
	case errors.Is(err, ErrEncode):
		entry.Error("failed to encode reply")
	default:
		entry.Error("error handling message")
	}
}
