package main

import (
	"fmt"
	"time"

	"github.com/dostini/maelstrom-node/pkg/node"
)

// generateHandler builds ids from the node id and the wall clock in
// microseconds. The timestamp never repeats within a process: when the clock
// has not moved past the last value handed out, the last value plus one is
// used instead.
type generateHandler struct {
	now  func() time.Time
	last int64
}

func newGenerateHandler(now func() time.Time) *generateHandler {
	return &generateHandler{now: now}
}

func (h *generateHandler) Name() string {
	return "generate"
}

func (h *generateHandler) Handle(state *node.State, req node.Message) (node.Message, error) {
	if _, ok := req.Body.Payload.(node.Generate); !ok {
		return node.Message{}, fmt.Errorf("expected generate payload, got %T", req.Body.Payload)
	}

	return node.Reply(req, node.GenerateOk{
		ID: fmt.Sprintf("%s_%d", state.ID, h.next()),
	}), nil
}

func (h *generateHandler) next() int64 {
	micros := h.now().UnixMicro()
	if micros <= h.last {
		micros = h.last + 1
	}
	h.last = micros

	return micros
}
