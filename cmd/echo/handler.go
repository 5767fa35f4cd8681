package main

import (
	"fmt"

	"github.com/dostini/maelstrom-node/pkg/node"
)

type echoHandler struct{}

func (echoHandler) Name() string {
	return "echo"
}

func (echoHandler) Handle(_ *node.State, req node.Message) (node.Message, error) {
	request, ok := req.Body.Payload.(node.Echo)
	if !ok {
		return node.Message{}, fmt.Errorf("expected echo payload, got %T", req.Body.Payload)
	}

	return node.Reply(req, node.EchoOk{Echo: request.Echo}), nil
}
