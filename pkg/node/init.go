package node

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

type initHandler struct {
	logger *logrus.Entry
}

func (h *initHandler) Name() string {
	return "init"
}

func (h *initHandler) Handle(state *State, req Message) (Message, error) {
	request, ok := req.Body.Payload.(Init)
	if !ok {
		return Message{}, fmt.Errorf("init handler got %T payload", req.Body.Payload)
	}

	state.ID = request.NodeID
	state.Neighbours = request.NodeIDs
	state.initialized = true

	h.logger.WithFields(logrus.Fields{
		"node_id":    state.ID,
		"neighbours": state.Neighbours,
	}).Info("node initialized")

	return Reply(req, InitOk{}), nil
}
