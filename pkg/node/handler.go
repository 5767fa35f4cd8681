package node

// Handler answers one command. Handle gets exclusive access to the node state
// for the duration of the call and must not keep the pointer afterwards.
type Handler interface {
	Name() string
	Handle(state *State, req Message) (Message, error)
}

// HandlerFunc adapts a function to Handler under the given command name.
type HandlerFunc func(state *State, req Message) (Message, error)

type namedHandler struct {
	name string
	fn   HandlerFunc
}

// NewHandler returns a Handler answering name with fn.
func NewHandler(name string, fn HandlerFunc) Handler {
	return namedHandler{name: name, fn: fn}
}

func (h namedHandler) Name() string {
	return h.name
}

func (h namedHandler) Handle(state *State, req Message) (Message, error) {
	return h.fn(state, req)
}

// Reply addresses payload back to the sender of req, echoing its msg_id as
// both msg_id and in_reply_to.
func Reply(req Message, payload Payload) Message {
	return Message{
		Src:  req.Dest,
		Dest: req.Src,
		Body: Body{
			ID:        req.Body.ID,
			InReplyTo: req.Body.ID,
			Payload:   payload,
		},
	}
}
