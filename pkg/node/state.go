package node

// State is the node's identity and peer list, set by the init handshake.
type State struct {
	ID         string
	Neighbours []string

	initialized bool
}

// Initialized reports whether an init message has been applied, even one
// carrying an empty node id.
func (s State) Initialized() bool {
	return s.initialized
}
