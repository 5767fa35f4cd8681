package node

import (
	"bytes"
	"encoding/json"
)

// Payload is the typed part of a message body, discriminated on the wire by
// its "type" field.
type Payload interface {
	Type() string
}

type Init struct {
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids"`
}

type InitOk struct{}

type Echo struct {
	Echo string `json:"echo"`
}

type EchoOk struct {
	Echo string `json:"echo"`
}

type Generate struct{}

type GenerateOk struct {
	ID string `json:"id"`
}

func (Init) Type() string       { return "init" }
func (InitOk) Type() string     { return "init_ok" }
func (Echo) Type() string       { return "echo" }
func (EchoOk) Type() string     { return "echo_ok" }
func (Generate) Type() string   { return "generate" }
func (GenerateOk) Type() string { return "generate_ok" }

type payloadKind struct {
	decode func(data []byte) (Payload, error)
	// fields are the variant's exact wire keys, all of them required.
	fields []string
}

// payloadKinds lists every variant the decoder accepts, keyed by tag.
var payloadKinds = map[string]payloadKind{
	"init":        {decode: decodeAs[Init], fields: []string{"node_id", "node_ids"}},
	"init_ok":     {decode: decodeAs[InitOk]},
	"echo":        {decode: decodeAs[Echo], fields: []string{"echo"}},
	"echo_ok":     {decode: decodeAs[EchoOk], fields: []string{"echo"}},
	"generate":    {decode: decodeAs[Generate]},
	"generate_ok": {decode: decodeAs[GenerateOk], fields: []string{"id"}},
}

func decodeAs[T Payload](data []byte) (Payload, error) {
	var v T

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	return v, nil
}

// Command returns the routing key for a request payload. Replies and unknown
// variants are never dispatched and yield ErrUnroutable.
func Command(p Payload) (string, error) {
	switch p.(type) {
	case Init:
		return "init", nil
	case Echo:
		return "echo", nil
	case Generate:
		return "generate", nil
	}

	if p == nil {
		return "", ErrUnroutable
	}
	return "", &RoutingError{Command: p.Type()}
}
