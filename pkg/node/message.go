package node

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Message is the envelope exchanged with the harness, one JSON object per
// line.
type Message struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
	Body Body   `json:"body"`
}

// Body carries the optional request/reply ids next to the payload. On the
// wire the payload fields sit in the same object as msg_id, in_reply_to and
// type.
type Body struct {
	ID        *int
	InReplyTo *int
	Payload   Payload
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("message is null")
	}

	// Keys match exactly. Other envelope keys, such as the id the harness
	// may add, are ignored unless they only differ from ours in case.
	for key := range fields {
		switch {
		case key == "src", key == "dest", key == "body":
		case strings.EqualFold(key, "src"), strings.EqualFold(key, "dest"), strings.EqualFold(key, "body"):
			return fmt.Errorf("unexpected field %s", key)
		}
	}

	for _, name := range []string{"src", "dest", "body"} {
		if raw, ok := fields[name]; !ok || isNull(raw) {
			return fmt.Errorf("missing field %s", name)
		}
	}

	var msg Message
	if err := json.Unmarshal(fields["src"], &msg.Src); err != nil {
		return fmt.Errorf("field src: %w", err)
	}
	if err := json.Unmarshal(fields["dest"], &msg.Dest); err != nil {
		return fmt.Errorf("field dest: %w", err)
	}
	if err := json.Unmarshal(fields["body"], &msg.Body); err != nil {
		return fmt.Errorf("field body: %w", err)
	}

	*m = msg

	return nil
}

func (b Body) MarshalJSON() ([]byte, error) {
	if b.Payload == nil {
		return nil, errors.New("body has no payload")
	}

	tempJson, err := json.Marshal(b.Payload)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(tempJson, &data); err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}

	data["type"] = b.Payload.Type()
	if b.ID != nil {
		data["msg_id"] = *b.ID
	}
	if b.InReplyTo != nil {
		data["in_reply_to"] = *b.InReplyTo
	}

	return json.Marshal(data)
}

func (b *Body) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return errors.New("body is null")
	}

	rawType, ok := fields["type"]
	if !ok {
		return errors.New("missing field type")
	}
	var tag string
	if err := json.Unmarshal(rawType, &tag); err != nil {
		return fmt.Errorf("field type: %w", err)
	}

	kind, ok := payloadKinds[tag]
	if !ok {
		return fmt.Errorf("unknown message type %q", tag)
	}

	id, err := decodeID(fields, "msg_id")
	if err != nil {
		return err
	}
	inReplyTo, err := decodeID(fields, "in_reply_to")
	if err != nil {
		return err
	}

	delete(fields, "type")
	delete(fields, "msg_id")
	delete(fields, "in_reply_to")

	for _, name := range kind.fields {
		if raw, ok := fields[name]; !ok || isNull(raw) {
			return fmt.Errorf("%s: missing field %s", tag, name)
		}
	}
	for key := range fields {
		if !slices.Contains(kind.fields, key) {
			return fmt.Errorf("%s: unexpected field %s", tag, key)
		}
	}

	rest, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	payload, err := kind.decode(rest)
	if err != nil {
		return fmt.Errorf("%s: %w", tag, err)
	}

	b.ID = id
	b.InReplyTo = inReplyTo
	b.Payload = payload

	return nil
}

// decodeID reads an optional non-negative id. Absent and null both yield nil.
func decodeID(fields map[string]json.RawMessage, name string) (*int, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, nil
	}

	var id *int
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("field %s: %w", name, err)
	}
	if id != nil && *id < 0 {
		return nil, fmt.Errorf("field %s: negative id %d", name, *id)
	}

	return id, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// DecodeMessage parses one protocol line. Every failure wraps ErrDecode.
func DecodeMessage(line []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	return msg, nil
}

// EncodeMessage renders msg as a single JSON object without a trailing
// newline. Every failure wraps ErrEncode.
func EncodeMessage(msg Message) ([]byte, error) {
	output, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	return output, nil
}
