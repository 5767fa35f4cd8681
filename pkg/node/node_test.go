package node

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	initLine = `{"src":"c1","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`
	echoLine = `{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":2,"echo":"hello"}}`
)

var echo = NewHandler("echo", func(_ *State, req Message) (Message, error) {
	request, ok := req.Body.Payload.(Echo)
	if !ok {
		return Message{}, errors.New("not an echo")
	}
	return Reply(req, EchoOk{Echo: request.Echo}), nil
})

func newTestNode(t *testing.T, input string) (*Node, *bytes.Buffer) {
	out := &bytes.Buffer{}
	n := NewNode(context.Background(), NewTestConfig(t, strings.NewReader(input), out))
	return n, out
}

func outputLines(out *bytes.Buffer) []string {
	s := strings.TrimSuffix(out.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestRunInitHandshake(t *testing.T) {
	n, out := newTestNode(t, initLine+"\n")

	require.NoError(t, n.Run())

	lines := outputLines(out)
	require.Len(t, lines, 1)
	assert.JSONEq(t,
		`{"src":"n1","dest":"c1","body":{"type":"init_ok","msg_id":1,"in_reply_to":1}}`,
		lines[0])

	state := n.State()
	assert.Equal(t, "n1", state.ID)
	assert.Equal(t, []string{"n1"}, state.Neighbours)
	assert.True(t, state.Initialized())
}

func TestRunEcho(t *testing.T) {
	n, out := newTestNode(t, initLine+"\n"+echoLine+"\n")
	n.Register(echo)

	require.NoError(t, n.Run())

	lines := outputLines(out)
	require.Len(t, lines, 2)
	assert.JSONEq(t,
		`{"src":"n1","dest":"c1","body":{"type":"echo_ok","msg_id":2,"in_reply_to":2,"echo":"hello"}}`,
		lines[1])
}

func TestRunSwapsAddressing(t *testing.T) {
	input := `{"src":"A","dest":"B","body":{"type":"echo","msg_id":5,"echo":"x"}}` + "\n"
	n, out := newTestNode(t, input)
	n.Register(echo)

	require.NoError(t, n.Run())

	lines := outputLines(out)
	require.Len(t, lines, 1)
	reply, err := DecodeMessage([]byte(lines[0]))
	require.NoError(t, err)
	assert.Equal(t, "B", reply.Src)
	assert.Equal(t, "A", reply.Dest)
	require.NotNil(t, reply.Body.InReplyTo)
	assert.Equal(t, 5, *reply.Body.InReplyTo)
}

func TestRunDropsBadLines(t *testing.T) {
	input := strings.Join([]string{
		`not json at all`,
		``,
		`{"src":"c1","dest":"n1","body":{"type":"unknown_cmd","msg_id":9}}`,
		`{"src":"c1","dest":"n1","body":{"type":"generate","msg_id":3}}`,
		`{"src":"n1","dest":"c1","body":{"type":"echo_ok","in_reply_to":2,"echo":"x"}}`,
		`{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":2}}`,
		`{"src":"c1","dest":"n1","DEST":"evil","body":{"type":"echo","msg_id":2,"echo":"x"}}`,
		`{"src":"c1","dest":"n1","body":{"type":"echo","msg_id":-2,"echo":"x"}}`,
		echoLine,
	}, "\n") + "\n"

	n, out := newTestNode(t, input)
	n.Register(echo)

	require.NoError(t, n.Run())

	lines := outputLines(out)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"echo_ok"`)
	assert.NotContains(t, out.String(), "evil")
}

func TestRunDropsHandlerErrors(t *testing.T) {
	n, out := newTestNode(t, echoLine+"\n"+initLine+"\n")
	n.Handle("echo", func(*State, Message) (Message, error) {
		return Message{}, errors.New("boom")
	})

	require.NoError(t, n.Run())
	assert.Len(t, outputLines(out), 1)
}

func TestRunDropsUnencodableReplies(t *testing.T) {
	n, out := newTestNode(t, echoLine+"\n")
	n.Handle("echo", func(_ *State, req Message) (Message, error) {
		return Reply(req, nil), nil
	})

	require.NoError(t, n.Run())
	assert.Empty(t, out.String())
}

func TestRunReinitOverwritesState(t *testing.T) {
	input := initLine + "\n" +
		`{"src":"c1","dest":"n2","body":{"type":"init","msg_id":2,"node_id":"n2","node_ids":["n1","n2"]}}` + "\n"
	n, out := newTestNode(t, input)

	require.NoError(t, n.Run())

	assert.Len(t, outputLines(out), 2)
	assert.Equal(t, "n2", n.ID())
	assert.Equal(t, []string{"n1", "n2"}, n.Neighbours())
}

func TestRunHandlersSeeState(t *testing.T) {
	var seen []string
	n, _ := newTestNode(t, echoLine+"\n"+initLine+"\n"+echoLine+"\n")
	n.Handle("echo", func(state *State, req Message) (Message, error) {
		seen = append(seen, state.ID)
		return Reply(req, EchoOk{}), nil
	})

	require.NoError(t, n.Run())
	assert.Equal(t, []string{"", "n1"}, seen)
}

func TestRegisterReplaces(t *testing.T) {
	n, out := newTestNode(t, echoLine+"\n")
	n.Register(echo)
	n.Handle("echo", func(_ *State, req Message) (Message, error) {
		return Reply(req, EchoOk{Echo: "replaced"}), nil
	})

	require.NoError(t, n.Run())
	assert.Contains(t, out.String(), `"replaced"`)
}

func TestRunLastLineWithoutNewline(t *testing.T) {
	n, out := newTestNode(t, initLine)

	require.NoError(t, n.Run())
	assert.Len(t, outputLines(out), 1)
}

func TestRunEmptyInput(t *testing.T) {
	n, out := newTestNode(t, "")

	require.NoError(t, n.Run())
	assert.Empty(t, out.String())
	assert.False(t, n.State().Initialized())
}

func TestRunReadFailure(t *testing.T) {
	out := &bytes.Buffer{}
	in := io.MultiReader(strings.NewReader(initLine+"\n"), iotest.ErrReader(errors.New("descriptor fault")))
	n := NewNode(context.Background(), NewTestConfig(t, in, out))

	err := n.Run()
	assert.ErrorIs(t, err, ErrTransport)
	assert.Len(t, outputLines(out), 1)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestRunWriteFailure(t *testing.T) {
	n := NewNode(context.Background(), NewTestConfig(t, strings.NewReader(initLine+"\n"), failingWriter{}))

	assert.ErrorIs(t, n.Run(), ErrTransport)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := &bytes.Buffer{}
	n := NewNode(ctx, NewTestConfig(t, strings.NewReader(initLine+"\n"), out))

	assert.ErrorIs(t, n.Run(), context.Canceled)
	assert.Empty(t, out.String())
}

func TestStateIsCopied(t *testing.T) {
	n, _ := newTestNode(t, initLine+"\n")
	require.NoError(t, n.Run())

	state := n.State()
	state.Neighbours[0] = "changed"
	assert.Equal(t, []string{"n1"}, n.Neighbours())

	neighbours := n.Neighbours()
	neighbours[0] = "changed"
	assert.Equal(t, []string{"n1"}, n.State().Neighbours)
}
