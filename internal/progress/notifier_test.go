package progress

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPNotifier_PublishesJSONLine(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	lines := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		line, _ := bufio.NewReader(conn).ReadString('\n')
		lines <- line
	}()

	n := NewTCPNotifier(ln.Addr().String(), "key-123")
	require.NoError(t, n.Publish(42))

	var msg message
	require.NoError(t, json.Unmarshal([]byte(<-lines), &msg))
	assert.Equal(t, "key-123", msg.APIKey)
	assert.Equal(t, 42, msg.Percent)
}

func TestTCPNotifier_DialFailure(t *testing.T) {
	t.Parallel()

	// Reserved port with no listener.
	n := NewTCPNotifier("127.0.0.1:1", "key")
	assert.Error(t, n.Publish(10))
}

func TestNopNotifier(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NopNotifier{}.Publish(100))
}
