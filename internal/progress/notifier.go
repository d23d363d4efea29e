// Package progress publishes analysis progress over a line-delimited JSON
// socket channel. Delivery is best-effort: the analyzer swallows send errors.
package progress

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Notifier publishes a progress percentage to interested subscribers.
type Notifier interface {
	Publish(percent int) error
}

type message struct {
	APIKey  string `json:"api_key"`
	Percent int    `json:"percent"`
}

// TCPNotifier sends one JSON line per progress update over a fresh TCP
// connection. Per-message dialing keeps the analyzer free of connection
// lifecycle state at the cost of a handshake per update.
type TCPNotifier struct {
	addr    string
	apiKey  string
	timeout time.Duration
}

// NewTCPNotifier returns a notifier publishing to addr (host:port).
func NewTCPNotifier(addr, apiKey string) *TCPNotifier {
	return &TCPNotifier{addr: addr, apiKey: apiKey, timeout: 5 * time.Second}
}

// Publish sends {"api_key":..., "percent":n} followed by a newline.
func (n *TCPNotifier) Publish(percent int) error {
	conn, err := net.DialTimeout("tcp", n.addr, n.timeout)
	if err != nil {
		return fmt.Errorf("dial progress channel: %w", err)
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(n.timeout))
	payload, err := json.Marshal(message{APIKey: n.apiKey, Percent: percent})
	if err != nil {
		return fmt.Errorf("marshal progress message: %w", err)
	}
	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return fmt.Errorf("write progress message: %w", err)
	}
	return nil
}

// NopNotifier discards all updates.
type NopNotifier struct{}

func (NopNotifier) Publish(int) error { return nil }
