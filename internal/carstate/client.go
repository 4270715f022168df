package carstate

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/liftctl/liftctl/internal/wireerr"
)

// Client is a thin synchronous client for a car's carstate socket, used
// by the one-shot command tools and the safety monitor.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

// Dial connects to a car's carstate socket.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("carstate: dial %q: %w: %w", socketPath, wireerr.ErrShmUnavailable, err)
	}
	return &Client{conn: conn, reader: bufio.NewReader(conn)}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) call(req Request) (Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}
	data = append(data, '\n')
	if _, err := c.conn.Write(data); err != nil {
		return Response{}, fmt.Errorf("carstate: write request: %w", err)
	}
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return Response{}, fmt.Errorf("carstate: read response: %w", err)
	}
	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return Response{}, fmt.Errorf("carstate: decode response: %w", err)
	}
	return resp, nil
}

// Snapshot fetches the car's current state.
func (c *Client) Snapshot() (Snapshot, error) {
	resp, err := c.call(Request{Cmd: "snapshot"})
	if err != nil {
		return Snapshot{}, err
	}
	if !resp.OK || resp.Snapshot == nil {
		return Snapshot{}, fmt.Errorf("carstate: %s", resp.Error)
	}
	return *resp.Snapshot, nil
}

// Watch blocks, server-side, until the car's state next changes (or the
// timeout elapses — 0 means no timeout) and returns the resulting state.
// The server gives each request a 10 s connection deadline, so a change
// that arrives later than that is not delivered and Watch returns an
// error instead.
func (c *Client) Watch(timeout time.Duration) (Snapshot, error) {
	resp, err := c.call(Request{Cmd: "watch", TimeoutMs: int(timeout / time.Millisecond)})
	if err != nil {
		return Snapshot{}, err
	}
	if !resp.OK || resp.Snapshot == nil {
		return Snapshot{}, fmt.Errorf("carstate: %s", resp.Error)
	}
	return *resp.Snapshot, nil
}

// SafetyCheck runs the safety invariant check server-side and returns any
// messages it produced.
func (c *Client) SafetyCheck() (messages []string, changed bool, err error) {
	resp, err := c.call(Request{Cmd: "safety_check"})
	if err != nil {
		return nil, false, err
	}
	if !resp.OK {
		return nil, false, fmt.Errorf("carstate: %s", resp.Error)
	}
	return resp.Messages, resp.Changed, nil
}

// Override sends one of the seven operator overrides (open, close, stop,
// service_on, service_off, up, down).
func (c *Client) Override(cmd string) error {
	resp, err := c.call(Request{Cmd: cmd})
	if err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("%s", resp.Error)
	}
	return nil
}

// SocketPath returns the conventional socket path for a car's carstate
// server under dir.
func SocketPath(dir, carName string) string {
	return dir + "/car" + carName + ".sock"
}

// MaxCarNameLength mirrors the original's shared-memory name length
// limit; Go strings have no such buffer, but the limit is kept as part of
// the CLI's observable contract ("Car name too long.").
const MaxCarNameLength = 255

// ValidateName reports whether name fits within MaxCarNameLength once
// prefixed the way the original's shared-memory name was.
func ValidateName(name string) bool {
	const prefix = "/car"
	return len(name)+len(prefix) < MaxCarNameLength
}
