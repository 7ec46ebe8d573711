package connection

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// Reply is one line of the control protocol.
type Reply struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data,omitempty"`
	Error string          `json:"error,omitempty"`
}

// SocketClient speaks the control protocol over a Unix socket: one
// command per line out, one JSON reply per line back.
type SocketClient struct {
	path   string
	conn   net.Conn
	reader *bufio.Reader
}

// NewSocketClient creates a new socket client.
func NewSocketClient(socketPath string) *SocketClient {
	return &SocketClient{path: socketPath}
}

// Connect dials the socket.
func (c *SocketClient) Connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.path)
	if err != nil {
		return fmt.Errorf("dial control socket %s: %w", c.path, err)
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close closes the socket connection.
func (c *SocketClient) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn, c.reader = nil, nil
	return err
}

// Execute sends one command and decodes the reply data into target,
// which may be nil. A reply with ok=false is returned as an error.
func (c *SocketClient) Execute(ctx context.Context, cmd string, target any) error {
	if strings.ContainsAny(cmd, "\r\n") {
		return errors.New("command must be a single line")
	}
	if c.conn == nil {
		if err := c.Connect(ctx); err != nil {
			return err
		}
	}
	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}

	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		return err
	}
	line, err := c.reader.ReadBytes('\n')
	if err != nil {
		return err
	}

	var reply Reply
	if err := json.Unmarshal(line, &reply); err != nil {
		return fmt.Errorf("parse reply: %w", err)
	}
	if !reply.OK {
		return errors.New(reply.Error)
	}
	if target != nil && len(reply.Data) > 0 {
		return json.Unmarshal(reply.Data, target)
	}
	return nil
}
