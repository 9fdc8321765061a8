package relay

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"
)

// Client is a relay connection from a collaboration session.
type Client struct {
	conn   net.Conn
	peerID int

	encMu sync.Mutex
	enc   *json.Encoder

	frames    chan Frame
	done      chan struct{}
	closeOnce sync.Once
}

// Dial connects to a relay and waits for its welcome frame.
func Dial(ctx context.Context, addr string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial relay %s: %w", addr, err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetReadDeadline(deadline)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	if !scanner.Scan() {
		conn.Close()
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read relay welcome: %w", err)
		}
		return nil, fmt.Errorf("read relay welcome: connection closed")
	}

	var hello Frame
	if err := json.Unmarshal(scanner.Bytes(), &hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("decode relay welcome: %w", err)
	}
	switch hello.Type {
	case TypeWelcome:
	case TypeError:
		conn.Close()
		return nil, fmt.Errorf("relay refused connection: %s", hello.Error)
	default:
		conn.Close()
		return nil, fmt.Errorf("unexpected relay frame %q", hello.Type)
	}
	_ = conn.SetReadDeadline(time.Time{})

	c := &Client{
		conn:   conn,
		peerID: hello.Peer,
		enc:    json.NewEncoder(conn),
		frames: make(chan Frame, 64),
		done:   make(chan struct{}),
	}
	go c.readLoop(scanner)
	return c, nil
}

// PeerID returns the number the relay assigned to this connection.
func (c *Client) PeerID() int {
	return c.peerID
}

// Frames delivers frames from the relay. It is closed when the connection
// ends.
func (c *Client) Frames() <-chan Frame {
	return c.frames
}

// Join enters room under the given display name.
func (c *Client) Join(room, user string) error {
	return c.send(Frame{Type: TypeJoin, Room: room, User: user})
}

// Leave exits the current room.
func (c *Client) Leave() error {
	return c.send(Frame{Type: TypeLeave})
}

// Publish sends the new state of doc to the rest of the room.
func (c *Client) Publish(doc, payload string) error {
	return c.send(Frame{Type: TypeUpdate, Doc: doc, Payload: payload})
}

// Close ends the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) send(f Frame) error {
	c.encMu.Lock()
	defer c.encMu.Unlock()

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.enc.Encode(f); err != nil {
		return fmt.Errorf("send %s frame: %w", f.Type, err)
	}
	return nil
}

func (c *Client) readLoop(scanner *bufio.Scanner) {
	defer close(c.frames)
	for scanner.Scan() {
		var f Frame
		if err := json.Unmarshal(scanner.Bytes(), &f); err != nil {
			continue
		}
		select {
		case c.frames <- f:
		case <-c.done:
			return
		}
	}
}
