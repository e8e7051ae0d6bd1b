package gateway

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"go.uber.org/zap"
)

const (
	maxMessageSize = 512 * 1024
	sendBuffer     = 256
)

// ClientAdapter wraps an upgraded websocket net.Conn for a single
// subscriber. Reads are pulled by the hub's control loop through
// ReadMessage; writes go through a buffered channel drained by writePump,
// so SendBytes never blocks and a stalled peer only loses its own
// messages.
type ClientAdapter struct {
	conn   net.Conn
	send   chan []byte
	logger *zap.Logger

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

func NewClient(conn net.Conn, logger *zap.Logger) *ClientAdapter {
	return &ClientAdapter{
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
		logger:     logger,
		writeWait:  5 * time.Second,
		pongWait:   60 * time.Second,
		pingPeriod: 50 * time.Second,
	}
}

// Start launches the write pump. The read side is driven by the hub.
func (c *ClientAdapter) Start() {
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	go c.writePump()
}

// SendBytes enqueues one outbound frame. Drops the message if the buffer
// is full (slow subscriber) or the connection is already closed.
func (c *ClientAdapter) SendBytes(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
		// Backpressure: latest-value data, losing a tick beats stalling the hub.
	}
}

// Close signals the write pump to send a close frame and shut the
// transport. Safe to call multiple times and concurrently with sends.
func (c *ClientAdapter) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.send)
	})
	return nil
}

// ReadMessage blocks for the next inbound text payload. Control frames
// are handled here: pongs refresh the read deadline, a close frame or
// any protocol violation ends the session with an error.
func (c *ClientAdapter) ReadMessage() ([]byte, error) {
	for {
		header, err := ws.ReadHeader(c.conn)
		if err != nil {
			return nil, err
		}

		if header.Length > int64(maxMessageSize) {
			return nil, fmt.Errorf("frame of %d bytes exceeds limit", header.Length)
		}
		if !header.Fin {
			return nil, errors.New("fragmented frames not supported")
		}

		payload := make([]byte, header.Length)
		if _, err := io.ReadFull(c.conn, payload); err != nil {
			return nil, err
		}
		if header.Masked {
			ws.Cipher(payload, header.Mask, 0)
		}

		switch header.OpCode {
		case ws.OpClose:
			return nil, io.EOF
		case ws.OpPong:
			c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		case ws.OpText:
			return payload, nil
		default:
			// Binary and ping frames are ignored.
		}
	}
}

func (c *ClientAdapter) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				c.conn.Write(ws.CompiledClose)
				return
			}
			if err := wsutil.WriteServerText(c.conn, msg); err != nil {
				c.logger.Debug("Write failed", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := wsutil.WriteServerMessage(c.conn, ws.OpPing, nil); err != nil {
				return
			}
		}
	}
}
