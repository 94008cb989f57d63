package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

const (
	// sendQueueSize bounds the per-connection outbound buffer. A peer that
	// falls this far behind is treated as dead.
	sendQueueSize = 64

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var errSendQueueFull = errors.New("realtime: send queue full")
var errClientClosed = errors.New("realtime: connection closed")

// Client adapts a websocket connection to the registry's Conn interface.
// Writes are serialized through a buffered queue drained by a single write
// pump, so a slow peer can never stall a broadcast sweep. The pump is the
// only goroutine that ever touches the connection for writing; everything
// else, including Close, communicates with it over channels.
type Client struct {
	conn *websocket.Conn

	send   chan []byte
	done   chan struct{}
	exited chan struct{}
	once   sync.Once

	mu          sync.Mutex
	closeCode   int
	closeReason string
}

var _ Conn = (*Client)(nil)

// NewClient wraps an upgraded connection. The caller must run WritePump in
// its own goroutine for queued frames to reach the peer.
func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
}

// SendText enqueues a text frame. It fails when the connection is closed or
// the peer has stopped draining its queue; the registry treats either as a
// dead subscriber.
func (c *Client) SendText(payload []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		return errSendQueueFull
	}
}

// Close records the status code for the close frame and signals the write
// pump to shut down. It never writes to the connection itself, so it is safe
// to call while the pump is mid-write. Safe to call more than once; the
// first code wins.
func (c *Client) Close(code int, reason string) error {
	c.once.Do(func() {
		c.mu.Lock()
		c.closeCode = code
		c.closeReason = reason
		c.mu.Unlock()
		close(c.done)
	})
	return nil
}

// Wait blocks until the write pump has exited and released the connection.
// The handshake handler must call this before returning, because the
// framework recycles the connection into a pool as soon as the handler is
// done.
func (c *Client) Wait() {
	<-c.exited
}

// WritePump drains the send queue onto the wire and keeps the connection
// alive with periodic pings. On exit it flushes the close frame recorded by
// Close and closes the underlying connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.writeCloseFrame()
		_ = c.conn.Close()
		close(c.exited)
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) writeCloseFrame() {
	c.mu.Lock()
	code, reason := c.closeCode, c.closeReason
	c.mu.Unlock()
	if code == 0 {
		code = websocket.CloseNormalClosure
	}
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
}
