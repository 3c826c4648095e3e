package protocol

import (
	"net"
	"sync/atomic"

	"github.com/fossnova/nio/channel"
)

var _ channel.ByteChannel = (*connChannel)(nil)

// connChannel adapts a net.Conn to channel.ByteChannel. Close is idempotent and safe to
// call from either copy goroutine.
type connChannel struct {
	net.Conn
	closed atomic.Bool
}

func newConnChannel(c net.Conn) *connChannel {
	return &connChannel{Conn: c}
}

func (c *connChannel) IsOpen() bool {
	return !c.closed.Load()
}

func (c *connChannel) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.Conn.Close()
}

// CloseWrite half-closes the connection when the transport supports it.
func (c *connChannel) CloseWrite() error {
	if cw, ok := c.Conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}

// sniffedConn reads through the pushback channel that still holds the sniffed bytes
// and writes straight to the client connection.
type sniffedConn struct {
	*connChannel
	pc *channel.PushbackChannel[channel.ByteChannel]
}

// Read hands out the sniffed bytes on their own first. A read that also reached the
// client would block until it sent more, and clients wait for a reply to what they sent.
func (s sniffedConn) Read(p []byte) (int, error) {
	if n := s.pc.Buffered(); n > 0 && len(p) > n {
		p = p[:n]
	}
	return s.pc.Read(p)
}
