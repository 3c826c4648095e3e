package channel

import "bytes"

var (
	_ ByteChannel = (*PushbackChannel[ByteChannel])(nil)
	_ Unreader    = (*PushbackChannel[ByteChannel])(nil)
)

// PushbackChannel is the read-write form of Pushback. Writes go straight to the delegate.
type PushbackChannel[C ByteChannel] struct {
	reader *Pushback[C]
}

// NewPushbackChannel returns a PushbackChannel with a one byte buffer.
func NewPushbackChannel[C ByteChannel](delegate C) (*PushbackChannel[C], error) {
	return NewPushbackChannelSize(delegate, defaultPushbackSize)
}

func NewPushbackChannelSize[C ByteChannel](delegate C, size int) (*PushbackChannel[C], error) {
	r, err := NewPushbackSize(delegate, size)
	if err != nil {
		return nil, err
	}
	return &PushbackChannel[C]{reader: r}, nil
}

// Delegate returns the wrapped channel.
func (c *PushbackChannel[C]) Delegate() C {
	return c.reader.Delegate()
}

func (c *PushbackChannel[C]) Size() int      { return c.reader.Size() }
func (c *PushbackChannel[C]) Buffered() int  { return c.reader.Buffered() }
func (c *PushbackChannel[C]) Available() int { return c.reader.Available() }

func (c *PushbackChannel[C]) UnreadOne(b byte) error {
	return c.reader.UnreadOne(b)
}

func (c *PushbackChannel[C]) Unread(p []byte) error {
	return c.reader.Unread(p)
}

func (c *PushbackChannel[C]) UnreadRange(p []byte, off, n int) error {
	return c.reader.UnreadRange(p, off, n)
}

func (c *PushbackChannel[C]) UnreadBuffer(buf *bytes.Buffer) error {
	return c.reader.UnreadBuffer(buf)
}

func (c *PushbackChannel[C]) Read(p []byte) (int, error) {
	return c.reader.Read(p)
}

func (c *PushbackChannel[C]) Write(p []byte) (int, error) {
	if c.reader.closed {
		return 0, ErrClosed
	}
	return c.reader.delegate.Write(p)
}

func (c *PushbackChannel[C]) IsOpen() bool {
	return c.reader.IsOpen()
}

func (c *PushbackChannel[C]) Close() error {
	return c.reader.Close()
}
