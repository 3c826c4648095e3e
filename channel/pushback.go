package channel

import (
	"bytes"
	"fmt"
	"io"
)

const defaultPushbackSize = 1

var (
	_ Readable = (*Pushback[Readable])(nil)
	_ Unreader = (*Pushback[Readable])(nil)
)

// Unreader returns bytes to the front of a stream so the next Read delivers them again.
type Unreader interface {
	UnreadOne(b byte) error
	Unread(p []byte) error
	UnreadRange(p []byte, off, n int) error
	UnreadBuffer(buf *bytes.Buffer) error
}

// Pushback wraps a Readable with a fixed size pushback buffer.
//
// The buffer fills from its end towards its start: the bytes of one unread call keep
// their order, and a later unread is delivered before an earlier one.
type Pushback[R Readable] struct {
	DelegatingReadable[R]

	buf []byte
	// pos is the start of the pending region buf[pos:]; pos == len(buf) means empty.
	pos    int
	closed bool
}

// NewPushback returns a Pushback with a one byte buffer.
func NewPushback[R Readable](delegate R) (*Pushback[R], error) {
	return NewPushbackSize(delegate, defaultPushbackSize)
}

// NewPushbackSize returns a Pushback able to hold size pushed back bytes.
func NewPushbackSize[R Readable](delegate R, size int) (*Pushback[R], error) {
	d, err := NewDelegatingReadable(delegate)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: pushback buffer size must be positive, got %d", ErrInvalidArgument, size)
	}
	return &Pushback[R]{
		DelegatingReadable: *d,
		buf:                make([]byte, size),
		pos:                size,
	}, nil
}

// Size returns the capacity of the pushback buffer.
func (p *Pushback[R]) Size() int {
	return len(p.buf)
}

// Buffered returns the number of pushed back bytes not yet read.
func (p *Pushback[R]) Buffered() int {
	return len(p.buf) - p.pos
}

// Available returns how many more bytes can be pushed back.
func (p *Pushback[R]) Available() int {
	return p.pos
}

// UnreadOne pushes back a single byte.
func (p *Pushback[R]) UnreadOne(b byte) error {
	if p.closed {
		return ErrClosed
	}
	if p.pos == 0 {
		return ErrPushbackFull
	}
	p.pos--
	p.buf[p.pos] = b
	return nil
}

// Unread pushes back all of b. Either every byte fits or nothing is stored.
func (p *Pushback[R]) Unread(b []byte) error {
	return p.UnreadRange(b, 0, len(b))
}

// UnreadRange pushes back b[off:off+n].
func (p *Pushback[R]) UnreadRange(b []byte, off, n int) error {
	if p.closed {
		return ErrClosed
	}
	switch {
	case off < 0:
		return fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, off)
	case n < 0:
		return fmt.Errorf("%w: negative length %d", ErrInvalidArgument, n)
	case off > len(b) || n > len(b)-off:
		return fmt.Errorf("%w: range [%d:%d] out of bounds for %d bytes", ErrInvalidArgument, off, off+n, len(b))
	}
	if n == 0 {
		return nil
	}
	if n > p.pos {
		return ErrPushbackFull
	}
	p.pos -= n
	copy(p.buf[p.pos:], b[off:off+n])
	return nil
}

// UnreadBuffer pushes back the unread portion of buf and drains it. On failure buf is
// left as it was.
func (p *Pushback[R]) UnreadBuffer(buf *bytes.Buffer) error {
	if p.closed {
		return ErrClosed
	}
	if buf == nil {
		return fmt.Errorf("%w: buffer cannot be nil", ErrInvalidArgument)
	}
	if err := p.Unread(buf.Bytes()); err != nil {
		return err
	}
	buf.Next(buf.Len())
	return nil
}

// Read drains pushed back bytes first and then reads the delegate at most once to fill
// the rest of b. An end-of-stream from the delegate is held back while pushed back bytes
// were delivered by the same call.
func (p *Pushback[R]) Read(b []byte) (int, error) {
	if p.closed {
		return 0, ErrClosed
	}
	if len(b) == 0 {
		return 0, nil
	}

	n := copy(b, p.buf[p.pos:])
	p.pos += n
	if n == len(b) {
		return n, nil
	}

	m, err := p.delegate.Read(b[n:])
	n += m
	if err == io.EOF && n > 0 {
		err = nil
	}
	return n, err
}

// IsOpen reports whether Close has not been called yet.
func (p *Pushback[R]) IsOpen() bool {
	return !p.closed
}

// Close marks the channel closed and closes the delegate. Only the first call reaches the
// delegate; its error is returned but the channel stays closed.
func (p *Pushback[R]) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	return p.delegate.Close()
}
