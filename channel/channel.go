package channel

import (
	"errors"
	"io"
	"reflect"
)

// Closable is a channel with an open/closed lifecycle.
type Closable interface {
	IsOpen() bool
	io.Closer
}

// Readable is a channel bytes can be read from. Read reports end-of-stream as (0, io.EOF).
type Readable interface {
	io.Reader
	Closable
}

// Writable is a channel bytes can be written to.
type Writable interface {
	io.Writer
	Closable
}

// ByteChannel can be both read and written.
type ByteChannel interface {
	io.Reader
	io.Writer
	Closable
}

var (
	// ErrInvalidArgument reports a nil delegate, a nil buffer or a bad offset, length or size.
	ErrInvalidArgument = errors.New("channel: invalid argument")
	// ErrClosed reports an operation on a channel that was already closed.
	ErrClosed = errors.New("channel: channel is closed")
	// ErrPushbackFull reports an unread that does not fit in the pushback buffer.
	ErrPushbackFull = errors.New("channel: pushback buffer is full")
	// ErrBroken is returned by every operation of Broken.
	ErrBroken = errors.New("channel: broken channel")
)

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
