package channel_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/fossnova/nio/channel"
)

func newTestPushback(t *testing.T, data string, size int) (*channel.Pushback[*stubChannel], *stubChannel) {
	t.Helper()
	stub := newStub(data)
	p, err := channel.NewPushbackSize(stub, size)
	if err != nil {
		t.Fatalf("NewPushbackSize failed: %v", err)
	}
	return p, stub
}

func TestNewPushbackValidation(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := channel.NewPushbackSize(newStub(""), size)
		expectError(t, err, channel.ErrInvalidArgument)
	}

	_, err := channel.NewPushback[channel.Readable](nil)
	expectError(t, err, channel.ErrInvalidArgument)

	p, err := channel.NewPushback(newStub(""))
	if err != nil {
		t.Fatalf("NewPushback failed: %v", err)
	}
	if p.Size() != 1 || p.Available() != 1 || p.Buffered() != 0 {
		t.Fatalf("unexpected default state: size=%d available=%d buffered=%d", p.Size(), p.Available(), p.Buffered())
	}
}

func TestPushbackRoundTrip(t *testing.T) {
	p, _ := newTestPushback(t, "world", 8)

	if err := p.Unread([]byte("hello ")); err != nil {
		t.Fatalf("Unread failed: %v", err)
	}
	if p.Buffered() != 6 {
		t.Fatalf("expected 6 buffered bytes, got %d", p.Buffered())
	}

	mustRead(t, p, 32, "hello world")
	expectEOF(t, p)
}

func TestPushbackStackOfRuns(t *testing.T) {
	p, _ := newTestPushback(t, "", 8)

	if err := p.Unread([]byte("AB")); err != nil {
		t.Fatalf("Unread(AB) failed: %v", err)
	}
	if err := p.Unread([]byte("CD")); err != nil {
		t.Fatalf("Unread(CD) failed: %v", err)
	}
	if err := p.UnreadOne('E'); err != nil {
		t.Fatalf("UnreadOne failed: %v", err)
	}

	// last unread first, each run keeps its own order
	mustRead(t, p, 8, "ECDAB")
}

func TestPushbackCapacity(t *testing.T) {
	p, _ := newTestPushback(t, "", 4)

	expectError(t, p.Unread([]byte("12345")), channel.ErrPushbackFull)
	if p.Buffered() != 0 {
		t.Fatalf("failed unread stored %d bytes", p.Buffered())
	}

	if err := p.Unread([]byte("1234")); err != nil {
		t.Fatalf("Unread of exactly the capacity failed: %v", err)
	}
	expectError(t, p.UnreadOne('0'), channel.ErrPushbackFull)
	mustRead(t, p, 4, "1234")
}

func TestPushbackPartialCapacity(t *testing.T) {
	p, _ := newTestPushback(t, "", 4)

	if err := p.Unread([]byte("ab")); err != nil {
		t.Fatalf("Unread failed: %v", err)
	}
	expectError(t, p.Unread([]byte("xyz")), channel.ErrPushbackFull)
	if p.Available() != 2 {
		t.Fatalf("expected 2 free slots, got %d", p.Available())
	}
	if err := p.Unread([]byte("cd")); err != nil {
		t.Fatalf("Unread of the free capacity failed: %v", err)
	}
	mustRead(t, p, 4, "cdab")
}

func TestPushbackZeroLengthUnread(t *testing.T) {
	p, _ := newTestPushback(t, "", 1)
	if err := p.UnreadOne('x'); err != nil {
		t.Fatalf("UnreadOne failed: %v", err)
	}

	// full buffer
	if err := p.Unread(nil); err != nil {
		t.Fatalf("Unread(nil) failed: %v", err)
	}
	if err := p.UnreadRange([]byte("abc"), 3, 0); err != nil {
		t.Fatalf("UnreadRange(len 0) failed: %v", err)
	}
	if err := p.UnreadBuffer(new(bytes.Buffer)); err != nil {
		t.Fatalf("UnreadBuffer(empty) failed: %v", err)
	}
	if p.Buffered() != 1 {
		t.Fatalf("expected 1 buffered byte, got %d", p.Buffered())
	}
}

func TestPushbackUnreadRange(t *testing.T) {
	src := []byte("0123456789")

	tests := []struct {
		name    string
		off, n  int
		want    string
		wantErr error
	}{
		{name: "middle", off: 2, n: 3, want: "234"},
		{name: "tail", off: 7, n: 3, want: "789"},
		{name: "negative offset", off: -1, n: 2, wantErr: channel.ErrInvalidArgument},
		{name: "negative length", off: 0, n: -2, wantErr: channel.ErrInvalidArgument},
		{name: "past end", off: 8, n: 3, wantErr: channel.ErrInvalidArgument},
		{name: "offset beyond source", off: 11, n: 0, wantErr: channel.ErrInvalidArgument},
		// bounds are checked before capacity
		{name: "bounds before capacity", off: 5, n: 6, wantErr: channel.ErrInvalidArgument},
		{name: "too large", off: 0, n: 5, wantErr: channel.ErrPushbackFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPushback(t, "", 4)
			err := p.UnreadRange(src, tt.off, tt.n)
			if tt.wantErr != nil {
				expectError(t, err, tt.wantErr)
				if p.Buffered() != 0 {
					t.Fatalf("failed unread stored %d bytes", p.Buffered())
				}
				return
			}
			if err != nil {
				t.Fatalf("UnreadRange failed: %v", err)
			}
			mustRead(t, p, 8, tt.want)
		})
	}
}

func TestPushbackUnreadBuffer(t *testing.T) {
	p, _ := newTestPushback(t, "", 4)

	expectError(t, p.UnreadBuffer(nil), channel.ErrInvalidArgument)

	buf := bytes.NewBufferString("xxab")
	buf.Next(2)
	if err := p.UnreadBuffer(buf); err != nil {
		t.Fatalf("UnreadBuffer failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("buffer not drained, %d bytes left", buf.Len())
	}

	big := bytes.NewBufferString("cde")
	expectError(t, p.UnreadBuffer(big), channel.ErrPushbackFull)
	if big.String() != "cde" {
		t.Fatalf("buffer modified by failed unread: %q", big.String())
	}

	mustRead(t, p, 4, "ab")
}

func TestPushbackEOFSwallow(t *testing.T) {
	p, err := channel.NewPushbackSize(channel.NullReadable, 2)
	if err != nil {
		t.Fatalf("NewPushbackSize failed: %v", err)
	}
	if err := p.UnreadOne('z'); err != nil {
		t.Fatalf("UnreadOne failed: %v", err)
	}

	buf := make([]byte, 2)
	n, err := p.Read(buf)
	if n != 1 || err != nil {
		t.Fatalf("Read = (%d, %v), want (1, nil)", n, err)
	}
	if buf[0] != 'z' {
		t.Fatalf("expected 'z', got %q", buf[0])
	}
	expectEOF(t, p)
}

func TestPushbackReadConsultsDelegateOnce(t *testing.T) {
	p, stub := newTestPushback(t, "delegate data", 4)

	if err := p.Unread([]byte("ab")); err != nil {
		t.Fatalf("Unread failed: %v", err)
	}

	// served by the pushback buffer alone
	mustRead(t, p, 1, "a")
	if stub.reads != 0 {
		t.Fatalf("delegate read %d times, want 0", stub.reads)
	}

	mustRead(t, p, 5, "bdele")
	if stub.reads != 1 {
		t.Fatalf("delegate read %d times, want 1", stub.reads)
	}
}

func TestPushbackReadZeroLength(t *testing.T) {
	p, stub := newTestPushback(t, "data", 1)
	if err := p.UnreadOne('x'); err != nil {
		t.Fatalf("UnreadOne failed: %v", err)
	}

	n, err := p.Read(nil)
	if n != 0 || err != nil {
		t.Fatalf("Read(nil) = (%d, %v), want (0, nil)", n, err)
	}
	if stub.reads != 0 || p.Buffered() != 1 {
		t.Fatalf("zero length read touched state: reads=%d buffered=%d", stub.reads, p.Buffered())
	}
}

type failingReader struct {
	err error
}

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }
func (f failingReader) IsOpen() bool             { return true }
func (f failingReader) Close() error             { return nil }

func TestPushbackDelegateError(t *testing.T) {
	readErr := errors.New("read failed")
	p, err := channel.NewPushbackSize(failingReader{readErr}, 2)
	if err != nil {
		t.Fatalf("NewPushbackSize failed: %v", err)
	}

	_, err = p.Read(make([]byte, 4))
	if err != readErr {
		t.Fatalf("expected delegate error verbatim, got %v", err)
	}

	if err := p.UnreadOne('q'); err != nil {
		t.Fatalf("UnreadOne failed: %v", err)
	}
	n, err := p.Read(make([]byte, 4))
	if n != 1 || err != readErr {
		t.Fatalf("Read = (%d, %v), want (1, %v)", n, err, readErr)
	}
}

func TestPushbackClose(t *testing.T) {
	p, stub := newTestPushback(t, "data", 2)

	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if p.IsOpen() {
		t.Fatal("expected closed channel")
	}

	_, err := p.Read(make([]byte, 4))
	expectError(t, err, channel.ErrClosed)
	expectError(t, p.UnreadOne('a'), channel.ErrClosed)
	expectError(t, p.Unread([]byte("a")), channel.ErrClosed)
	expectError(t, p.UnreadRange([]byte("a"), 0, 1), channel.ErrClosed)
	expectError(t, p.UnreadBuffer(bytes.NewBufferString("a")), channel.ErrClosed)

	if err := p.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if stub.closes != 1 {
		t.Fatalf("delegate closed %d times, want 1", stub.closes)
	}
}

func TestPushbackCloseError(t *testing.T) {
	p, stub := newTestPushback(t, "", 1)
	stub.closeErr = errors.New("close failed")

	expectError(t, p.Close(), stub.closeErr)
	if p.IsOpen() {
		t.Fatal("channel must stay closed after a failed close")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close = %v, want nil", err)
	}
	if stub.closes != 1 {
		t.Fatalf("delegate closed %d times, want 1", stub.closes)
	}
}

func TestPushbackWithReadFull(t *testing.T) {
	p, _ := newTestPushback(t, "cdef", 2)
	if err := p.Unread([]byte("ab")); err != nil {
		t.Fatalf("Unread failed: %v", err)
	}

	buf := make([]byte, 6)
	if _, err := io.ReadFull(p, buf); err != nil {
		t.Fatalf("ReadFull failed: %v", err)
	}
	if string(buf) != "abcdef" {
		t.Fatalf("expected %q, got %q", "abcdef", buf)
	}
}
