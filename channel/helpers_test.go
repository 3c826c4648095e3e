package channel_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

// stubChannel is an in-memory ByteChannel that records how it was used.
type stubChannel struct {
	src      *bytes.Reader
	dst      bytes.Buffer
	reads    int
	closes   int
	closeErr error
	closed   bool
}

func newStub(data string) *stubChannel {
	return &stubChannel{src: bytes.NewReader([]byte(data))}
}

func (s *stubChannel) Read(p []byte) (int, error) {
	s.reads++
	return s.src.Read(p)
}

func (s *stubChannel) Write(p []byte) (int, error) {
	return s.dst.Write(p)
}

func (s *stubChannel) IsOpen() bool {
	return !s.closed
}

func (s *stubChannel) Close() error {
	s.closes++
	s.closed = true
	return s.closeErr
}

func mustRead(t *testing.T, r io.Reader, size int, expected string) {
	t.Helper()
	buf := make([]byte, size)
	n, err := r.Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if got := string(buf[:n]); got != expected {
		t.Fatalf("expected %q, got %q", expected, got)
	}
}

func expectEOF(t *testing.T, r io.Reader) {
	t.Helper()
	buf := make([]byte, 8)
	n, err := r.Read(buf)
	if n != 0 || err != io.EOF {
		t.Fatalf("expected (0, EOF), got (%d, %v)", n, err)
	}
}

func expectError(t *testing.T, err, expected error) {
	t.Helper()
	if !errors.Is(err, expected) {
		t.Fatalf("expected %v, got %v", expected, err)
	}
}
