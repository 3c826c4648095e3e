package protocol

import (
	"bufio"
	"bytes"
	"crypto/tls"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http/httpguts"

	"github.com/fossnova/nio/channel"
)

const (
	recordTypeHandshake = 0x16
	recordHeaderLen     = 5
)

var errSniffed = errors.New("client hello captured")

// peekReader is a stream whose consumed bytes can be pushed back. Size bounds how much
// can be inspected before the bytes are returned to it.
type peekReader interface {
	io.Reader
	Unread(p []byte) error
	Size() int
}

// SniffTLS reads the first TLS record, returns the SNI of the ClientHello it carries and
// pushes the whole record back so the stream is left untouched.
func SniffTLS(r peekReader) (string, error) {
	header := make([]byte, recordHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return "", fmt.Errorf("read TLS header failed: %w", err)
	}
	if header[0] != recordTypeHandshake {
		return "", fmt.Errorf("not TLS handshake record, got 0x%x", header[0])
	}

	recordLen := int(binary.BigEndian.Uint16(header[3:5]))
	if recordLen == 0 || recordHeaderLen+recordLen > r.Size() {
		return "", fmt.Errorf("invalid TLS record length: %d", recordLen)
	}

	record := make([]byte, recordHeaderLen+recordLen)
	copy(record, header)
	if _, err := io.ReadFull(r, record[recordHeaderLen:]); err != nil {
		return "", fmt.Errorf("read TLS body failed: %w", err)
	}

	var serverName string
	_ = tls.Server(newHelloConn(record), &tls.Config{
		GetConfigForClient: func(info *tls.ClientHelloInfo) (*tls.Config, error) {
			serverName = info.ServerName
			return nil, errSniffed
		},
	}).Handshake()

	if err := r.Unread(record); err != nil {
		return "", fmt.Errorf("push back client hello: %w", err)
	}
	if serverName == "" {
		return "", errors.New("failed to get SNI")
	}
	return serverName, nil
}

// headerComplete reports whether b holds a full request header, with CRLF or bare LF
// line endings as net/http accepts both.
func headerComplete(b []byte) bool {
	return bytes.Contains(b, []byte("\r\n\r\n")) || bytes.Contains(b, []byte("\n\n"))
}

// SniffHTTP reads the request header, returns its Host and pushes every byte read back.
func SniffHTTP(r peekReader) (string, error) {
	buf := make([]byte, r.Size())
	n := 0
	for !headerComplete(buf[:n]) {
		if n == len(buf) {
			return "", fmt.Errorf("request header exceeds %d bytes", len(buf))
		}
		m, err := r.Read(buf[n:])
		n += m
		if err != nil && !headerComplete(buf[:n]) {
			return "", fmt.Errorf("read request header failed: %w", err)
		}
	}

	req, err := http.ReadRequest(bufio.NewReader(bytes.NewReader(buf[:n])))
	if err != nil {
		return "", fmt.Errorf("parse request header failed: %w", err)
	}
	if req.Host == "" || !httpguts.ValidHostHeader(req.Host) {
		return "", fmt.Errorf("invalid host header %q", req.Host)
	}

	if err := r.Unread(buf[:n]); err != nil {
		return "", fmt.Errorf("push back request header: %w", err)
	}
	return req.Host, nil
}

// helloConn feeds one captured record to crypto/tls. Whatever the server side answers
// goes to the null channel.
type helloConn struct {
	io.Reader
	channel.Writable
}

func newHelloConn(record []byte) helloConn {
	return helloConn{Reader: bytes.NewReader(record), Writable: channel.NullWritable}
}

func (helloConn) LocalAddr() net.Addr                { return nil }
func (helloConn) RemoteAddr() net.Addr               { return nil }
func (helloConn) SetDeadline(_ time.Time) error      { return nil }
func (helloConn) SetReadDeadline(_ time.Time) error  { return nil }
func (helloConn) SetWriteDeadline(_ time.Time) error { return nil }
