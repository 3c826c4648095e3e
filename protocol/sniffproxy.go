package protocol

import (
	"errors"
	"fmt"
	"net"
	"time"

	"k8s.io/klog/v2"

	"github.com/fossnova/nio/channel"
	"github.com/fossnova/nio/config"
	"github.com/fossnova/nio/stat"
)

const sniffTimeout = 10 * time.Second

// SniffProxy routes connections by a host name read from the start of the stream. The
// bytes read while sniffing are pushed back and reach the target unchanged.
type SniffProxy struct {
	cfg   config.Sniff
	name  string
	sniff func(peekReader) (string, error)
}

// NewHTTPProxy routes plain HTTP by the Host header.
func NewHTTPProxy(cfg config.Sniff) *SniffProxy {
	return &SniffProxy{cfg: cfg, name: "http", sniff: SniffHTTP}
}

// NewHTTPSProxy routes TLS by the server name of the ClientHello.
func NewHTTPSProxy(cfg config.Sniff) *SniffProxy {
	return &SniffProxy{cfg: cfg, name: "https", sniff: SniffTLS}
}

func (sp *SniffProxy) Start() error {
	ln, err := net.Listen("tcp", sp.cfg.BindAddr)
	if err != nil {
		return err
	}
	return sp.Serve(ln)
}

// Serve accepts connections on ln until it is closed.
func (sp *SniffProxy) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			klog.Errorf("failed to accept client connection: %v", err)
			continue
		}

		go sp.handleConnection(conn)
	}
}

func (sp *SniffProxy) handleConnection(conn net.Conn) {
	client := newConnChannel(conn)

	size := sp.cfg.BufferSize
	if size <= 0 {
		size = config.DefaultSniffBufferSize
	}
	pc, err := channel.NewPushbackChannelSize[channel.ByteChannel](client, size)
	if err != nil {
		klog.Errorf("[%s] %v", sp.name, err)
		_ = client.Close()
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(sniffTimeout))
	host, err := sp.sniff(pc)
	if err != nil {
		klog.Errorf("[%s] get hostname from %s error: %v", sp.name, conn.RemoteAddr(), err)
		stat.GlobalStats.AddSniffFailure(sp.name)
		_ = pc.Close()
		return
	}
	_ = conn.SetReadDeadline(time.Time{})
	klog.V(2).Infof("[%s] sniffed %q, %d bytes pushed back", sp.name, host, pc.Buffered())

	target, err := matchRule(host, sp.cfg.Rules)
	if err != nil {
		klog.Errorf("[%s] %s from %s get target error: %v", sp.name, host, conn.RemoteAddr(), err)
		_ = pc.Close()
		return
	}

	dst, err := dialTarget(target)
	if err != nil {
		klog.Errorf("[%s] dial target host error: %v", sp.name, err)
		_ = pc.Close()
		return
	}

	klog.Infof("[%s] new conn from: %s, %s -> %s", sp.name, conn.RemoteAddr(), host, target)

	ruleKey := fmt.Sprintf("%s:%s->%s", sp.name, host, target)
	if err := pipe(sniffedConn{connChannel: client, pc: pc}, dst, ruleKey); err != nil {
		klog.Errorf("[%s] pipe target host error: %v", sp.name, err)
	}
}
