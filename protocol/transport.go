package protocol

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/fossnova/nio/config"
)

// TransportProxy forwards every connection accepted on a rule's bindAddr to its target.
type TransportProxy struct {
	cfg []config.IPRule
}

func NewTransportProxy(cfg []config.IPRule) *TransportProxy {
	return &TransportProxy{cfg: cfg}
}

// Start listens on every rule and blocks until one of the listeners fails.
func (t *TransportProxy) Start() error {
	var eg errgroup.Group
	for _, rule := range t.cfg {
		rule := rule
		ln, err := net.Listen("tcp", rule.BindAddr)
		if err != nil {
			return err
		}
		eg.Go(func() error {
			return t.Serve(ln, rule)
		})
	}
	return eg.Wait()
}

// Serve accepts connections for one rule until ln is closed.
func (t *TransportProxy) Serve(ln net.Listener, rule config.IPRule) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			klog.Errorf("failed to accept connection: %v", err)
			continue
		}
		klog.Infof("[tcp] new conn from %s, %s -> %s", conn.RemoteAddr(), rule.BindAddr, rule.Target)

		go t.handleConnection(conn, rule)
	}
}

func (t *TransportProxy) handleConnection(conn net.Conn, rule config.IPRule) {
	ruleKey := fmt.Sprintf("tcp:%s->%s", rule.BindAddr, rule.Target)
	client := newConnChannel(conn)

	target, err := dialTarget(rule.Target)
	if err != nil {
		klog.Errorf("failed to dial target: %v", err)
		_ = client.Close()
		return
	}

	if err := pipe(client, target, ruleKey); err != nil {
		klog.Errorf("failed to pipe connection: %v", err)
	}
}
