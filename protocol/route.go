package protocol

import (
	"errors"
	"net"
	"strings"
	"time"

	"golang.org/x/net/idna"

	"github.com/fossnova/nio/channel"
	"github.com/fossnova/nio/config"
)

var errNoHost = errors.New("no host found")

const dialTimeout = 10 * time.Second

var dial = func(network, addr string) (net.Conn, error) {
	return net.DialTimeout(network, addr, dialTimeout)
}

func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(host, ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return strings.ToLower(host)
}

// matchRule returns the target of the first rule matching host.
func matchRule(host string, rules []config.HostRule) (string, error) {
	host = normalizeHost(host)

	for _, rule := range rules {
		if rule.Host == "" {
			continue
		}
		if rule.Host[0] != '*' {
			if host == normalizeHost(rule.Host) {
				return rule.Target, nil
			}
			continue
		}

		suffix := rule.Host[1:]
		if rest, ok := strings.CutPrefix(suffix, "."); ok {
			suffix = "." + normalizeHost(rest)
		} else {
			suffix = normalizeHost(suffix)
		}
		if strings.HasSuffix(host, suffix) {
			return rule.Target, nil
		}
	}

	return "", errNoHost
}

// dialTarget connects to target. The null and broken targets never touch the network.
func dialTarget(target string) (channel.ByteChannel, error) {
	switch target {
	case config.TargetNull:
		return channel.Null, nil
	case config.TargetBroken:
		return channel.Broken, nil
	}

	conn, err := dial("tcp", target)
	if err != nil {
		return nil, err
	}
	return newConnChannel(conn), nil
}
