package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gtplayer-cli/gtplayer/constant"
)

// Addresses holds the endpoints both sides agree on at service startup.
// The proxy passes them to the spawned service as a single comma-joined
// argument; a missing or malformed argument falls back to the well-known
// loopback defaults.
type Addresses struct {
	ProxyHost   string
	ProxyPort   int
	ServicePort int
}

// DefaultAddresses returns the fixed fallback endpoints.
func DefaultAddresses() Addresses {
	return Addresses{
		ProxyHost:   constant.LoopbackHost,
		ProxyPort:   constant.DefaultProxyPort,
		ServicePort: constant.DefaultServicePort,
	}
}

// Proxy returns the proxy endpoint as host:port.
func (a Addresses) Proxy() string {
	return fmt.Sprintf("%s:%d", a.ProxyHost, a.ProxyPort)
}

// Service returns the service endpoint as host:port.
func (a Addresses) Service() string {
	return fmt.Sprintf("%s:%d", a.ProxyHost, a.ServicePort)
}

// Arg renders the addresses in the comma-joined startup argument form.
func (a Addresses) Arg() string {
	return strings.Join([]string{
		a.ProxyHost,
		strconv.Itoa(a.ProxyPort),
		strconv.Itoa(a.ServicePort),
	}, ",")
}

// ParseServiceArgs parses the comma-joined "host,proxyPort,servicePort"
// startup argument. Any missing or unparsable field keeps its default, so
// a service launched by hand still binds the well-known endpoints.
func ParseServiceArgs(arg string) Addresses {
	addrs := DefaultAddresses()
	if arg == "" {
		return addrs
	}
	fields := strings.Split(arg, ",")
	if len(fields) > 0 && fields[0] != "" {
		addrs.ProxyHost = strings.TrimSpace(fields[0])
	}
	if len(fields) > 1 {
		if port, err := strconv.Atoi(strings.TrimSpace(fields[1])); err == nil && port > 0 {
			addrs.ProxyPort = port
		}
	}
	if len(fields) > 2 {
		if port, err := strconv.Atoi(strings.TrimSpace(fields[2])); err == nil && port > 0 {
			addrs.ServicePort = port
		}
	}
	return addrs
}
