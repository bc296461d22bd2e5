package protocol

import (
	"errors"
	"net"
	"strconv"
	"sync"

	"github.com/gtplayer-cli/gtplayer/log"
)

// maxDatagram bounds a single control message. Playlist update notifications
// carry no payload, so messages stay far below this.
const maxDatagram = 8 << 10

// Handler consumes one inbound message. The sender address is passed through
// so request/reply exchanges (get_pos) can answer the actual origin instead
// of the configured peer.
type Handler func(msg Message, from net.Addr)

// Transport is one side of the control channel: a bound UDP socket plus the
// peer endpoint it addresses commands or notifications to.
type Transport struct {
	conn net.PacketConn
	peer *net.UDPAddr

	mu     sync.Mutex
	closed bool
}

// Listen binds the loopback control socket. The well-known port is tried
// first so a peer started with default addresses can find us; if it is
// already taken an ephemeral port is used and the caller is expected to
// hand the actual port to the peer through the startup argument.
func Listen(host string, port int) (*Transport, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		log.Warnf("control port %s taken, falling back to ephemeral: %v", addr, err)
		conn, err = net.ListenPacket("udp", net.JoinHostPort(host, "0"))
		if err != nil {
			return nil, err
		}
	}
	return &Transport{conn: conn}, nil
}

// SetPeer points outbound sends at the given endpoint.
func (t *Transport) SetPeer(host string, port int) error {
	peer, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.peer = peer
	t.mu.Unlock()
	return nil
}

// LocalPort returns the port the socket actually bound.
func (t *Transport) LocalPort() int {
	return t.conn.LocalAddr().(*net.UDPAddr).Port
}

// Send delivers one message to the configured peer, fire-and-forget. A
// serialization or socket error is logged and swallowed; the protocol has
// no delivery guarantee for callers to lean on anyway.
func (t *Transport) Send(msg Message) {
	t.mu.Lock()
	peer := t.peer
	t.mu.Unlock()
	if peer == nil {
		log.Warnf("dropping %s: no peer configured", msg.Op)
		return
	}
	t.sendTo(msg, peer)
}

// Reply delivers one message back to the sender of an inbound datagram.
func (t *Transport) Reply(msg Message, to net.Addr) {
	t.sendTo(msg, to)
}

func (t *Transport) sendTo(msg Message, to net.Addr) {
	payload, err := msg.Encode()
	if err != nil {
		log.Errorf("encode %s: %v", msg.Op, err)
		return
	}
	if _, err = t.conn.WriteTo(payload, to); err != nil {
		log.Warnf("send %s to %s: %v", msg.Op, to, err)
	}
}

// Serve reads datagrams and dispatches them to the handler until the
// transport is closed. Malformed payloads are logged and dropped. Handlers
// run on the read goroutine, so dispatch is serialized by construction.
func (t *Transport) Serve(handler Handler) {
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := t.conn.ReadFrom(buf)
		if err != nil {
			if t.isClosed() || errors.Is(err, net.ErrClosed) {
				return
			}
			log.Warnf("control read: %v", err)
			continue
		}
		msg, err := Decode(buf[:n])
		if err != nil {
			log.Warnf("control datagram from %s: %v", from, err)
			continue
		}
		handler(msg, from)
	}
}

// Close shuts the socket and unblocks Serve.
func (t *Transport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return t.conn.Close()
}

func (t *Transport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}
