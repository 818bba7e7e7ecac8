//go:build !linux

package transport

import (
	"errors"
	"net"
)

// PacketConn is only implemented for Linux AF_PACKET sockets; the stub keeps
// the binary compiling elsewhere.
type PacketConn struct{}

var errUnsupported = errors.New("raw DHCP transport is only implemented on linux")

func Listen(iface *net.Interface) (*PacketConn, error) {
	return nil, errUnsupported
}

func (c *PacketConn) SendBroadcast(payload []byte) error { return errUnsupported }

func (c *PacketConn) Serve(handler Handler) error { return errUnsupported }

func (c *PacketConn) Close() error { return nil }
