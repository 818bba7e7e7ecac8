package client

import (
	"net"
	"time"
)

// DefaultLeaseTime is substituted when an Ack carries no lease time option.
// A deliberate lenient fallback, not a protocol violation.
const DefaultLeaseTime = 300 * time.Second

// Lease is the address grant under negotiation. It is created from the
// Offer, the duration is patched in when the Ack arrives, and it is
// immutable afterwards. The msgpack tags are the announcement format the
// binary writes on stdout once the lease is bound.
type Lease struct {
	IPAddr   net.IP        `msgpack:"ip_address"`
	Netmask  net.IPMask    `msgpack:"subnet_mask,omitempty"`
	Gateways []net.IP      `msgpack:"routers"`
	DNS      []net.IP      `msgpack:"name_servers"`
	Duration time.Duration `msgpack:"duration"`

	xid uint32
}

// IPNet returns the granted address with its netmask, falling back to the
// address class default when the server offered no mask.
func (l *Lease) IPNet() *net.IPNet {
	mask := l.Netmask
	if mask == nil {
		mask = l.IPAddr.DefaultMask()
	}
	return &net.IPNet{IP: l.IPAddr, Mask: mask}
}
