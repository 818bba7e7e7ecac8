// Package client drives the four-message DHCP exchange for one interface:
// Discover and Request go out as UDP broadcasts, Offer and Ack come back in
// through Input. The surrounding receive loop must serialize calls; the
// machine itself holds no locks.
package client

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net"
	"time"

	"dhcpc/dhcp"
	"dhcpc/transport"
)

type State int

const (
	// StateInit is the zero value; nothing has been sent yet.
	StateInit State = iota
	// StateRequestSent: discovery broadcast sent, awaiting an Offer.
	StateRequestSent
	// StateOfferAccepted: Request broadcast sent, awaiting the Ack.
	StateOfferAccepted
	// StateLeaseHeld: address applied. Terminal for all further input.
	StateLeaseHeld
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateRequestSent:
		return "request-sent"
	case StateOfferAccepted:
		return "offer-accepted"
	case StateLeaseHeld:
		return "lease-held"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Configurer applies a negotiated address to the local network stack.
type Configurer interface {
	ApplyAddress(ip net.IP, mask net.IPMask) error
}

type Config struct {
	// MAC populates chaddr on every outbound message.
	MAC net.HardwareAddr
	// Hostname is announced in the Discover options.
	Hostname string
	// Rand supplies transaction ids. Defaults to math/rand/v2; tests inject
	// a deterministic sequence.
	Rand func() uint32
	// OnBound, if set, runs once when the Ack is applied and the lease is held.
	OnBound func(*Lease)
}

type Client struct {
	transport transport.Transport
	netconf   Configurer
	cfg       Config

	state State
	xid   uint32
	lease *Lease
}

func New(t transport.Transport, nc Configurer, cfg Config) *Client {
	if cfg.Rand == nil {
		cfg.Rand = rand.Uint32
	}
	return &Client{transport: t, netconf: nc, cfg: cfg}
}

func (c *Client) State() State { return c.state }

// Lease returns the held lease, or nil before the exchange completes.
func (c *Client) Lease() *Lease {
	if c.state != StateLeaseHeld {
		return nil
	}
	return c.lease
}

// StartDiscovery broadcasts a Discover under a fresh transaction id and
// parks the machine awaiting an Offer. A send failure propagates and leaves
// the machine untouched, so the caller may simply call StartDiscovery again.
func (c *Client) StartDiscovery() error {
	xid := c.cfg.Rand()
	opts := dhcp.Options{
		dhcp.BytesOption(dhcp.OptionDHCPMessageType, dhcp.DHCPDISCOVER),
		dhcp.BytesOption(dhcp.OptionParameterRequestList,
			dhcp.OptionSubnetMask, dhcp.OptionRouter, dhcp.OptionDomainNameServer, dhcp.OptionBroadcastAddress),
		dhcp.StringOption(dhcp.OptionHostname, c.cfg.Hostname),
	}
	packet := dhcp.NewRequest(xid, net.IPv4zero, net.IPv4zero, c.cfg.MAC, opts)
	if err := c.transport.SendBroadcast(packet.Broadcast()); err != nil {
		return fmt.Errorf("broadcast discover: %w", err)
	}

	c.state = StateRequestSent
	c.xid = xid
	c.lease = nil
	slog.Info("Sent DHCP discover", "xid", xid, "client", c.cfg.MAC.String())
	return nil
}

// Input is the single dispatch point for inbound DHCP traffic. Malformed
// packets, unexpected message types and transaction id mismatches are logged
// and dropped without a state change; only a failing send or address
// configuration surfaces as an error.
func (c *Client) Input(dg *transport.Datagram) error {
	packet, err := dhcp.Decode(dg.Payload)
	if err != nil {
		slog.Debug("Dropping malformed DHCP packet", "error", err, "src", dg.SrcIP.String())
		return nil
	}
	if packet.Op != dhcp.BOOTREPLY {
		slog.Debug("Dropping non-reply DHCP packet", "op", packet.Op, "xid", packet.XId)
		return nil
	}

	switch c.state {
	case StateRequestSent:
		return c.handleOffer(packet)
	case StateOfferAccepted:
		return c.handleAck(packet)
	default:
		slog.Debug("Ignoring DHCP packet in current state", "state", c.state.String(), "xid", packet.XId)
		return nil
	}
}

// handleOffer locks in the first matching Offer and broadcasts the Request
// for it. The lease time stays zero until the Ack confirms it.
func (c *Client) handleOffer(packet *dhcp.Packet) error {
	if t := packet.DHCPMessageType(); t != dhcp.DHCPOFFER || packet.XId != c.xid {
		slog.Debug("Ignoring packet while awaiting offer", "type", t, "xid", packet.XId, "want_xid", c.xid)
		return nil
	}

	lease := &Lease{
		IPAddr:   packet.YIAddr,
		Gateways: packet.Options.IPList(dhcp.OptionRouter),
		DNS:      packet.Options.IPList(dhcp.OptionDomainNameServer),
		xid:      packet.XId,
	}
	if mask, ok := packet.Options.IP(dhcp.OptionSubnetMask); ok {
		lease.Netmask = net.IPMask(mask.To4())
	}

	opts := dhcp.Options{
		dhcp.BytesOption(dhcp.OptionDHCPMessageType, dhcp.DHCPREQUEST),
		dhcp.IPOption(dhcp.OptionRequestedIPAddress, lease.IPAddr),
		dhcp.IPOption(dhcp.OptionServerIdentifier, packet.SIAddr),
	}
	request := dhcp.NewRequest(c.xid, lease.IPAddr, packet.SIAddr, c.cfg.MAC, opts)
	if err := c.transport.SendBroadcast(request.Broadcast()); err != nil {
		return fmt.Errorf("broadcast request: %w", err)
	}

	c.lease = lease
	c.state = StateOfferAccepted
	slog.Info("Accepted DHCP offer", "ip", lease.IPAddr.String(), "server", packet.SIAddr.String(), "xid", packet.XId)
	return nil
}

// handleAck confirms the pending offer, applies the address and parks the
// machine in its terminal state.
func (c *Client) handleAck(packet *dhcp.Packet) error {
	if t := packet.DHCPMessageType(); t != dhcp.DHCPACK || packet.XId != c.lease.xid {
		slog.Debug("Ignoring packet while awaiting ack", "type", t, "xid", packet.XId, "want_xid", c.lease.xid)
		return nil
	}

	if secs, ok := packet.Options.Uint32(dhcp.OptionIPAddressLeaseTime); ok {
		c.lease.Duration = time.Duration(secs) * time.Second
	} else {
		c.lease.Duration = DefaultLeaseTime
	}

	if err := c.netconf.ApplyAddress(c.lease.IPAddr, c.lease.Netmask); err != nil {
		return fmt.Errorf("apply %s: %w", c.lease.IPAddr, err)
	}

	c.state = StateLeaseHeld
	slog.Info("DHCP lease bound",
		"ip", c.lease.IPAddr.String(),
		"netmask", c.lease.Netmask.String(),
		"lease", c.lease.Duration,
	)
	if c.cfg.OnBound != nil {
		c.cfg.OnBound(c.lease)
	}
	return nil
}
