//go:build linux

package netconf

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/vishvananda/netlink"
)

// Netlink configures one interface through rtnetlink.
type Netlink struct {
	iface string
}

func New(iface string) *Netlink {
	return &Netlink{iface: iface}
}

// ApplyAddress replaces the interface address with the granted one and makes
// sure the link is up. A nil mask falls back to the address class default.
func (n *Netlink) ApplyAddress(ip net.IP, mask net.IPMask) error {
	link, err := netlink.LinkByName(n.iface)
	if err != nil {
		return fmt.Errorf("link lookup %s: %w", n.iface, err)
	}

	if mask == nil {
		mask = ip.DefaultMask()
	}
	addr := &netlink.Addr{
		IPNet: &net.IPNet{IP: ip, Mask: mask},
	}
	if err := netlink.AddrReplace(link, addr); err != nil {
		return fmt.Errorf("addr replace: %w", err)
	}
	if err := netlink.LinkSetUp(link); err != nil {
		return fmt.Errorf("link up: %w", err)
	}

	slog.Info("Configured interface", "interface", n.iface, "addr", addr.IPNet.String())
	return nil
}

// ApplyGateway installs the default route via the given gateway.
func (n *Netlink) ApplyGateway(gw net.IP) error {
	link, err := netlink.LinkByName(n.iface)
	if err != nil {
		return fmt.Errorf("link lookup %s: %w", n.iface, err)
	}

	route := &netlink.Route{
		LinkIndex: link.Attrs().Index,
		Gw:        gw,
	}
	if err := netlink.RouteReplace(route); err != nil {
		return fmt.Errorf("route replace: %w", err)
	}

	slog.Info("Configured default gateway", "interface", n.iface, "gateway", gw.String())
	return nil
}
