// Package netconf applies DHCP-negotiated addressing to the local network
// stack. The Linux implementation talks rtnetlink; everywhere else a
// logging no-op stands in so the client can still be exercised.
package netconf

import (
	"log/slog"
	"net"
)

// Noop logs what it would configure and does nothing. Useful on platforms
// without netlink and in dry runs.
type Noop struct{}

func (Noop) ApplyAddress(ip net.IP, mask net.IPMask) error {
	slog.Info("Skipping address configuration", "ip", ip.String(), "netmask", mask.String())
	return nil
}

func (Noop) ApplyGateway(gw net.IP) error {
	slog.Info("Skipping gateway configuration", "gateway", gw.String())
	return nil
}
