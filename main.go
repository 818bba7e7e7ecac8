// dhcpc negotiates an IPv4 lease for one interface and applies the granted
// address to it. Once the lease is bound the process exits; with -announce
// it first writes the lease to stdout as a msgpack document so a supervising
// init process can pick up the resulting network settings.
//
// There is no renewal: callers wanting a fresh lease run the program again.
package main

import (
	"flag"
	"log/slog"
	"net"
	"os"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"gopkg.in/vmihailenco/msgpack.v2"

	"dhcpc/client"
	"dhcpc/netconf"
	"dhcpc/transport"
)

type netConfigurer interface {
	ApplyAddress(ip net.IP, mask net.IPMask) error
	ApplyGateway(gw net.IP) error
}

func main() {
	ifaceName := flag.String("iface", "", "interface to configure (default: first usable interface)")
	hostname := flag.String("hostname", "", "host name announced to the DHCP server (default: system hostname)")
	announce := flag.Bool("announce", false, "write the bound lease to stdout as msgpack")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	slog.SetDefault(slogutil.New(&slogutil.Config{
		Output:  os.Stderr,
		Format:  slogutil.FormatText,
		Verbose: *verbose,
	}))

	if *hostname == "" {
		h, err := os.Hostname()
		if err != nil {
			slog.Error("Cannot determine hostname", "error", err)
			os.Exit(1)
		}
		*hostname = h
	}

	iface, err := transport.PickInterface(*ifaceName)
	if err != nil {
		slog.Error("No usable interface", "error", err)
		os.Exit(1)
	}
	slog.Info("Using interface", "name", iface.Name, "mac", iface.HardwareAddr.String())

	conn, err := transport.Listen(iface)
	if err != nil {
		slog.Error("Cannot open raw transport", "interface", iface.Name, "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	var nc netConfigurer = netconf.New(iface.Name)
	enc := msgpack.NewEncoder(os.Stdout)

	c := client.New(conn, nc, client.Config{
		MAC:      iface.HardwareAddr,
		Hostname: *hostname,
		OnBound: func(lease *client.Lease) {
			if len(lease.Gateways) > 0 {
				if err := nc.ApplyGateway(lease.Gateways[0]); err != nil {
					slog.Error("Set address but failed to configure default gateway", "error", err)
				}
			}
			if *announce {
				if err := enc.Encode(lease); err != nil {
					slog.Warn("Failed to encode lease for announcement", "error", err)
				}
			}
			// Lease bound, nothing left to wait for.
			_ = conn.Close()
		},
	})

	if err := c.StartDiscovery(); err != nil {
		slog.Error("DHCP discovery failed", "error", err)
		os.Exit(1)
	}
	if err := conn.Serve(c.Input); err != nil {
		slog.Error("DHCP exchange failed", "error", err)
		os.Exit(1)
	}
}
