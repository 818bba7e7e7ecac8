package transport

import (
	"errors"
	"fmt"
	"net"
)

// Datagram is one demultiplexed inbound UDP datagram together with the
// addressing information from its IP and UDP envelopes.
type Datagram struct {
	SrcIP, DstIP     net.IP
	SrcPort, DstPort uint16
	Payload          []byte
}

// Handler consumes inbound datagrams addressed to the DHCP client port.
// A non-nil error stops the receive loop; anything recoverable should be
// handled (or logged) inside the handler instead.
type Handler func(*Datagram) error

// Transport transmits UDP datagrams to the IPv4 broadcast address on behalf
// of the client.
type Transport interface {
	SendBroadcast(payload []byte) error
	Close() error
}

// PickInterface returns the named interface, or when name is empty the first
// interface that is up, not loopback and carries an IPv4 address.
func PickInterface(name string) (*net.Interface, error) {
	if name != "" {
		iface, err := net.InterfaceByName(name)
		if err != nil {
			return nil, fmt.Errorf("could not get interface: %v", err)
		}
		return iface, nil
	}

	interfaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to get network interfaces: %v", err)
	}

	for _, iface := range interfaces {
		// Skip loopback and interfaces that are down
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					return net.InterfaceByName(iface.Name)
				}
			}
		}
	}

	return nil, errors.New("no suitable network interface found")
}
