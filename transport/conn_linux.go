//go:build linux

package transport

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"golang.org/x/sys/unix"

	"dhcpc/dhcp"
)

// PacketConn is a raw AF_PACKET connection bound to one interface. It sends
// client broadcasts and demultiplexes inbound Ethernet/IPv4/UDP frames down
// to the DHCP client port.
type PacketConn struct {
	iface *net.Interface
	conn  net.PacketConn
}

func Listen(iface *net.Interface) (*PacketConn, error) {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %v", err)
	}
	defer unix.Close(fd)

	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1); err != nil {
		return nil, fmt.Errorf("cannot set broadcasting on socket: %v", err)
	}
	if err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return nil, fmt.Errorf("cannot set reuseaddr on socket: %v", err)
	}
	if err = unix.BindToDevice(fd, iface.Name); err != nil {
		return nil, fmt.Errorf("failed to bind to device: %v", err)
	}

	f := os.NewFile(uintptr(fd), "")
	defer f.Close()

	conn, err := net.FilePacketConn(f)
	if err != nil {
		return nil, err
	}
	slog.Info("Listening for DHCP replies", "interface", iface.Name)
	return &PacketConn{iface: iface, conn: conn}, nil
}

// SendBroadcast frames the datagram for the all-ones broadcast and writes it
// out through a short-lived raw socket bound to the interface.
func (c *PacketConn) SendBroadcast(payload []byte) error {
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return fmt.Errorf("failed to create socket: %v", err)
	}
	defer unix.Close(fd)

	if err := unix.BindToDevice(fd, c.iface.Name); err != nil {
		return fmt.Errorf("failed to bind to device: %v", err)
	}

	frame := BroadcastFrame(c.iface.HardwareAddr, payload)

	var addr unix.SockaddrLinklayer
	addr.Protocol = htons(unix.ETH_P_IP)
	addr.Ifindex = c.iface.Index
	addr.Halen = 6
	copy(addr.Addr[:], broadcastMAC)

	if err := unix.Sendto(fd, frame, 0, &addr); err != nil {
		return fmt.Errorf("failed to send packet: %v", err)
	}
	slog.Debug("Sent broadcast frame", "interface", c.iface.Name, "bytes", len(frame))
	return nil
}

// Serve reads frames until the connection is closed or the handler fails.
// Frames that are not IPv4/UDP to the client port are skipped.
func (c *PacketConn) Serve(handler Handler) error {
	buf := make([]byte, c.iface.MTU+14)
	for {
		n, _, err := c.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			slog.Error("Error reading packet", "error", err)
			continue
		}

		dg, ok := demux(buf[:n])
		if !ok {
			continue
		}
		if err := handler(dg); err != nil {
			return err
		}
	}
}

func (c *PacketConn) Close() error {
	return c.conn.Close()
}

// demux peels the Ethernet/IPv4/UDP envelopes off an inbound frame and keeps
// only datagrams addressed to the DHCP client port.
func demux(frame []byte) (*Datagram, bool) {
	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.NoCopy)

	ipLayer := pkt.Layer(layers.LayerTypeIPv4)
	udpLayer := pkt.Layer(layers.LayerTypeUDP)
	if ipLayer == nil || udpLayer == nil {
		return nil, false
	}
	ip := ipLayer.(*layers.IPv4)
	udp := udpLayer.(*layers.UDP)
	if udp.DstPort != dhcp.ClientPort {
		return nil, false
	}

	payload := make([]byte, len(udp.Payload))
	copy(payload, udp.Payload)
	return &Datagram{
		SrcIP:   ip.SrcIP,
		DstIP:   ip.DstIP,
		SrcPort: uint16(udp.SrcPort),
		DstPort: uint16(udp.DstPort),
		Payload: payload,
	}, true
}

func htons(host uint16) uint16 {
	return (host&0xff)<<8 | (host >> 8)
}
