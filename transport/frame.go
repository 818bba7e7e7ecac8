package transport

import (
	"encoding/binary"
	"net"
)

const (
	ttlHeader        = 0xFF
	udpProtocol      = 17
	ethernetIPv4Type = 0x0800
)

var broadcastMAC = net.HardwareAddr{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

type ipHeader struct {
	Version             uint8
	Length              uint16
	Protocol            uint8
	Source, Destination net.IP
}

func (i *ipHeader) Encode() []byte {
	data := make([]byte, 20)
	data[0] = i.Version
	binary.BigEndian.PutUint16(data[2:], i.Length)
	data[8] = ttlHeader
	data[9] = i.Protocol
	copy(data[12:16], i.Source.To4())
	copy(data[16:20], i.Destination.To4())
	binary.BigEndian.PutUint16(data[10:12], ipChecksum(data))
	return data
}

// ipChecksum is the ones'-complement sum over the 20-byte header. Kernels
// silently drop raw frames that carry a zero header checksum.
func ipChecksum(header []byte) uint16 {
	var sum uint32
	for i := 0; i+1 < len(header); i += 2 {
		sum += uint32(binary.BigEndian.Uint16(header[i : i+2]))
	}
	for sum > 0xFFFF {
		sum = (sum >> 16) + (sum & 0xFFFF)
	}
	return ^uint16(sum)
}

type ethernet struct {
	Source, Destination net.HardwareAddr
	Type                uint16

	Payload []byte
}

func (e *ethernet) Encode() []byte {
	eth := make([]byte, 14+len(e.Payload))
	copy(eth[0:6], e.Destination)
	copy(eth[6:12], e.Source)
	eth[12] = byte(e.Type >> 8)
	eth[13] = byte(e.Type)
	copy(eth[14:], e.Payload)
	return eth
}

// BroadcastFrame wraps a UDP datagram in the IPv4 and Ethernet envelopes for
// an all-ones broadcast: 0.0.0.0 -> 255.255.255.255, srcMAC -> ff:ff:ff:ff:ff:ff.
func BroadcastFrame(srcMAC net.HardwareAddr, datagram []byte) []byte {
	h := ipHeader{
		Version:     0x45, // IPv4, 20-byte header
		Length:      uint16(20 + len(datagram)),
		Protocol:    udpProtocol,
		Source:      net.IPv4zero,
		Destination: net.IPv4bcast,
	}
	payload := append(h.Encode(), datagram...)

	e := ethernet{
		Source:      srcMAC,
		Destination: broadcastMAC,
		Type:        ethernetIPv4Type,
		Payload:     payload,
	}
	return e.Encode()
}
