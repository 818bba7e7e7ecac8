package dhcp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"net"
)

const (
	BOOTREQUEST = 1
	BOOTREPLY   = 2
)

const (
	// DHCP Message Types
	DHCPDISCOVER byte = 1
	DHCPOFFER         = 2
	DHCPREQUEST       = 3
	DHCPDECLINE       = 4
	DHCPACK           = 5
	DHCPNAK           = 6
	DHCPRELEASE       = 7
	DHCPINFORM        = 8
)

const (
	hardwareEthernet = 1
	headerLen        = 240 // fixed BOOTP header plus magic cookie
)

var magicCookie = []byte{99, 130, 83, 99}

type Packet struct {
	Op      byte
	HType   byte
	HLen    byte
	Hops    byte
	XId     uint32
	Secs    uint16
	Flags   uint16
	CIAddr  net.IP
	YIAddr  net.IP
	SIAddr  net.IP
	GIAddr  net.IP
	CHAddr  net.HardwareAddr
	SName   []byte
	File    []byte
	Options Options
}

// NewRequest builds the header of a client-originated message: zeroed
// ciaddr/giaddr, no broadcast flag, chaddr padded to 16 bytes on the wire.
// Secs is fixed at 10 rather than measured; servers do not match on it.
func NewRequest(xid uint32, yiaddr, siaddr net.IP, mac net.HardwareAddr, opts Options) *Packet {
	return &Packet{
		Op:      BOOTREQUEST,
		HType:   hardwareEthernet,
		HLen:    byte(len(mac)),
		Hops:    0,
		XId:     xid,
		Secs:    10,
		Flags:   0,
		CIAddr:  net.IPv4zero,
		YIAddr:  yiaddr,
		SIAddr:  siaddr,
		GIAddr:  net.IPv4zero,
		CHAddr:  mac,
		Options: opts,
	}
}

func (p *Packet) IsBroadcast() bool {
	return p.Flags&0x8000 != 0
}

func (p *Packet) SetBroadcast() {
	p.Flags |= 0x8000
}

func (p *Packet) DHCPMessageType() byte {
	t, ok := p.Options.Lookup(OptionDHCPMessageType)
	if !ok || len(t) != 1 {
		return 0
	}
	return t[0]
}

func (p *Packet) Encode() []byte {
	opts := p.Options.Encode()
	data := make([]byte, headerLen, headerLen+len(opts)+1)
	data[0] = p.Op
	data[1] = p.HType
	data[2] = p.HLen
	data[3] = p.Hops
	binary.BigEndian.PutUint32(data[4:8], p.XId)
	binary.BigEndian.PutUint16(data[8:10], p.Secs)
	binary.BigEndian.PutUint16(data[10:12], p.Flags)
	copy(data[12:16], p.CIAddr.To4())
	copy(data[16:20], p.YIAddr.To4())
	copy(data[20:24], p.SIAddr.To4())
	copy(data[24:28], p.GIAddr.To4())
	copy(data[28:44], p.CHAddr) // right-padded with the zero fill
	copy(data[44:108], p.SName)
	copy(data[108:236], p.File)
	copy(data[236:240], magicCookie)
	data = append(data, opts...)
	data = append(data, OptionEnd)
	return data
}

func Decode(data []byte) (*Packet, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("packet too short: %d bytes", len(data))
	}
	if !bytes.Equal(data[236:240], magicCookie) {
		return nil, fmt.Errorf("bad magic cookie: %v", data[236:240])
	}

	opts, err := ParseOptions(data[240:])
	if err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}

	hlen := data[2]
	if hlen > 16 {
		hlen = 16
	}
	packet := &Packet{
		Op:      data[0],
		HType:   data[1],
		HLen:    data[2],
		Hops:    data[3],
		XId:     binary.BigEndian.Uint32(data[4:8]),
		Secs:    binary.BigEndian.Uint16(data[8:10]),
		Flags:   binary.BigEndian.Uint16(data[10:12]),
		CIAddr:  net.IP(data[12:16]),
		YIAddr:  net.IP(data[16:20]),
		SIAddr:  net.IP(data[20:24]),
		GIAddr:  net.IP(data[24:28]),
		CHAddr:  net.HardwareAddr(data[28 : 28+hlen]),
		SName:   data[44:108],
		File:    data[108:236],
		Options: opts,
	}
	return packet, nil
}
