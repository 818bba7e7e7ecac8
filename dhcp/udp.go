package dhcp

import "encoding/binary"

const (
	ClientPort = 68
	ServerPort = 67
)

type udpHeader struct {
	Source, Destination uint16
	Length              uint16
	Payload             []byte
}

func (u *udpHeader) Encode() []byte {
	data := make([]byte, 8+len(u.Payload))
	binary.BigEndian.PutUint16(data[0:], u.Source)
	binary.BigEndian.PutUint16(data[2:], u.Destination)
	binary.BigEndian.PutUint16(data[4:], u.Length)
	// checksum at data[6:8] stays zero; UDP over IPv4 permits omitting it
	copy(data[8:], u.Payload)
	return data
}

// Broadcast returns the encoded message wrapped in a UDP header from the
// client port to the server port, ready to be framed for the IPv4 broadcast
// address.
func (p *Packet) Broadcast() []byte {
	payload := p.Encode()
	u := udpHeader{
		Source:      ClientPort,
		Destination: ServerPort,
		Length:      uint16(8 + len(payload)),
		Payload:     payload,
	}
	return u.Encode()
}
