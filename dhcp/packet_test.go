package dhcp

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/krolaw/dhcp4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMAC = net.HardwareAddr{0x04, 0xEC, 0xD8, 0x40, 0xF8, 0x12}

func TestPacketRoundTrip(t *testing.T) {
	opts := Options{
		BytesOption(OptionDHCPMessageType, DHCPREQUEST),
		IPOption(OptionRequestedIPAddress, net.IPv4(10, 0, 0, 5)),
		IPOption(OptionServerIdentifier, net.IPv4(10, 0, 0, 1)),
	}
	p := NewRequest(0x29AA5FB2, net.IPv4(10, 0, 0, 5), net.IPv4(10, 0, 0, 1), testMAC, opts)

	decoded, err := Decode(p.Encode())
	require.NoError(t, err)

	assert.Equal(t, byte(BOOTREQUEST), decoded.Op)
	assert.Equal(t, uint32(0x29AA5FB2), decoded.XId)
	assert.True(t, decoded.CIAddr.Equal(net.IPv4zero))
	assert.True(t, decoded.YIAddr.Equal(net.IPv4(10, 0, 0, 5)))
	assert.True(t, decoded.SIAddr.Equal(net.IPv4(10, 0, 0, 1)))
	assert.True(t, decoded.GIAddr.Equal(net.IPv4zero))
	assert.Equal(t, testMAC, decoded.CHAddr)
	assert.Equal(t, opts, decoded.Options)
	assert.Equal(t, byte(DHCPREQUEST), decoded.DHCPMessageType())
}

func TestDecodeRejectsMalformed(t *testing.T) {
	discover := NewRequest(1, net.IPv4zero, net.IPv4zero, testMAC, Options{
		BytesOption(OptionDHCPMessageType, DHCPDISCOVER),
	}).Encode()

	testCases := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "truncated header", data: discover[:200]},
		{name: "bad magic cookie", data: func() []byte {
			d := append([]byte(nil), discover...)
			d[236] = 0
			return d
		}()},
		{name: "truncated option record", data: append(append([]byte(nil), discover[:240]...), OptionHostname, 40, 'x')},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			assert.Error(t, err)
		})
	}
}

// The encoder must produce bytes an independent DHCP implementation can
// read back.
func TestEncodeAgainstReferenceParser(t *testing.T) {
	opts := Options{
		BytesOption(OptionDHCPMessageType, DHCPDISCOVER),
		BytesOption(OptionParameterRequestList,
			OptionSubnetMask, OptionRouter, OptionDomainNameServer, OptionBroadcastAddress),
		StringOption(OptionHostname, "gopher"),
	}
	p := NewRequest(0xDEADBEEF, net.IPv4zero, net.IPv4zero, testMAC, opts)

	ref := dhcp4.Packet(p.Encode())
	assert.Equal(t, dhcp4.BootRequest, ref.OpCode())
	assert.Equal(t, uint32(0xDEADBEEF), binary.BigEndian.Uint32(ref.XId()))
	assert.Equal(t, testMAC, ref.CHAddr())

	parsed := ref.ParseOptions()
	require.Contains(t, parsed, dhcp4.OptionDHCPMessageType)
	assert.Equal(t, []byte{byte(dhcp4.Discover)}, parsed[dhcp4.OptionDHCPMessageType])
	assert.Equal(t, []byte{1, 3, 6, 28}, parsed[dhcp4.OptionParameterRequestList])
	assert.Equal(t, []byte("gopher"), parsed[dhcp4.OptionHostName])
}

func TestBroadcastUDPWrap(t *testing.T) {
	p := NewRequest(7, net.IPv4zero, net.IPv4zero, testMAC, Options{
		BytesOption(OptionDHCPMessageType, DHCPDISCOVER),
	})
	payload := p.Encode()
	datagram := p.Broadcast()

	require.Equal(t, 8+len(payload), len(datagram))
	assert.Equal(t, uint16(ClientPort), binary.BigEndian.Uint16(datagram[0:2]))
	assert.Equal(t, uint16(ServerPort), binary.BigEndian.Uint16(datagram[2:4]))
	assert.Equal(t, uint16(len(datagram)), binary.BigEndian.Uint16(datagram[4:6]))
	assert.Equal(t, uint16(0), binary.BigEndian.Uint16(datagram[6:8]), "checksum stays zero")
	assert.Equal(t, payload, datagram[8:])
}
