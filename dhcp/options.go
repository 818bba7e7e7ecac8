package dhcp

import (
	"encoding/binary"
	"fmt"
	"net"
	"strings"
)

const (
	// Commonly used DHCP options
	OptionSubnetMask           byte = 1
	OptionRouter                    = 3
	OptionDomainNameServer          = 6
	OptionHostname                  = 12
	OptionDomainName                = 15
	OptionBroadcastAddress          = 28
	OptionRequestedIPAddress        = 50
	OptionIPAddressLeaseTime        = 51
	OptionDHCPMessageType           = 53
	OptionServerIdentifier          = 54
	OptionParameterRequestList      = 55
	OptionRenewalTime               = 58
	OptionRebindingTime             = 59
	OptionClientIdentifier          = 61
	OptionEnd                       = 255
)

// optionNames maps the codes this client produces or consults to the names
// used in log output. Codes outside the table still decode, they just print
// numerically.
var optionNames = map[byte]string{
	OptionSubnetMask:           "Subnet Mask",
	OptionRouter:               "Router",
	OptionDomainNameServer:     "Domain Server",
	OptionHostname:             "Hostname",
	OptionDomainName:           "Domain Name",
	OptionBroadcastAddress:     "Broadcast Address",
	OptionRequestedIPAddress:   "Address Request",
	OptionIPAddressLeaseTime:   "Address Time",
	OptionDHCPMessageType:      "DHCP Msg Type",
	OptionServerIdentifier:     "DHCP Server Id",
	OptionParameterRequestList: "Parameter List",
	OptionRenewalTime:          "Renewal Time",
	OptionRebindingTime:        "Rebinding Time",
	OptionClientIdentifier:     "Client Id",
}

// Option is a single TLV record from the DHCP options section.
type Option struct {
	Code byte
	Data []byte
}

func (o Option) String() string {
	if name, ok := optionNames[o.Code]; ok {
		return fmt.Sprintf("%s: %v", name, o.Data)
	}
	return fmt.Sprintf("option %d: %v", o.Code, o.Data)
}

// Options is the option list in wire order. Lookups are by code and do not
// depend on the position of an option within the list.
type Options []Option

func (opts Options) String() string {
	b := strings.Builder{}
	for i, o := range opts {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(o.String())
	}
	return b.String()
}

// Encode serializes each option as (code, length, payload) in list order.
// The End marker is not written here; the packet encoder appends it.
func (opts Options) Encode() []byte {
	n := 0
	for _, o := range opts {
		n += 2 + len(o.Data)
	}
	data := make([]byte, 0, n)
	for _, o := range opts {
		data = append(data, o.Code, byte(len(o.Data)))
		data = append(data, o.Data...)
	}
	return data
}

// ParseOptions walks the TLV stream up to the End marker. Unknown codes are
// kept as raw records so later options still parse. A truncated record fails
// the whole parse; the caller drops the packet, nothing more.
func ParseOptions(data []byte) (Options, error) {
	var opts Options
	for i := 0; i < len(data); {
		code := data[i]
		if code == 0 { // pad
			i++
			continue
		}
		if code == OptionEnd {
			break
		}
		if i+1 >= len(data) {
			return nil, fmt.Errorf("option %d: missing length byte", code)
		}
		length := int(data[i+1])
		if i+2+length > len(data) {
			return nil, fmt.Errorf("option %d: length %d exceeds remaining %d bytes", code, length, len(data)-i-2)
		}
		opts = append(opts, Option{Code: code, Data: data[i+2 : i+2+length]})
		i += 2 + length
	}
	return opts, nil
}

// Lookup returns the payload of the first option with the given code.
func (opts Options) Lookup(code byte) ([]byte, bool) {
	for _, o := range opts {
		if o.Code == code {
			return o.Data, true
		}
	}
	return nil, false
}

// IP extracts a single IPv4 address option. Absence or a malformed payload
// is a normal outcome, not an error.
func (opts Options) IP(code byte) (net.IP, bool) {
	data, ok := opts.Lookup(code)
	if !ok || len(data) != 4 {
		return nil, false
	}
	return net.IP(data), true
}

// IPList extracts a multi-address option such as Router or Domain Server.
// Absence yields an empty list.
func (opts Options) IPList(code byte) []net.IP {
	data, ok := opts.Lookup(code)
	if !ok || len(data) == 0 || len(data)%4 != 0 {
		return nil
	}
	ips := make([]net.IP, 0, len(data)/4)
	for i := 0; i < len(data); i += 4 {
		ips = append(ips, net.IP(data[i:i+4]))
	}
	return ips
}

// Uint32 extracts a 32-bit option such as the lease time.
func (opts Options) Uint32(code byte) (uint32, bool) {
	data, ok := opts.Lookup(code)
	if !ok || len(data) != 4 {
		return 0, false
	}
	return binary.BigEndian.Uint32(data), true
}

// GetString extracts a string option such as the hostname.
func (opts Options) GetString(code byte) (string, bool) {
	data, ok := opts.Lookup(code)
	if !ok {
		return "", false
	}
	return string(data), true
}

func IPOption(code byte, ip net.IP) Option {
	return Option{Code: code, Data: ip.To4()}
}

func IPListOption(code byte, ips []net.IP) Option {
	data := make([]byte, 0, len(ips)*4)
	for _, ip := range ips {
		data = append(data, ip.To4()...)
	}
	return Option{Code: code, Data: data}
}

func Uint32Option(code byte, v uint32) Option {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, v)
	return Option{Code: code, Data: data}
}

func StringOption(code byte, s string) Option {
	return Option{Code: code, Data: []byte(s)}
}

func BytesOption(code byte, data ...byte) Option {
	return Option{Code: code, Data: data}
}
