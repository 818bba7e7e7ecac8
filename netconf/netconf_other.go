//go:build !linux

package netconf

// New returns the no-op configurer on platforms without netlink.
func New(iface string) Noop {
	return Noop{}
}
