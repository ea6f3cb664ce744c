// Package netinfo pkg/netinfo/netinfo.go resolves the local host's network
// identity: its LAN IP, the MAC of the interface carrying it, and reverse
// DNS hostnames for scanned peers.
package netinfo

import (
	"errors"
	"net"
	"strings"

	gopsnet "github.com/shirou/gopsutil/v4/net"

	"github.com/carverauto/lanwatch/pkg/models"
)

//go:generate mockgen -destination=mock_netinfo.go -package=netinfo github.com/carverauto/lanwatch/pkg/netinfo HostInfo

// ErrNoLocalIP means the host has no routable interface to identify itself by.
var ErrNoLocalIP = errors.New("local IP address not found")

// HostInfo answers identity questions about the local host and its peers.
type HostInfo interface {
	// LocalIP returns the host's LAN address.
	LocalIP() (string, error)
	// LocalMAC returns the MAC of the interface owning ip, or Unknown.
	LocalMAC(ip string) string
	// Hostname reverse-resolves an IP, or returns Unknown.
	Hostname(ip string) string
}

// Local implements HostInfo against the running host.
type Local struct{}

// NewLocal returns a HostInfo backed by the host's real interfaces.
func NewLocal() *Local {
	return &Local{}
}

// LocalIP discovers the outbound LAN address by opening a UDP socket toward
// a public resolver. No packet is sent; the kernel just picks the route.
func (*Local) LocalIP() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "", ErrNoLocalIP
	}
	defer func() {
		_ = conn.Close()
	}()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return "", ErrNoLocalIP
	}

	return addr.IP.String(), nil
}

// LocalMAC walks the host interfaces looking for the one that owns ip and
// returns its hardware address in normalized colon form.
func (*Local) LocalMAC(ip string) string {
	ifaces, err := gopsnet.Interfaces()
	if err != nil {
		return models.Unknown
	}

	for _, iface := range ifaces {
		if iface.HardwareAddr == "" {
			continue
		}

		for _, addr := range iface.Addrs {
			// Addrs come back in CIDR notation.
			ifaceIP := strings.SplitN(addr.Addr, "/", 2)[0]
			if ifaceIP == ip {
				return strings.ToUpper(strings.ReplaceAll(iface.HardwareAddr, "-", ":"))
			}
		}
	}

	return models.Unknown
}

// Hostname performs a reverse DNS lookup with Unknown as fallback.
func (*Local) Hostname(ip string) string {
	names, err := net.LookupAddr(ip)
	if err != nil || len(names) == 0 {
		return models.Unknown
	}

	return strings.TrimSuffix(names[0], ".")
}

// SubnetPrefix returns the first three octets of an IPv4 address, the /24
// grouping key used for subnet-scoped listings and purges.
func SubnetPrefix(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return ip
	}

	return strings.Join(parts[:3], ".")
}

// CIDR returns the /24 scan range containing ip.
func CIDR(ip string) string {
	return SubnetPrefix(ip) + ".0/24"
}
