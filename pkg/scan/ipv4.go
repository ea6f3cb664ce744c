// Package scan pkg/scan/ipv4.go
package scan

import "net"

// GenerateIPsFromCIDR expands a CIDR range into its usable host addresses,
// skipping the network and broadcast addresses.
func GenerateIPsFromCIDR(network string) ([]net.IP, error) {
	ip, ipnet, err := net.ParseCIDR(network)
	if err != nil {
		return nil, err
	}

	ones, bits := ipnet.Mask.Size()
	if ones == bits {
		single := make(net.IP, len(ip))
		copy(single, ip)

		return []net.IP{single}, nil
	}

	size := 1 << uint(bits-ones)
	if size > 2 {
		size -= 2 // network and broadcast
	}

	ips := make([]net.IP, 0, size)

	current := ip.Mask(ipnet.Mask)
	Inc(current) // skip network address

	for ipnet.Contains(current) && len(ips) < size {
		next := make(net.IP, len(current))
		copy(next, current)
		ips = append(ips, next)

		Inc(current)
	}

	return ips, nil
}

// Inc increments an IP address in place.
func Inc(ip net.IP) {
	for i := len(ip) - 1; i >= 0; i-- {
		ip[i]++
		if ip[i] > 0 {
			break
		}
	}
}
