// Package models pkg/models/device.go defines the shared domain types for lanwatch.
package models

// Unknown is the placeholder used wherever a network identity attribute
// could not be resolved (MAC address, vendor, hostname, device class).
const Unknown = "Unknown"

// Device is the canonical record for one physical network endpoint.
//
// The MAC address is the primary natural key; it survives DHCP churn. When
// the MAC is Unknown, uniqueness degrades to the IP address. That weaker
// guarantee is deliberate: two MAC-less devices reusing a leased IP can
// collide into one row.
type Device struct {
	ID           int64     `json:"id"`
	IP           string    `json:"ip"`
	MAC          string    `json:"mac"`
	Hostname     string    `json:"hostname"`
	Manufacturer string    `json:"fabricante"`
	Class        string    `json:"tipo"`
	LastSeen     Timestamp `json:"ultima_verificacao"`
	Online       bool      `json:"online"`
}

// Observation is a single sighting of a device, from a network scan or a
// local registration path. Empty attribute fields mean "not observed" and
// never overwrite persisted values.
type Observation struct {
	IP           string
	MAC          string
	Hostname     string
	Manufacturer string
	Class        string
}

// HasMAC reports whether the observation carries a usable MAC address.
func (o *Observation) HasMAC() bool {
	return o.MAC != "" && o.MAC != Unknown
}

// ScanResult is one live host reported by the network scan primitive.
type ScanResult struct {
	IP       string `json:"ip"`
	MAC      string `json:"mac"`
	Hostname string `json:"hostname"`
}
