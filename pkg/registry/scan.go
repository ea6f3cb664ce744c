// Package registry pkg/registry/scan.go orchestrates a full network scan:
// scan primitive -> classification -> reconciliation.
package registry

import (
	"context"
	"fmt"

	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/netinfo"
	"github.com/carverauto/lanwatch/pkg/scan"
)

// Classifier maps a MAC address to (vendor, class). Lookup failures are the
// classifier's problem; it always answers.
type Classifier interface {
	Classify(ctx context.Context, mac string) (vendor, class string)
}

// NetworkScan wires the scan primitive, the manufacturer classifier, and
// the registry into the discovery pipeline behind the live-scan endpoint.
type NetworkScan struct {
	registry *Registry
	scanner  scan.Scanner
	classify Classifier
	host     netinfo.HostInfo
}

// NewNetworkScan builds the discovery pipeline.
func NewNetworkScan(reg *Registry, scanner scan.Scanner, classifier Classifier, host netinfo.HostInfo) *NetworkScan {
	return &NetworkScan{
		registry: reg,
		scanner:  scanner,
		classify: classifier,
		host:     host,
	}
}

// Run sweeps the local /24, classifies every discovered host, and
// reconciles the results into the registry. Devices whose MAC went
// unseen are flipped offline in the same transaction.
func (s *NetworkScan) Run(ctx context.Context) ([]models.Device, error) {
	localIP, err := s.host.LocalIP()
	if err != nil {
		return nil, ErrNoIdentity
	}

	results, err := s.scanner.Scan(ctx, netinfo.CIDR(localIP))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errScanFailed, err)
	}

	observations := make([]models.Observation, 0, len(results))

	for _, res := range results {
		mac := res.MAC
		if res.IP == localIP {
			// The scan primitive cannot see our own MAC; read it from
			// the interface instead.
			mac = s.host.LocalMAC(localIP)
		}

		hostname := res.Hostname
		if hostname == "" {
			hostname = s.host.Hostname(res.IP)
		}

		vendor, class := s.classify.Classify(ctx, mac)

		observations = append(observations, models.Observation{
			IP:           res.IP,
			MAC:          mac,
			Hostname:     hostname,
			Manufacturer: vendor,
			Class:        class,
		})
	}

	return s.registry.ApplyScan(observations)
}
