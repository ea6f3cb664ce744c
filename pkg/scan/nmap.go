// Package scan pkg/scan/nmap.go implements the scan primitive with an nmap
// ping sweep (-sn), the richest discovery source when the binary is
// installed: it reports MAC addresses and reverse names directly.
package scan

import (
	"context"
	"fmt"
	"log"

	nmap "github.com/Ullaakut/nmap/v3"

	"github.com/carverauto/lanwatch/pkg/models"
)

// NmapScanner sweeps a CIDR with nmap host discovery. MACs missing from
// the nmap output (non-root runs cannot read them) are recovered from the
// ARP cache the sweep itself just populated.
type NmapScanner struct{}

// NewNmapScanner returns an nmap-backed Scanner.
func NewNmapScanner() *NmapScanner {
	return &NmapScanner{}
}

// Available reports whether the nmap binary can be executed.
func (*NmapScanner) Available(ctx context.Context) bool {
	scanner, err := nmap.NewScanner(ctx,
		nmap.WithTargets("localhost"),
		nmap.WithListScan(),
	)
	if err != nil {
		return false
	}

	_, _, err = scanner.Run()

	return err == nil
}

// Scan implements Scanner.
func (*NmapScanner) Scan(ctx context.Context, cidr string) ([]models.ScanResult, error) {
	scanner, err := nmap.NewScanner(ctx,
		nmap.WithTargets(cidr),
		nmap.WithPingScan(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create nmap scanner: %w", err)
	}

	run, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("nmap sweep failed: %w", err)
	}

	if warnings != nil && len(*warnings) > 0 {
		log.Printf("scan: nmap warnings for %s: %v", cidr, *warnings)
	}

	arpTable := ARPTable(ctx)

	var results []models.ScanResult

	for i := range run.Hosts {
		host := &run.Hosts[i]
		if host.Status.State != "up" {
			continue
		}

		result := models.ScanResult{MAC: models.Unknown}

		for _, addr := range host.Addresses {
			switch addr.AddrType {
			case "ipv4":
				result.IP = addr.Addr
			case "mac":
				result.MAC = normalizeMAC(addr.Addr)
			}
		}

		if result.IP == "" {
			continue
		}

		if result.MAC == models.Unknown {
			result.MAC = lookupARP(arpTable, result.IP)
		}

		if len(host.Hostnames) > 0 {
			result.Hostname = host.Hostnames[0].Name
		}

		results = append(results, result)
	}

	return results, nil
}

func lookupARP(table map[string]string, ip string) string {
	if mac, ok := table[ip]; ok {
		return mac
	}

	return models.Unknown
}
