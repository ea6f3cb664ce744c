// Package scan pkg/scan/factory.go
package scan

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/carverauto/lanwatch/pkg/models"
)

var errAllScannersFailed = errors.New("all scanners failed")

// FallbackScanner tries a chain of scan primitives in order and returns
// the first successful sweep. nmap gives the richest results, ICMP needs
// raw sockets, TCP always works but sees the least.
type FallbackScanner struct {
	chain []Scanner
}

// NewDefaultScanner builds the standard chain: nmap when installed, then
// ICMP, then TCP connect probes.
func NewDefaultScanner(ctx context.Context, timeout time.Duration) *FallbackScanner {
	chain := make([]Scanner, 0, 3)

	nmapScanner := NewNmapScanner()
	if nmapScanner.Available(ctx) {
		chain = append(chain, nmapScanner)
	} else {
		log.Printf("scan: nmap binary not available, using fallback probes")
	}

	chain = append(chain,
		NewICMPScanner(timeout),
		NewTCPScanner(0, 0),
	)

	return &FallbackScanner{chain: chain}
}

// Scan implements Scanner.
func (f *FallbackScanner) Scan(ctx context.Context, cidr string) ([]models.ScanResult, error) {
	for _, scanner := range f.chain {
		results, err := scanner.Scan(ctx, cidr)
		if err != nil {
			log.Printf("scan: %T failed for %s: %v", scanner, cidr, err)
			continue
		}

		return results, nil
	}

	return nil, errAllScannersFailed
}
