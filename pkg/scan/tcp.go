// Package scan pkg/scan/tcp.go implements the scan primitive with plain
// TCP connect probes: unprivileged, slower, and blind to hosts with every
// probed port closed. Last resort in the fallback chain.
package scan

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/carverauto/lanwatch/pkg/models"
)

const (
	defaultTCPTimeout     = 500 * time.Millisecond
	defaultTCPConcurrency = 50
)

// defaultProbePorts are services common enough that a LAN host almost
// always answers on at least one of them.
var defaultProbePorts = []int{22, 53, 80, 139, 443, 445, 3389, 5000, 8080, 62078}

// TCPScanner probes each host in a CIDR on a short list of common ports
// and reports those accepting at least one connection.
type TCPScanner struct {
	timeout     time.Duration
	concurrency int
	ports       []int
}

// NewTCPScanner returns a TCP connect Scanner.
func NewTCPScanner(timeout time.Duration, concurrency int) *TCPScanner {
	if timeout <= 0 {
		timeout = defaultTCPTimeout
	}

	if concurrency <= 0 {
		concurrency = defaultTCPConcurrency
	}

	return &TCPScanner{
		timeout:     timeout,
		concurrency: concurrency,
		ports:       defaultProbePorts,
	}
}

// Scan implements Scanner.
func (s *TCPScanner) Scan(ctx context.Context, cidr string) ([]models.ScanResult, error) {
	ips, err := GenerateIPsFromCIDR(cidr)
	if err != nil {
		return nil, fmt.Errorf("invalid scan range %q: %w", cidr, err)
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		alive []string
	)

	sem := make(chan struct{}, s.concurrency)

	for _, ip := range ips {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)

		go func(target string) {
			defer wg.Done()
			defer func() { <-sem }()

			if s.probe(ctx, target) {
				mu.Lock()
				alive = append(alive, target)
				mu.Unlock()
			}
		}(ip.String())
	}

	wg.Wait()

	arpTable := ARPTable(ctx)

	results := make([]models.ScanResult, 0, len(alive))
	for _, ip := range alive {
		results = append(results, models.ScanResult{
			IP:  ip,
			MAC: lookupARP(arpTable, ip),
		})
	}

	return results, nil
}

// probe reports whether the host accepts a connection on any probe port.
func (s *TCPScanner) probe(ctx context.Context, ip string) bool {
	var d net.Dialer

	for _, port := range s.ports {
		connCtx, cancel := context.WithTimeout(ctx, s.timeout)

		conn, err := d.DialContext(connCtx, "tcp", net.JoinHostPort(ip, strconv.Itoa(port)))

		cancel()

		if err == nil {
			_ = conn.Close()
			return true
		}
	}

	return false
}
