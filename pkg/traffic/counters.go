// Package traffic pkg/traffic/counters.go
package traffic

import (
	"errors"
	"fmt"

	gopsnet "github.com/shirou/gopsutil/v4/net"

	"github.com/carverauto/lanwatch/pkg/models"
)

//go:generate mockgen -destination=mock_traffic.go -package=traffic github.com/carverauto/lanwatch/pkg/traffic CounterSource

var errNoCounters = errors.New("no network counters available")

// CounterSource reads the host's cumulative NIC byte counters. Values only
// ever grow until an external reset (reboot, interface restart).
type CounterSource interface {
	Counters() (bytesRecv, bytesSent uint64, err error)
}

// HostCounters reads aggregate counters across all interfaces from the OS.
type HostCounters struct{}

// NewHostCounters returns the OS-backed counter source.
func NewHostCounters() *HostCounters {
	return &HostCounters{}
}

// Counters implements CounterSource.
func (*HostCounters) Counters() (uint64, uint64, error) {
	stats, err := gopsnet.IOCounters(false)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read net counters: %w", err)
	}

	if len(stats) == 0 {
		return 0, 0, errNoCounters
	}

	// pernic=false aggregates everything into the first entry.
	return stats[0].BytesRecv, stats[0].BytesSent, nil
}

// toMB converts a byte counter to two-decimal megabytes.
func toMB(bytes uint64) float64 {
	return models.RoundMB(float64(bytes) / (1024 * 1024))
}

// Snapshot reads a source and converts it to a counter snapshot in MB.
func Snapshot(source CounterSource) (models.Counters, error) {
	recv, sent, err := source.Counters()
	if err != nil {
		return models.Counters{}, err
	}

	return models.Counters{
		DownloadMB: toMB(recv),
		UploadMB:   toMB(sent),
	}, nil
}
