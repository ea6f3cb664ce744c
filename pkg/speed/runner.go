// Package speed pkg/speed/runner.go measures internet link speed against
// public speedtest.net servers and records the results.
package speed

import (
	"context"
	"fmt"

	"github.com/showwin/speedtest-go/speedtest"
)

//go:generate mockgen -destination=mock_speed.go -package=speed github.com/carverauto/lanwatch/pkg/speed Runner

// Measurement is the outcome of a single speed test run. Speeds are in
// megabits per second, latency in milliseconds.
type Measurement struct {
	PingMS       float64
	DownloadMbps float64
	UploadMbps   float64
}

// Runner performs a speed measurement against an external target.
type Runner interface {
	Measure(ctx context.Context) (*Measurement, error)
}

// SpeedtestRunner measures against the nearest speedtest.net server.
type SpeedtestRunner struct {
	client *speedtest.Speedtest
}

// NewSpeedtestRunner creates a Runner backed by speedtest.net.
func NewSpeedtestRunner() *SpeedtestRunner {
	return &SpeedtestRunner{client: speedtest.New()}
}

// Measure picks the nearest server and runs ping, download and upload
// phases in sequence. The full run takes tens of seconds.
func (r *SpeedtestRunner) Measure(ctx context.Context) (*Measurement, error) {
	servers, err := r.client.FetchServerListContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch server list: %w", err)
	}

	targets, err := servers.FindServer(nil)
	if err != nil {
		return nil, fmt.Errorf("find server: %w", err)
	}

	if len(targets) == 0 {
		return nil, errNoServers
	}

	server := targets[0]

	if err := server.PingTestContext(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping test: %w", err)
	}

	if err := server.DownloadTestContext(ctx); err != nil {
		return nil, fmt.Errorf("download test: %w", err)
	}

	if err := server.UploadTestContext(ctx); err != nil {
		return nil, fmt.Errorf("upload test: %w", err)
	}

	return &Measurement{
		PingMS:       float64(server.Latency.Microseconds()) / 1000,
		DownloadMbps: server.DLSpeed.Mbps(),
		UploadMbps:   server.ULSpeed.Mbps(),
	}, nil
}
