// Package scan pkg/scan/interfaces.go
package scan

import (
	"context"

	"github.com/carverauto/lanwatch/pkg/models"
)

//go:generate mockgen -destination=mock_scan.go -package=scan github.com/carverauto/lanwatch/pkg/scan Scanner

// Scanner is the network scan primitive: sweep a CIDR and report the live
// hosts with whatever identity (MAC, hostname) the probe could observe.
type Scanner interface {
	Scan(ctx context.Context, cidr string) ([]models.ScanResult, error)
}
