package speed

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/netinfo"
	"github.com/carverauto/lanwatch/pkg/registry"
)

// Recorder runs speed tests for the local device and persists results.
type Recorder struct {
	db       db.Service
	registry *registry.Registry
	runner   Runner
	host     netinfo.HostInfo
}

// NewRecorder creates a speed test Recorder for the local host.
func NewRecorder(database db.Service, reg *registry.Registry, runner Runner, host netinfo.HostInfo) *Recorder {
	return &Recorder{
		db:       database,
		registry: reg,
		runner:   runner,
		host:     host,
	}
}

// Run executes a speed test, registers/refreshes the local device with
// its full identity, and appends the measurement.
func (r *Recorder) Run(ctx context.Context) (*models.SpeedResult, error) {
	measurement, err := r.runner.Measure(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMeasurement, err)
	}

	ip, err := r.host.LocalIP()
	if err != nil {
		return nil, registry.ErrNoIdentity
	}

	deviceID, err := r.registry.Reconcile(&models.Observation{
		IP:       ip,
		MAC:      r.host.LocalMAC(ip),
		Hostname: r.host.Hostname(ip),
	})
	if err != nil {
		return nil, err
	}

	result := &models.SpeedResult{
		DeviceID:     deviceID,
		PingMS:       models.RoundMB(measurement.PingMS),
		DownloadMbps: models.RoundMB(measurement.DownloadMbps),
		UploadMbps:   models.RoundMB(measurement.UploadMbps),
		Timestamp:    models.Now(),
	}

	_, err = r.db.Exec(`
		INSERT INTO velocidade (dispositivo_id, ping_ms, download_mb, upload_mb, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`, result.DeviceID, result.PingMS, result.DownloadMbps, result.UploadMbps, result.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%w speed result: %w", db.ErrFailedToInsert, err)
	}

	log.Printf("speedtest: ping %.2f ms | download %.2f Mbps | upload %.2f Mbps",
		result.PingMS, result.DownloadMbps, result.UploadMbps)

	return result, nil
}

// History returns the local device's stored measurements, newest first.
// A host that never measured has no device row; that is an empty history,
// not an error.
func (r *Recorder) History() ([]models.SpeedResult, error) {
	device, err := r.localDevice()
	if err != nil {
		if errors.Is(err, registry.ErrDeviceNotFound) {
			return []models.SpeedResult{}, nil
		}

		return nil, err
	}

	rows, err := r.db.Query(`
		SELECT id, dispositivo_id, ping_ms, download_mb, upload_mb, timestamp
		FROM velocidade
		WHERE dispositivo_id = ?
		ORDER BY timestamp DESC, id DESC
	`, device.ID)
	if err != nil {
		return nil, fmt.Errorf("%w speed history: %w", db.ErrFailedToQuery, err)
	}
	defer db.CloseRows(rows)

	var results []models.SpeedResult

	for rows.Next() {
		var result models.SpeedResult
		if err := rows.Scan(&result.ID, &result.DeviceID, &result.PingMS,
			&result.DownloadMbps, &result.UploadMbps, &result.Timestamp); err != nil {
			return nil, fmt.Errorf("%w speed row: %w", db.ErrFailedToScan, err)
		}

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w speed history: %w", db.ErrFailedToQuery, err)
	}

	return results, nil
}

// Purge deletes the local device's measurement history.
func (r *Recorder) Purge() error {
	device, err := r.localDevice()
	if err != nil {
		return err
	}

	if _, err := r.db.Exec("DELETE FROM velocidade WHERE dispositivo_id = ?", device.ID); err != nil {
		return fmt.Errorf("%w speed history: %w", db.ErrFailedToDelete, err)
	}

	return nil
}

func (r *Recorder) localDevice() (*models.Device, error) {
	ip, err := r.host.LocalIP()
	if err != nil {
		return nil, registry.ErrNoIdentity
	}

	return r.registry.GetByIP(ip)
}
