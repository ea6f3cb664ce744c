// Package traffic pkg/traffic/sampler.go appends immutable point readings
// of the local host's cumulative traffic counters. No deltas are computed
// here; sessions derive usage from two snapshots.
package traffic

import (
	"errors"
	"fmt"
	"log"

	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/netinfo"
	"github.com/carverauto/lanwatch/pkg/registry"
)

// Reading is a fresh sample plus the derived total, the shape the traffic
// endpoint returns.
type Reading struct {
	Timestamp  models.Timestamp `json:"data"`
	DeviceIP   string           `json:"dispositivo_ip"`
	DownloadMB float64          `json:"download_mb"`
	UploadMB   float64          `json:"upload_mb"`
	TotalMB    float64          `json:"total_mb"`
}

// Sampler measures and records the local host's traffic counters.
type Sampler struct {
	db       db.Service
	registry *registry.Registry
	source   CounterSource
	host     netinfo.HostInfo
}

// NewSampler creates a Sampler for the local host.
func NewSampler(database db.Service, reg *registry.Registry, source CounterSource, host netinfo.HostInfo) *Sampler {
	return &Sampler{
		db:       database,
		registry: reg,
		source:   source,
		host:     host,
	}
}

// Sample reads the current cumulative counters, registers/refreshes the
// local device, and appends an immutable sample row.
func (s *Sampler) Sample() (*Reading, error) {
	ip, err := s.host.LocalIP()
	if err != nil {
		return nil, registry.ErrNoIdentity
	}

	deviceID, err := s.registry.Reconcile(&models.Observation{IP: ip})
	if err != nil {
		return nil, err
	}

	counters, err := Snapshot(s.source)
	if err != nil {
		return nil, err
	}

	now := models.Now()

	_, err = s.db.Exec(`
		INSERT INTO trafego (dispositivo_id, download_mb, upload_mb, timestamp)
		VALUES (?, ?, ?, ?)
	`, deviceID, counters.DownloadMB, counters.UploadMB, now)
	if err != nil {
		return nil, fmt.Errorf("%w traffic sample: %w", db.ErrFailedToInsert, err)
	}

	reading := &Reading{
		Timestamp:  now,
		DeviceIP:   ip,
		DownloadMB: counters.DownloadMB,
		UploadMB:   counters.UploadMB,
		TotalMB:    models.RoundMB(counters.DownloadMB + counters.UploadMB),
	}

	log.Printf("traffic: %s - IP: %s | download: %.2f MB | upload: %.2f MB | total: %.2f MB",
		now.Format(models.TimeLayout), ip, reading.DownloadMB, reading.UploadMB, reading.TotalMB)

	return reading, nil
}

// History returns every stored sample for the local device, newest first.
// A host that never sampled has no device row; that is an empty history,
// not an error.
func (s *Sampler) History() ([]models.TrafficSample, error) {
	device, err := s.localDevice()
	if err != nil {
		if errors.Is(err, registry.ErrDeviceNotFound) {
			return []models.TrafficSample{}, nil
		}

		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT id, dispositivo_id, download_mb, upload_mb, timestamp
		FROM trafego
		WHERE dispositivo_id = ?
		ORDER BY timestamp DESC, id DESC
	`, device.ID)
	if err != nil {
		return nil, fmt.Errorf("%w traffic history: %w", db.ErrFailedToQuery, err)
	}
	defer db.CloseRows(rows)

	var samples []models.TrafficSample

	for rows.Next() {
		var sample models.TrafficSample
		if err := rows.Scan(&sample.ID, &sample.DeviceID, &sample.DownloadMB,
			&sample.UploadMB, &sample.Timestamp); err != nil {
			return nil, fmt.Errorf("%w traffic row: %w", db.ErrFailedToScan, err)
		}

		samples = append(samples, sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w traffic history: %w", db.ErrFailedToQuery, err)
	}

	return samples, nil
}

// Purge deletes the local device's entire traffic history.
func (s *Sampler) Purge() error {
	device, err := s.localDevice()
	if err != nil {
		return err
	}

	if _, err := s.db.Exec("DELETE FROM trafego WHERE dispositivo_id = ?", device.ID); err != nil {
		return fmt.Errorf("%w traffic history: %w", db.ErrFailedToDelete, err)
	}

	return nil
}

func (s *Sampler) localDevice() (*models.Device, error) {
	ip, err := s.host.LocalIP()
	if err != nil {
		return nil, registry.ErrNoIdentity
	}

	return s.registry.GetByIP(ip)
}
