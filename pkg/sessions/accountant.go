// Package sessions pkg/sessions/accountant.go implements the usage session
// state machine: per device either no session is open or exactly one is.
// Usage is the delta between the counter snapshots taken at start and
// stop, clamped so an interface counter reset never yields negative usage.
package sessions

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/netinfo"
	"github.com/carverauto/lanwatch/pkg/registry"
	"github.com/carverauto/lanwatch/pkg/traffic"
)

// StartReceipt confirms a session was opened and echoes its baseline.
type StartReceipt struct {
	DeviceID   int64            `json:"dispositivo_id"`
	Start      models.Timestamp `json:"inicio"`
	DownloadMB float64          `json:"download_inicial"`
	UploadMB   float64          `json:"upload_inicial"`
}

// StopReceipt confirms a session was closed and reports its usage.
type StopReceipt struct {
	DeviceID       int64            `json:"dispositivo_id"`
	Start          models.Timestamp `json:"inicio"`
	End            models.Timestamp `json:"fim"`
	DownloadUsedMB float64          `json:"download_usado_mb"`
	UploadUsedMB   float64          `json:"upload_usado_mb"`
	TotalUsedMB    float64          `json:"total_usado_mb"`
}

// Accountant opens and closes usage sessions for the local device.
type Accountant struct {
	db       db.Service
	registry *registry.Registry
	source   traffic.CounterSource
	host     netinfo.HostInfo
}

// NewAccountant creates a session Accountant for the local host.
func NewAccountant(database db.Service, reg *registry.Registry, source traffic.CounterSource, host netinfo.HostInfo) *Accountant {
	return &Accountant{
		db:       database,
		registry: reg,
		source:   source,
		host:     host,
	}
}

// Start opens a session for the local device, capturing the current
// counters as its baseline. At most one session may be open per device;
// the check and insert share a transaction, and the engine's uniqueness
// constraint breaks the tie if two starts race past the check.
func (a *Accountant) Start() (receipt *StartReceipt, err error) {
	deviceID, err := a.resolveLocalDevice()
	if err != nil {
		return nil, err
	}

	counters, err := a.currentCounters()
	if err != nil {
		return nil, err
	}

	now := models.Now()

	tx, err := a.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() {
		db.RollbackOnError(tx, err)
	}()

	var existing int64

	err = tx.QueryRow(
		"SELECT id FROM sessoes WHERE dispositivo_id = ? AND fim IS NULL", deviceID,
	).Scan(&existing)
	if err == nil {
		err = ErrSessionActive
		return nil, err
	}

	if !isNoRows(err) {
		err = fmt.Errorf("%w active session: %w", db.ErrFailedToQuery, err)
		return nil, err
	}

	_, err = tx.Exec(`
		INSERT INTO sessoes (dispositivo_id, inicio, download_inicial, upload_inicial)
		VALUES (?, ?, ?, ?)
	`, deviceID, now, counters.DownloadMB, counters.UploadMB)
	if err != nil {
		if isConstraint(err) {
			// Lost the race to a concurrent start.
			err = ErrSessionActive
			return nil, err
		}

		err = fmt.Errorf("%w session: %w", db.ErrFailedToInsert, err)

		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w session: %w", db.ErrFailedToInsert, err)
	}

	return &StartReceipt{
		DeviceID:   deviceID,
		Start:      now,
		DownloadMB: counters.DownloadMB,
		UploadMB:   counters.UploadMB,
	}, nil
}

// Stop closes the local device's open session, capturing the end counters
// and reporting clamped usage. The closing UPDATE is conditional on the
// row still being open, so concurrent stops close it exactly once.
func (a *Accountant) Stop() (receipt *StopReceipt, err error) {
	deviceID, err := a.resolveLocalDevice()
	if err != nil {
		return nil, err
	}

	endCounters, err := a.currentCounters()
	if err != nil {
		return nil, err
	}

	now := models.Now()

	tx, err := a.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() {
		db.RollbackOnError(tx, err)
	}()

	var (
		sessionID int64
		start     models.Timestamp
		baseline  models.Counters
	)

	err = tx.QueryRow(`
		SELECT id, inicio, download_inicial, upload_inicial
		FROM sessoes
		WHERE dispositivo_id = ? AND fim IS NULL
		ORDER BY id DESC LIMIT 1
	`, deviceID).Scan(&sessionID, &start, &baseline.DownloadMB, &baseline.UploadMB)
	if isNoRows(err) {
		err = ErrNoActiveSession
		return nil, err
	}

	if err != nil {
		err = fmt.Errorf("%w active session: %w", db.ErrFailedToQuery, err)
		return nil, err
	}

	result, err := tx.Exec(`
		UPDATE sessoes
		SET fim = ?, download_final = ?, upload_final = ?
		WHERE id = ? AND fim IS NULL
	`, now, endCounters.DownloadMB, endCounters.UploadMB, sessionID)
	if err != nil {
		err = fmt.Errorf("%w session: %w", db.ErrFailedToUpdate, err)
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		err = fmt.Errorf("%w session: %w", db.ErrFailedToUpdate, err)
		return nil, err
	}

	if affected == 0 {
		// Someone else closed it between the SELECT and the UPDATE.
		err = ErrNoActiveSession
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w session: %w", db.ErrFailedToUpdate, err)
	}

	downUsed, upUsed := models.UsageDelta(baseline, endCounters)

	return &StopReceipt{
		DeviceID:       deviceID,
		Start:          start,
		End:            now,
		DownloadUsedMB: downUsed,
		UploadUsedMB:   upUsed,
		TotalUsedMB:    models.RoundMB(downUsed + upUsed),
	}, nil
}

// List returns every closed session across all devices, newest first.
// Usage is recomputed from the stored snapshots at read time, applying
// the same clamp-at-reset rule the stop path uses.
func (a *Accountant) List() ([]models.SessionUsage, error) {
	return a.listClosed(`
		SELECT id, dispositivo_id, inicio, fim,
		       download_inicial, upload_inicial, download_final, upload_final
		FROM sessoes
		WHERE fim IS NOT NULL
		ORDER BY id DESC
	`)
}

// ListLocal returns the closed sessions of the local device, newest first.
func (a *Accountant) ListLocal() ([]models.SessionUsage, error) {
	device, err := a.localDevice()
	if err != nil {
		return nil, err
	}

	return a.listClosed(`
		SELECT id, dispositivo_id, inicio, fim,
		       download_inicial, upload_inicial, download_final, upload_final
		FROM sessoes
		WHERE dispositivo_id = ? AND fim IS NOT NULL
		ORDER BY inicio DESC
	`, device.ID)
}

// Purge deletes all sessions belonging to the local device.
func (a *Accountant) Purge() error {
	device, err := a.localDevice()
	if err != nil {
		return err
	}

	if _, err := a.db.Exec("DELETE FROM sessoes WHERE dispositivo_id = ?", device.ID); err != nil {
		return fmt.Errorf("%w sessions: %w", db.ErrFailedToDelete, err)
	}

	return nil
}

func (a *Accountant) listClosed(query string, args ...interface{}) ([]models.SessionUsage, error) {
	rows, err := a.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w sessions: %w", db.ErrFailedToQuery, err)
	}
	defer db.CloseRows(rows)

	var usages []models.SessionUsage

	for rows.Next() {
		var (
			usage models.SessionUsage
			start models.Counters
			end   models.Counters
		)

		if err := rows.Scan(&usage.ID, &usage.DeviceID, &usage.Start, &usage.End,
			&start.DownloadMB, &start.UploadMB, &end.DownloadMB, &end.UploadMB); err != nil {
			return nil, fmt.Errorf("%w session row: %w", db.ErrFailedToScan, err)
		}

		usage.DownloadUsedMB, usage.UploadUsedMB = models.UsageDelta(start, end)
		usage.TotalUsedMB = models.RoundMB(usage.DownloadUsedMB + usage.UploadUsedMB)

		usages = append(usages, usage)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w sessions: %w", db.ErrFailedToQuery, err)
	}

	return usages, nil
}

// resolveLocalDevice registers or refreshes the local device by IP and
// returns its ID. The session paths rarely see the host's MAC, so identity
// here rides the IP fallback tier.
func (a *Accountant) resolveLocalDevice() (int64, error) {
	ip, err := a.host.LocalIP()
	if err != nil {
		return 0, registry.ErrNoIdentity
	}

	return a.registry.Reconcile(&models.Observation{IP: ip})
}

func (a *Accountant) localDevice() (*models.Device, error) {
	ip, err := a.host.LocalIP()
	if err != nil {
		return nil, registry.ErrNoIdentity
	}

	return a.registry.GetByIP(ip)
}

func (a *Accountant) currentCounters() (models.Counters, error) {
	return traffic.Snapshot(a.source)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func isConstraint(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}

	return false
}
