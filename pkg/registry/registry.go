// Package registry pkg/registry/registry.go implements device identity
// reconciliation: observations from scans and local registration paths are
// merged into canonical device rows keyed primarily by MAC address, with IP
// as the fallback key for MAC-less devices.
package registry

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/models"
)

// DefaultStaleAfter is how long a device may go unseen before a listing
// flips it offline.
const DefaultStaleAfter = 300 * time.Second

const selectDeviceSQL = `
	SELECT id, ip, mac, hostname, fabricante, tipo, ultima_verificacao, online
	FROM dispositivos
`

// Registry reconciles device observations into canonical rows.
//
// Identity is two-tier: rows with a known MAC are unique per MAC; rows
// without one are keyed by IP. The IP tier is a weaker guarantee — two
// MAC-less devices that reuse a DHCP lease before the staleness sweep runs
// will collide into one row. That risk is documented rather than papered
// over with merge heuristics.
type Registry struct {
	db         db.Service
	staleAfter time.Duration
}

// New creates a Registry on the given storage engine.
func New(database db.Service, staleAfter time.Duration) *Registry {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}

	return &Registry{
		db:         database,
		staleAfter: staleAfter,
	}
}

// Reconcile finds or creates the canonical device row for an observation
// and returns its ID. The find-or-create runs in one transaction so
// concurrent first observations of the same device cannot fork duplicates.
func (r *Registry) Reconcile(obs *models.Observation) (deviceID int64, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, err
	}
	defer func() {
		db.RollbackOnError(tx, err)
	}()

	deviceID, err = r.reconcileTx(tx, obs, models.Now())
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", db.ErrFailedToUpdate, err)
	}

	return deviceID, nil
}

// reconcileTx is the shared reconciliation step: lookup by MAC when known,
// by IP otherwise; merge changed fields; insert when absent. Liveness is
// always refreshed.
func (r *Registry) reconcileTx(tx db.Transaction, obs *models.Observation, now models.Timestamp) (int64, error) {
	if !obs.HasMAC() && obs.IP == "" {
		return 0, ErrNoIdentity
	}

	existing, err := findTx(tx, obs)
	if err != nil && !errors.Is(err, ErrDeviceNotFound) {
		return 0, err
	}

	if existing == nil {
		return insertTx(tx, obs, now)
	}

	return existing.ID, updateTx(tx, existing, obs, now)
}

// findTx resolves an observation to its existing row. A known MAC is the
// primary key; on a MAC miss the IP tier catches MAC-less rows created by
// the local registration paths, so learning a device's MAC adopts it onto
// the row instead of forking a duplicate.
func findTx(tx db.Transaction, obs *models.Observation) (*models.Device, error) {
	if obs.HasMAC() {
		device, err := findOneTx(tx, selectDeviceSQL+"WHERE mac = ?", obs.MAC)
		if err == nil || !errors.Is(err, ErrDeviceNotFound) {
			return device, err
		}

		if obs.IP == "" {
			return nil, ErrDeviceNotFound
		}

		return findOneTx(tx,
			selectDeviceSQL+"WHERE ip = ? AND mac = 'Unknown' ORDER BY id LIMIT 1", obs.IP)
	}

	return findOneTx(tx, selectDeviceSQL+"WHERE ip = ? ORDER BY id LIMIT 1", obs.IP)
}

func findOneTx(tx db.Transaction, query string, args ...interface{}) (*models.Device, error) {
	device, err := scanDevice(tx.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", db.ErrFailedToQuery, err)
	}

	return device, nil
}

func insertTx(tx db.Transaction, obs *models.Observation, now models.Timestamp) (int64, error) {
	result, err := tx.Exec(`
		INSERT INTO dispositivos (ip, mac, hostname, fabricante, tipo, ultima_verificacao, online)
		VALUES (?, ?, ?, ?, ?, ?, 1)
	`,
		obs.IP,
		orUnknown(obs.MAC),
		orUnknown(obs.Hostname),
		orUnknown(obs.Manufacturer),
		orUnknown(obs.Class),
		now)
	if err != nil {
		return 0, fmt.Errorf("%w device: %w", db.ErrFailedToInsert, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w device id: %w", db.ErrFailedToInsert, err)
	}

	return id, nil
}

func updateTx(tx db.Transaction, existing *models.Device, obs *models.Observation, now models.Timestamp) error {
	merged := *existing
	if obs.IP != "" {
		merged.IP = obs.IP
	}

	if obs.HasMAC() {
		merged.MAC = obs.MAC
	}

	if obs.Hostname != "" {
		merged.Hostname = obs.Hostname
	}

	if obs.Manufacturer != "" {
		merged.Manufacturer = obs.Manufacturer
	}

	if obs.Class != "" {
		merged.Class = obs.Class
	}

	var err error

	if merged.IP != existing.IP || merged.MAC != existing.MAC ||
		merged.Hostname != existing.Hostname ||
		merged.Manufacturer != existing.Manufacturer ||
		merged.Class != existing.Class {
		_, err = tx.Exec(`
			UPDATE dispositivos
			SET ip = ?, mac = ?, hostname = ?, fabricante = ?, tipo = ?,
			    ultima_verificacao = ?, online = 1
			WHERE id = ?
		`, merged.IP, merged.MAC, merged.Hostname, merged.Manufacturer, merged.Class,
			now, existing.ID)
	} else {
		// Nothing changed; refresh liveness only.
		_, err = tx.Exec(`
			UPDATE dispositivos SET ultima_verificacao = ?, online = 1 WHERE id = ?
		`, now, existing.ID)
	}

	if err != nil {
		return fmt.Errorf("%w device: %w", db.ErrFailedToUpdate, err)
	}

	return nil
}

// ApplyScan reconciles a full network scan in one transaction: every
// observed host is upserted, then devices still marked online whose MAC
// was not seen are flipped offline. MAC-less rows are exempt from the
// sweep — absence of an unknowable MAC proves nothing.
func (r *Registry) ApplyScan(observations []models.Observation) (devices []models.Device, err error) {
	now := models.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return nil, err
	}
	defer func() {
		db.RollbackOnError(tx, err)
	}()

	seenMACs := make([]string, 0, len(observations))

	for i := range observations {
		obs := &observations[i]

		id, rerr := r.reconcileTx(tx, obs, now)
		if rerr != nil {
			err = rerr
			return nil, err
		}

		if obs.HasMAC() {
			seenMACs = append(seenMACs, obs.MAC)
		}

		devices = append(devices, models.Device{
			ID:           id,
			IP:           obs.IP,
			MAC:          orUnknown(obs.MAC),
			Hostname:     orUnknown(obs.Hostname),
			Manufacturer: orUnknown(obs.Manufacturer),
			Class:        orUnknown(obs.Class),
			LastSeen:     now,
			Online:       true,
		})
	}

	if err = markMissingOffline(tx, seenMACs); err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %w", db.ErrFailedToUpdate, err)
	}

	return devices, nil
}

func markMissingOffline(tx db.Transaction, seenMACs []string) error {
	// A sweep that saw no MACs still proves every known-MAC device absent.
	condition := "1 = 1"
	args := make([]interface{}, 0, len(seenMACs))

	if len(seenMACs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(seenMACs)), ",")
		condition = fmt.Sprintf("mac NOT IN (%s)", placeholders)

		for _, mac := range seenMACs {
			args = append(args, mac)
		}
	}

	_, err := tx.Exec(fmt.Sprintf(`
		UPDATE dispositivos
		SET online = 0
		WHERE online = 1 AND mac <> 'Unknown' AND %s
	`, condition), args...)
	if err != nil {
		return fmt.Errorf("%w offline sweep: %w", db.ErrFailedToUpdate, err)
	}

	return nil
}

// ListSubnet returns every device whose IP falls in the /24 identified by
// prefix (e.g. "192.168.1"). Listing doubles as the staleness sweep: any
// device still marked online but unseen for longer than the staleness
// threshold is flipped offline and the flip is persisted before returning.
func (r *Registry) ListSubnet(prefix string) ([]models.Device, error) {
	rows, err := r.db.Query(selectDeviceSQL+"WHERE ip LIKE ?", prefix+".%")
	if err != nil {
		return nil, fmt.Errorf("%w devices: %w", db.ErrFailedToQuery, err)
	}
	defer db.CloseRows(rows)

	now := time.Now().UTC()

	var (
		devices  []models.Device
		staleIDs []interface{}
	)

	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("%w device row: %w", db.ErrFailedToScan, err)
		}

		if device.Online && now.Sub(device.LastSeen.Time) > r.staleAfter {
			device.Online = false

			staleIDs = append(staleIDs, device.ID)
		}

		devices = append(devices, *device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w devices: %w", db.ErrFailedToQuery, err)
	}

	if len(staleIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(staleIDs)), ",")

		_, err := r.db.Exec(fmt.Sprintf(
			"UPDATE dispositivos SET online = 0 WHERE id IN (%s)", placeholders), staleIDs...)
		if err != nil {
			return nil, fmt.Errorf("%w staleness sweep: %w", db.ErrFailedToUpdate, err)
		}
	}

	return devices, nil
}

// ListAll returns every persisted device, most recently verified first.
func (r *Registry) ListAll() ([]models.Device, error) {
	rows, err := r.db.Query(selectDeviceSQL + "ORDER BY ultima_verificacao DESC")
	if err != nil {
		return nil, fmt.Errorf("%w devices: %w", db.ErrFailedToQuery, err)
	}
	defer db.CloseRows(rows)

	var devices []models.Device

	for rows.Next() {
		device, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("%w device row: %w", db.ErrFailedToScan, err)
		}

		devices = append(devices, *device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w devices: %w", db.ErrFailedToQuery, err)
	}

	return devices, nil
}

// GetByIP resolves a device by its IP address without creating one.
func (r *Registry) GetByIP(ip string) (*models.Device, error) {
	row := r.db.QueryRow(selectDeviceSQL+"WHERE ip = ? ORDER BY id LIMIT 1", ip)

	device, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("%w device: %w", db.ErrFailedToQuery, err)
	}

	return device, nil
}

// PurgeSubnet deletes every device row in the /24 identified by prefix.
// Dependent samples, sessions, and measurements go with them.
func (r *Registry) PurgeSubnet(prefix string) error {
	_, err := r.db.Exec("DELETE FROM dispositivos WHERE ip LIKE ?", prefix+".%")
	if err != nil {
		return fmt.Errorf("%w devices: %w", db.ErrFailedToDelete, err)
	}

	return nil
}

// scanDevice reads one device row from either a Row or Rows cursor.
func scanDevice(row db.Row) (*models.Device, error) {
	var device models.Device

	err := row.Scan(
		&device.ID,
		&device.IP,
		&device.MAC,
		&device.Hostname,
		&device.Manufacturer,
		&device.Class,
		&device.LastSeen,
		&device.Online,
	)
	if err != nil {
		return nil, err
	}

	return &device, nil
}

func orUnknown(s string) string {
	if s == "" {
		return models.Unknown
	}

	return s
}
