package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/models"
)

func newTestRegistry(t *testing.T) (*Registry, db.Service) {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "lanwatch.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})

	return New(database, DefaultStaleAfter), database
}

func TestReconcileCreatesDevice(t *testing.T) {
	reg, _ := newTestRegistry(t)

	id, err := reg.Reconcile(&models.Observation{
		IP:           "192.168.1.20",
		MAC:          "AA:BB:CC:00:11:22",
		Hostname:     "printer",
		Manufacturer: "Hewlett Packard",
		Class:        "Printer",
	})
	require.NoError(t, err)
	assert.NotZero(t, id)

	device, err := reg.GetByIP("192.168.1.20")
	require.NoError(t, err)
	assert.Equal(t, "AA:BB:CC:00:11:22", device.MAC)
	assert.Equal(t, "printer", device.Hostname)
	assert.True(t, device.Online)
}

func TestReconcileIsIdempotentByMAC(t *testing.T) {
	reg, _ := newTestRegistry(t)

	obs := &models.Observation{IP: "192.168.1.20", MAC: "AA:BB:CC:00:11:22"}

	first, err := reg.Reconcile(obs)
	require.NoError(t, err)

	second, err := reg.Reconcile(obs)
	require.NoError(t, err)

	assert.Equal(t, first, second)

	devices, err := reg.ListAll()
	require.NoError(t, err)
	assert.Len(t, devices, 1)
}

func TestReconcileMACIdentitySurvivesIPChange(t *testing.T) {
	reg, _ := newTestRegistry(t)

	first, err := reg.Reconcile(&models.Observation{IP: "192.168.1.20", MAC: "AA:BB:CC:00:11:22"})
	require.NoError(t, err)

	// Same device came back from DHCP with a new lease.
	second, err := reg.Reconcile(&models.Observation{IP: "192.168.1.77", MAC: "AA:BB:CC:00:11:22"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	device, err := reg.GetByIP("192.168.1.77")
	require.NoError(t, err)
	assert.Equal(t, first, device.ID)

	_, err = reg.GetByIP("192.168.1.20")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestReconcileFillsMissingMAC(t *testing.T) {
	reg, _ := newTestRegistry(t)

	first, err := reg.Reconcile(&models.Observation{IP: "192.168.1.30"})
	require.NoError(t, err)

	device, err := reg.GetByIP("192.168.1.30")
	require.NoError(t, err)
	assert.Equal(t, models.Unknown, device.MAC)

	// A later scan of the same IP learned the MAC.
	second, err := reg.Reconcile(&models.Observation{IP: "192.168.1.30", MAC: "DD:EE:FF:00:11:22"})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	device, err = reg.GetByIP("192.168.1.30")
	require.NoError(t, err)
	assert.Equal(t, "DD:EE:FF:00:11:22", device.MAC)
}

func TestReconcileAdoptionRequiresMatchingIP(t *testing.T) {
	reg, _ := newTestRegistry(t)

	// MAC-less row at one address must not absorb a new MAC seen elsewhere.
	_, err := reg.Reconcile(&models.Observation{IP: "192.168.1.30"})
	require.NoError(t, err)

	_, err = reg.Reconcile(&models.Observation{IP: "192.168.1.31", MAC: "DD:EE:FF:00:11:33"})
	require.NoError(t, err)

	devices, err := reg.ListAll()
	require.NoError(t, err)
	assert.Len(t, devices, 2)

	device, err := reg.GetByIP("192.168.1.30")
	require.NoError(t, err)
	assert.Equal(t, models.Unknown, device.MAC)
}

func TestReconcileKeepsKnownFieldsWhenObservationIsSparse(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Reconcile(&models.Observation{
		IP:           "192.168.1.40",
		MAC:          "AA:BB:CC:DD:EE:FF",
		Hostname:     "nas",
		Manufacturer: "Synology",
		Class:        "Storage",
	})
	require.NoError(t, err)

	_, err = reg.Reconcile(&models.Observation{IP: "192.168.1.40", MAC: "AA:BB:CC:DD:EE:FF"})
	require.NoError(t, err)

	device, err := reg.GetByIP("192.168.1.40")
	require.NoError(t, err)
	assert.Equal(t, "nas", device.Hostname)
	assert.Equal(t, "Synology", device.Manufacturer)
	assert.Equal(t, "Storage", device.Class)
}

func TestReconcileRequiresIdentity(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Reconcile(&models.Observation{Hostname: "ghost"})
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestApplyScanFlipsUnseenDevicesOffline(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.ApplyScan([]models.Observation{
		{IP: "192.168.1.10", MAC: "AA:AA:AA:00:00:01"},
		{IP: "192.168.1.11", MAC: "AA:AA:AA:00:00:02"},
		{IP: "192.168.1.12"},
	})
	require.NoError(t, err)

	// Second sweep only sees the first device.
	devices, err := reg.ApplyScan([]models.Observation{
		{IP: "192.168.1.10", MAC: "AA:AA:AA:00:00:01"},
	})
	require.NoError(t, err)
	require.Len(t, devices, 1)

	all, err := reg.ListAll()
	require.NoError(t, err)
	require.Len(t, all, 3)

	online := map[string]bool{}
	for _, d := range all {
		online[d.IP] = d.Online
	}

	assert.True(t, online["192.168.1.10"])
	assert.False(t, online["192.168.1.11"])
	// MAC-less rows are exempt from the offline sweep.
	assert.True(t, online["192.168.1.12"])
}

func TestApplyScanWithOnlyMACLessHostsStillSweeps(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.ApplyScan([]models.Observation{
		{IP: "192.168.1.10", MAC: "AA:AA:AA:00:00:01"},
	})
	require.NoError(t, err)

	// Next sweep sees one host and cannot read its MAC.
	_, err = reg.ApplyScan([]models.Observation{
		{IP: "192.168.1.13"},
	})
	require.NoError(t, err)

	device, err := reg.GetByIP("192.168.1.10")
	require.NoError(t, err)
	assert.False(t, device.Online)
}

func TestListSubnetStalenessSweep(t *testing.T) {
	reg, database := newTestRegistry(t)

	fresh, err := reg.Reconcile(&models.Observation{IP: "192.168.1.50", MAC: "AA:AA:AA:00:00:10"})
	require.NoError(t, err)

	stale, err := reg.Reconcile(&models.Observation{IP: "192.168.1.51", MAC: "AA:AA:AA:00:00:11"})
	require.NoError(t, err)

	// Backdate the second device past the staleness threshold.
	staleSeen := models.At(time.Now().Add(-DefaultStaleAfter - time.Minute))
	_, err = database.Exec(
		"UPDATE dispositivos SET ultima_verificacao = ? WHERE id = ?", staleSeen, stale)
	require.NoError(t, err)

	devices, err := reg.ListSubnet("192.168.1")
	require.NoError(t, err)
	require.Len(t, devices, 2)

	online := map[int64]bool{}
	for _, d := range devices {
		online[d.ID] = d.Online
	}

	assert.True(t, online[fresh])
	assert.False(t, online[stale])

	// The flip is persisted, not just reported.
	row := database.QueryRow("SELECT online FROM dispositivos WHERE id = ?", stale)

	var persisted bool
	require.NoError(t, row.Scan(&persisted))
	assert.False(t, persisted)
}

func TestListSubnetKeepsRecentDevicesOnline(t *testing.T) {
	reg, database := newTestRegistry(t)

	id, err := reg.Reconcile(&models.Observation{IP: "192.168.1.60", MAC: "AA:AA:AA:00:00:20"})
	require.NoError(t, err)

	// Just inside the threshold.
	recent := models.At(time.Now().Add(-DefaultStaleAfter + time.Minute))
	_, err = database.Exec(
		"UPDATE dispositivos SET ultima_verificacao = ? WHERE id = ?", recent, id)
	require.NoError(t, err)

	devices, err := reg.ListSubnet("192.168.1")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.True(t, devices[0].Online)
}

func TestListSubnetFiltersByPrefix(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := reg.Reconcile(&models.Observation{IP: "192.168.1.70", MAC: "AA:AA:AA:00:00:30"})
	require.NoError(t, err)

	_, err = reg.Reconcile(&models.Observation{IP: "10.0.0.5", MAC: "AA:AA:AA:00:00:31"})
	require.NoError(t, err)

	devices, err := reg.ListSubnet("192.168.1")
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "192.168.1.70", devices[0].IP)
}

func TestPurgeSubnetCascades(t *testing.T) {
	reg, database := newTestRegistry(t)

	id, err := reg.Reconcile(&models.Observation{IP: "192.168.1.80", MAC: "AA:AA:AA:00:00:40"})
	require.NoError(t, err)

	_, err = database.Exec(`
		INSERT INTO trafego (dispositivo_id, download_mb, upload_mb) VALUES (?, 10, 5)
	`, id)
	require.NoError(t, err)

	require.NoError(t, reg.PurgeSubnet("192.168.1"))

	devices, err := reg.ListAll()
	require.NoError(t, err)
	assert.Empty(t, devices)

	row := database.QueryRow("SELECT COUNT(*) FROM trafego")

	var count int
	require.NoError(t, row.Scan(&count))
	assert.Zero(t, count)
}
