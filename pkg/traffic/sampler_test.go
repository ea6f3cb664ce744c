package traffic

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/netinfo"
	"github.com/carverauto/lanwatch/pkg/registry"
)

const (
	samplerTestIP = "192.168.1.10"
	mb            = 1024 * 1024
)

type samplerFixture struct {
	sampler *Sampler
	source  *MockCounterSource
}

func newSamplerFixture(t *testing.T) *samplerFixture {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "lanwatch.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	host := netinfo.NewMockHostInfo(ctrl)
	host.EXPECT().LocalIP().Return(samplerTestIP, nil).AnyTimes()

	source := NewMockCounterSource(ctrl)
	reg := registry.New(database, registry.DefaultStaleAfter)

	return &samplerFixture{
		sampler: NewSampler(database, reg, source, host),
		source:  source,
	}
}

func TestSampleRegistersDeviceAndRounds(t *testing.T) {
	f := newSamplerFixture(t)

	// 100.46... MB down, 20.12... MB up in bytes.
	f.source.EXPECT().Counters().Return(uint64(105340000), uint64(21097350), nil)

	reading, err := f.sampler.Sample()
	require.NoError(t, err)

	assert.Equal(t, samplerTestIP, reading.DeviceIP)
	assert.InDelta(t, 100.46, reading.DownloadMB, 0.001)
	assert.InDelta(t, 20.12, reading.UploadMB, 0.001)
	assert.InDelta(t, 120.58, reading.TotalMB, 0.001)

	history, err := f.sampler.History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.InDelta(t, 100.46, history[0].DownloadMB, 0.001)
}

func TestHistoryEmptyForUnregisteredHost(t *testing.T) {
	f := newSamplerFixture(t)

	history, err := f.sampler.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newSamplerFixture(t)

	f.source.EXPECT().Counters().Return(uint64(10*mb), uint64(5*mb), nil)
	_, err := f.sampler.Sample()
	require.NoError(t, err)

	f.source.EXPECT().Counters().Return(uint64(20*mb), uint64(8*mb), nil)
	_, err = f.sampler.Sample()
	require.NoError(t, err)

	history, err := f.sampler.History()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.GreaterOrEqual(t, history[0].ID, history[1].ID)
	assert.InDelta(t, 20.0, history[0].DownloadMB, 0.001)
}

func TestPurgeClearsHistory(t *testing.T) {
	f := newSamplerFixture(t)

	f.source.EXPECT().Counters().Return(uint64(10*mb), uint64(5*mb), nil)
	_, err := f.sampler.Sample()
	require.NoError(t, err)

	require.NoError(t, f.sampler.Purge())

	history, err := f.sampler.History()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPurgeUnregisteredHost(t *testing.T) {
	f := newSamplerFixture(t)

	err := f.sampler.Purge()
	assert.ErrorIs(t, err, registry.ErrDeviceNotFound)
}
