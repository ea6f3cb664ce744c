package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/lanwatch/pkg/db"
	"github.com/carverauto/lanwatch/pkg/models"
	"github.com/carverauto/lanwatch/pkg/netinfo"
	"github.com/carverauto/lanwatch/pkg/registry"
	"github.com/carverauto/lanwatch/pkg/scan"
	"github.com/carverauto/lanwatch/pkg/sessions"
	"github.com/carverauto/lanwatch/pkg/speed"
	"github.com/carverauto/lanwatch/pkg/traffic"
)

const (
	testIP  = "192.168.1.10"
	testMAC = "AA:BB:CC:00:11:22"
	mb      = 1024 * 1024
)

// nullClassifier never knows the vendor; classification has its own tests.
type nullClassifier struct{}

func (nullClassifier) Classify(_ context.Context, _ string) (string, string) {
	return models.Unknown, models.Unknown
}

type apiFixture struct {
	server  *httptest.Server
	scanner *scan.MockScanner
	source  *traffic.MockCounterSource
	runner  *speed.MockRunner
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "lanwatch.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	host := netinfo.NewMockHostInfo(ctrl)
	host.EXPECT().LocalIP().Return(testIP, nil).AnyTimes()
	host.EXPECT().LocalMAC(gomock.Any()).Return(testMAC).AnyTimes()
	host.EXPECT().Hostname(gomock.Any()).Return("workstation").AnyTimes()

	scanner := scan.NewMockScanner(ctrl)
	source := traffic.NewMockCounterSource(ctrl)
	runner := speed.NewMockRunner(ctrl)

	reg := registry.New(database, registry.DefaultStaleAfter)

	server := NewServer(
		host,
		reg,
		registry.NewNetworkScan(reg, scanner, nullClassifier{}, host),
		traffic.NewSampler(database, reg, source, host),
		sessions.NewAccountant(database, reg, source, host),
		speed.NewRecorder(database, reg, runner, host),
	)

	ts := httptest.NewServer(server.Router())
	t.Cleanup(ts.Close)

	return &apiFixture{
		server:  ts,
		scanner: scanner,
		source:  source,
		runner:  runner,
	}
}

func (f *apiFixture) do(t *testing.T, method, path string) (int, map[string]json.RawMessage) {
	t.Helper()

	req, err := http.NewRequest(method, f.server.URL+path, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, resp.Body.Close())
	}()

	var body map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	return resp.StatusCode, body
}

func TestPing(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(t, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"ok"`, string(body["status"]))
}

func TestLocalMachine(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(t, http.MethodGet, "/maquina")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"`+testIP+`"`, string(body["ip"]))
	assert.JSONEq(t, `"`+testMAC+`"`, string(body["mac"]))
}

func TestScanEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	f.scanner.EXPECT().Scan(gomock.Any(), "192.168.1.0/24").Return([]models.ScanResult{
		{IP: testIP},
		{IP: "192.168.1.20", MAC: "B0:7B:25:11:22:33", Hostname: "desktop"},
	}, nil)

	status, body := f.do(t, http.MethodGet, "/devices")
	assert.Equal(t, http.StatusOK, status)

	var devices []models.Device
	require.NoError(t, json.Unmarshal(body["dispositivos"], &devices))
	require.Len(t, devices, 2)
	assert.Equal(t, testMAC, devices[0].MAC)

	// The scan persisted; /devices/db now returns the same hosts.
	status, body = f.do(t, http.MethodGet, "/devices/db")
	assert.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body["dispositivos"], &devices))
	assert.Len(t, devices, 2)
}

func TestScanFailure(t *testing.T) {
	f := newAPIFixture(t)

	f.scanner.EXPECT().Scan(gomock.Any(), gomock.Any()).Return(nil, assert.AnError)

	status, body := f.do(t, http.MethodGet, "/devices")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Contains(t, string(body["erro"]), "scan")
}

func TestSubnetListing(t *testing.T) {
	f := newAPIFixture(t)

	f.scanner.EXPECT().Scan(gomock.Any(), gomock.Any()).Return([]models.ScanResult{
		{IP: "192.168.1.20", MAC: "B0:7B:25:11:22:33"},
	}, nil)

	_, _ = f.do(t, http.MethodGet, "/devices")

	status, body := f.do(t, http.MethodGet, "/dispositivos/rede")
	assert.Equal(t, http.StatusOK, status)

	var devices []models.Device
	require.NoError(t, json.Unmarshal(body["dispositivos"], &devices))
	assert.Len(t, devices, 1)
}

func TestTrafficSampleAndHistory(t *testing.T) {
	f := newAPIFixture(t)

	f.source.EXPECT().Counters().Return(uint64(100*mb), uint64(20*mb), nil)

	status, body := f.do(t, http.MethodGet, "/trafego")
	assert.Equal(t, http.StatusOK, status)

	var reading traffic.Reading
	require.NoError(t, json.Unmarshal(body["trafego"], &reading))
	assert.InDelta(t, 100.0, reading.DownloadMB, 0.001)
	assert.InDelta(t, 120.0, reading.TotalMB, 0.001)

	status, body = f.do(t, http.MethodGet, "/trafego/historico")
	assert.Equal(t, http.StatusOK, status)

	var history []models.TrafficSample
	require.NoError(t, json.Unmarshal(body["historico"], &history))
	assert.Len(t, history, 1)
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	f.source.EXPECT().Counters().Return(uint64(100*mb), uint64(20*mb), nil)

	status, body := f.do(t, http.MethodPost, "/trafego/sessao/iniciar")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"session started"`, string(body["status"]))

	// A second start while one is open is a client error.
	f.source.EXPECT().Counters().Return(uint64(101*mb), uint64(21*mb), nil)

	status, body = f.do(t, http.MethodPost, "/trafego/sessao/iniciar")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["erro"])

	f.source.EXPECT().Counters().Return(uint64(150.5*mb), uint64(35.25*mb), nil)

	status, body = f.do(t, http.MethodPost, "/trafego/sessao/finalizar")
	assert.Equal(t, http.StatusOK, status)

	var usedDown float64
	require.NoError(t, json.Unmarshal(body["download_usado_mb"], &usedDown))
	assert.InDelta(t, 50.5, usedDown, 0.001)

	status, body = f.do(t, http.MethodGet, "/trafego/sessoes")
	assert.Equal(t, http.StatusOK, status)

	var list []models.SessionUsage
	require.NoError(t, json.Unmarshal(body["sessoes"], &list))
	assert.Len(t, list, 1)
}

func TestSessionStopWithoutStart(t *testing.T) {
	f := newAPIFixture(t)

	f.source.EXPECT().Counters().Return(uint64(10*mb), uint64(5*mb), nil)

	status, body := f.do(t, http.MethodPost, "/trafego/sessao/finalizar")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["erro"])
}

func TestLocalSessionsUnregisteredDevice(t *testing.T) {
	f := newAPIFixture(t)

	status, body := f.do(t, http.MethodGet, "/trafego/sessoes/dispositivo")
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["erro"])
}

func TestSpeedtestEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	f.runner.EXPECT().Measure(gomock.Any()).Return(&speed.Measurement{
		PingMS:       12.3,
		DownloadMbps: 93.7,
		UploadMbps:   41.2,
	}, nil)

	status, body := f.do(t, http.MethodGet, "/speedtest")
	assert.Equal(t, http.StatusOK, status)

	var result models.SpeedResult
	require.NoError(t, json.Unmarshal(body["velocidade"], &result))
	assert.InDelta(t, 93.7, result.DownloadMbps, 0.001)

	status, body = f.do(t, http.MethodGet, "/speedtest/historico")
	assert.Equal(t, http.StatusOK, status)

	var history []models.SpeedResult
	require.NoError(t, json.Unmarshal(body["historico"], &history))
	assert.Len(t, history, 1)
}

func TestSpeedtestFailure(t *testing.T) {
	f := newAPIFixture(t)

	f.runner.EXPECT().Measure(gomock.Any()).Return(nil, assert.AnError)

	status, body := f.do(t, http.MethodGet, "/speedtest")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotEmpty(t, body["erro"])
}

func TestDeleteEndpoints(t *testing.T) {
	f := newAPIFixture(t)

	f.source.EXPECT().Counters().Return(uint64(10*mb), uint64(5*mb), nil)

	_, _ = f.do(t, http.MethodGet, "/trafego")

	status, body := f.do(t, http.MethodDelete, "/deletar/trafego")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["mensagem"])

	status, _ = f.do(t, http.MethodGet, "/trafego/historico")
	assert.Equal(t, http.StatusOK, status)

	status, body = f.do(t, http.MethodDelete, "/deletar/dispositivos")
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["mensagem"])

	var devices []models.Device

	status, body = f.do(t, http.MethodGet, "/devices/db")
	assert.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(body["dispositivos"], &devices))
	assert.Empty(t, devices)
}
