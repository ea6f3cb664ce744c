package models

import "math"

// Counters is a point-in-time snapshot of the host's cumulative NIC byte
// counters, converted to megabytes. Values grow monotonically until the
// underlying counters are reset (reboot, interface restart).
type Counters struct {
	DownloadMB float64 `json:"download_mb"`
	UploadMB   float64 `json:"upload_mb"`
}

// TrafficSample is an immutable reading of the cumulative counters for one
// device. No deltas are stored; usage is always derived from two samples.
type TrafficSample struct {
	ID         int64     `json:"id"`
	DeviceID   int64     `json:"dispositivo_id"`
	DownloadMB float64   `json:"download_mb"`
	UploadMB   float64   `json:"upload_mb"`
	Timestamp  Timestamp `json:"timestamp"`
}

// SpeedResult is an immutable internet speed measurement tied to a device.
type SpeedResult struct {
	ID           int64     `json:"id"`
	DeviceID     int64     `json:"dispositivo_id"`
	PingMS       float64   `json:"ping_ms"`
	DownloadMbps float64   `json:"download_mb"`
	UploadMbps   float64   `json:"upload_mb"`
	Timestamp    Timestamp `json:"timestamp"`
}

// Session is a bounded interval of traffic accounting for one device.
// End and EndCounters are nil while the session is open. A closed session
// is immutable.
type Session struct {
	ID            int64      `json:"id"`
	DeviceID      int64      `json:"dispositivo_id"`
	Start         Timestamp  `json:"inicio"`
	End           *Timestamp `json:"fim,omitempty"`
	StartCounters Counters   `json:"counters_iniciais"`
	EndCounters   *Counters  `json:"counters_finais,omitempty"`
}

// SessionUsage is the read-time view of a closed session with its usage
// recomputed from the stored counter snapshots.
type SessionUsage struct {
	ID             int64     `json:"id"`
	DeviceID       int64     `json:"dispositivo_id"`
	Start          Timestamp `json:"inicio"`
	End            Timestamp `json:"fim"`
	DownloadUsedMB float64   `json:"download_usado_mb"`
	UploadUsedMB   float64   `json:"upload_usado_mb"`
	TotalUsedMB    float64   `json:"total_usado_mb"`
}

// RoundMB rounds a megabyte value to two decimal places, the resolution
// used everywhere counters cross a wire or a table.
func RoundMB(v float64) float64 {
	return math.Round(v*100) / 100
}

// UsageDelta computes per-direction usage between two counter snapshots.
// A direction whose end value dropped below its start value went through a
// counter reset; its delta is clamped to the raw end value (the reset point
// becomes a zero baseline) so usage never goes negative.
func UsageDelta(start, end Counters) (downMB, upMB float64) {
	downMB = end.DownloadMB - start.DownloadMB
	if downMB < 0 {
		downMB = end.DownloadMB
	}

	upMB = end.UploadMB - start.UploadMB
	if upMB < 0 {
		upMB = end.UploadMB
	}

	return RoundMB(downMB), RoundMB(upMB)
}
