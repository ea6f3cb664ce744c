package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

var (
	errNoListenAddr = errors.New("listen_addr is required")
	errNoDBPath     = errors.New("db_path is required")
)

// MonitorConfig represents the configuration for the monitoring service.
type MonitorConfig struct {
	ListenAddr    string   `json:"listen_addr"`    // e.g., :5000
	DBPath        string   `json:"db_path"`        // e.g., /var/lib/lanwatch/lanwatch.db
	StaleAfter    Duration `json:"stale_after"`    // liveness threshold, default 5m
	LookupTimeout Duration `json:"lookup_timeout"` // vendor lookup budget, default 5s
	ScanTimeout   Duration `json:"scan_timeout"`   // network sweep budget, default 2m
	ScanCron      string   `json:"scan_cron"`      // optional cron spec for background scans
	SampleCron    string   `json:"sample_cron"`    // optional cron spec for traffic samples
}

const (
	defaultStaleAfter    = 5 * time.Minute
	defaultLookupTimeout = 5 * time.Second
	defaultScanTimeout   = 2 * time.Minute
)

// Validate implements Validator, filling defaults for optional durations.
func (c *MonitorConfig) Validate() error {
	if c.ListenAddr == "" {
		return errNoListenAddr
	}

	if c.DBPath == "" {
		return errNoDBPath
	}

	if c.StaleAfter <= 0 {
		c.StaleAfter = Duration(defaultStaleAfter)
	}

	if c.LookupTimeout <= 0 {
		c.LookupTimeout = Duration(defaultLookupTimeout)
	}

	if c.ScanTimeout <= 0 {
		c.ScanTimeout = Duration(defaultScanTimeout)
	}

	return nil
}
