package speed

import "errors"

var (
	// ErrMeasurement wraps any failure while running a speed test.
	ErrMeasurement = errors.New("speed test failed")

	errNoServers = errors.New("no speed test servers available")
)
