// Package errors pkg/registry/errors.go provides errors for the registry package.

package registry

import "errors"

var (
	// ErrNoIdentity means an observation carried neither a usable MAC nor
	// an IP, so no device row can be attributed to it.
	ErrNoIdentity = errors.New("cannot determine device network identity")

	// ErrDeviceNotFound means a lookup by identity matched no device row.
	ErrDeviceNotFound = errors.New("device not found")

	errScanFailed = errors.New("network scan failed")
)
