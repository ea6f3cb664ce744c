// Package mfr pkg/mfr/macvendors.go implements the remote vendor lookup
// against the macvendors.com API.
package mfr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.macvendors.com"

	// The free API tier throttles at roughly one request per second;
	// exceeding it returns 429s that would poison the unknown cache.
	lookupsPerSecond = 1
	lookupBurst      = 1

	maxVendorBytes = 512
)

var (
	errLookupStatus = errors.New("vendor lookup returned non-200 status")
	errEmptyVendor  = errors.New("vendor lookup returned empty body")
)

// MacVendorsClient resolves vendors via GET {baseURL}/{mac}. A 200 response
// body is the vendor name; anything else is a failure the Resolver will
// downgrade to Unknown.
type MacVendorsClient struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
}

// NewMacVendorsClient creates a rate-limited macvendors.com client.
func NewMacVendorsClient(timeout time.Duration) *MacVendorsClient {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}

	return &MacVendorsClient{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(lookupsPerSecond), lookupBurst),
		baseURL: defaultBaseURL,
	}
}

// Vendor implements Lookup.
func (c *MacVendorsClient) Vendor(ctx context.Context, mac string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	url := c.baseURL + "/" + mac

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to build lookup request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("vendor lookup request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %d", errLookupStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxVendorBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read lookup response: %w", err)
	}

	vendor := strings.TrimSpace(string(body))
	if vendor == "" {
		return "", errEmptyVendor
	}

	return vendor, nil
}
