// Package mfr pkg/mfr/resolver.go maps MAC addresses to (vendor, class).
// Classification is best-effort enrichment: it never fails and never blocks
// device registration on an external service.
package mfr

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto"

	"github.com/carverauto/lanwatch/pkg/models"
)

//go:generate mockgen -destination=mock_mfr.go -package=mfr github.com/carverauto/lanwatch/pkg/mfr Lookup

const (
	// DefaultLookupTimeout bounds one external vendor lookup.
	DefaultLookupTimeout = 5 * time.Second

	// cacheTTL keeps resolved prefixes (including failed lookups) long
	// enough to cover a full scanning session.
	cacheTTL = 12 * time.Hour

	cacheNumCounters = 10_000
	cacheMaxCost     = 1 << 20
	cacheBufferItems = 64
)

// Lookup is the external vendor lookup collaborator.
type Lookup interface {
	// Vendor resolves a full MAC address to a manufacturer name.
	Vendor(ctx context.Context, mac string) (string, error)
}

// Resolver classifies MAC addresses using the static OUI table first and a
// remote lookup as fallback. Remote answers, including "unknown", are
// cached per prefix so the same unresolvable device never triggers
// repeated external calls.
type Resolver struct {
	lookup  Lookup
	cache   *ristretto.Cache
	timeout time.Duration
}

// NewResolver creates a Resolver backed by the given external lookup.
// A nil lookup disables the remote fallback entirely.
func NewResolver(lookup Lookup, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cacheNumCounters,
		MaxCost:     cacheMaxCost,
		BufferItems: cacheBufferItems,
	})
	if err != nil {
		// Only reachable with broken config constants; classification
		// still works without the cache, just with more external calls.
		log.Printf("mfr: failed to create lookup cache: %v", err)
	}

	return &Resolver{
		lookup:  lookup,
		cache:   cache,
		timeout: timeout,
	}
}

// Classify maps a MAC address to (vendor, class). It always returns usable
// strings; lookup failures degrade to (Unknown, Unknown).
func (r *Resolver) Classify(ctx context.Context, mac string) (vendor, class string) {
	norm := NormalizeMAC(mac)
	if norm == models.Unknown {
		return models.Unknown, models.Unknown
	}

	prefix := strings.Join(strings.SplitN(norm, ":", 4)[:3], ":")
	if vc, ok := ouiTable[prefix]; ok {
		return vc.Vendor, vc.Class
	}

	if cached, ok := r.cachedVendor(prefix); ok {
		return cached, models.Unknown
	}

	vendor = r.remoteVendor(ctx, norm)
	r.storeVendor(prefix, vendor)

	if vendor == models.Unknown {
		return models.Unknown, models.Unknown
	}

	// The remote service knows vendors, not device classes.
	return vendor, models.Unknown
}

func (r *Resolver) remoteVendor(ctx context.Context, mac string) string {
	if r.lookup == nil {
		return models.Unknown
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	vendor, err := r.lookup.Vendor(ctx, mac)
	if err != nil {
		// Swallowed on purpose: enrichment must never surface a failure.
		log.Printf("mfr: vendor lookup failed for %s: %v", mac, err)
		return models.Unknown
	}

	if vendor = strings.TrimSpace(vendor); vendor == "" {
		return models.Unknown
	}

	return vendor
}

func (r *Resolver) cachedVendor(prefix string) (string, bool) {
	if r.cache == nil {
		return "", false
	}

	value, ok := r.cache.Get(prefix)
	if !ok {
		return "", false
	}

	vendor, ok := value.(string)

	return vendor, ok
}

func (r *Resolver) storeVendor(prefix, vendor string) {
	if r.cache == nil {
		return
	}

	r.cache.SetWithTTL(prefix, vendor, 1, cacheTTL)
	r.cache.Wait()
}

// NormalizeMAC uppercases a MAC address and converts dash separators to
// colons. Anything too short to carry an OUI prefix becomes Unknown.
func NormalizeMAC(mac string) string {
	if mac == "" || mac == models.Unknown {
		return models.Unknown
	}

	norm := strings.ToUpper(strings.ReplaceAll(mac, "-", ":"))
	if len(norm) < 8 || strings.Count(norm, ":") < 2 {
		return models.Unknown
	}

	return norm
}
