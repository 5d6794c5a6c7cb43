package service

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
	"time"

	"github.com/Payphone-Digital/openpayments/internal/constants"
	"github.com/Payphone-Digital/openpayments/internal/dto"
	"github.com/Payphone-Digital/openpayments/internal/model"
	"github.com/Payphone-Digital/openpayments/pkg/logger"
	"github.com/Payphone-Digital/openpayments/pkg/metrics"
)

// IntCache is the subset of the Redis client used for cached totals.
type IntCache interface {
	GetInt64(ctx context.Context, key string) (int64, bool, error)
	SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error
}

// CountCache memoises COUNT(*) results per table and filter set. Lookups and
// writes never fail a request; errors are logged and treated as a miss.
type CountCache struct {
	store IntCache
	ttl   time.Duration
}

func NewCountCache(store IntCache, ttl time.Duration) *CountCache {
	return &CountCache{store: store, ttl: ttl}
}

// CountCacheKey is independent of limit, offset and sort order. Every field
// is length-prefixed, so no filter value can imitate a separator.
func CountCacheKey(ds model.Dataset, filters []dto.Filter) string {
	h := sha256.New()
	writeField(h, ds.Table)
	writeLen(h, len(filters))
	for _, f := range filters {
		writeField(h, f.Column)
		writeLen(h, len(f.Values))
		for _, v := range f.Values {
			writeField(h, v)
		}
	}
	return constants.CacheKeyCount + ds.Name + ":" + hex.EncodeToString(h.Sum(nil))
}

func writeLen(h hash.Hash, n int) {
	var buf [binary.MaxVarintLen64]byte
	h.Write(buf[:binary.PutUvarint(buf[:], uint64(n))])
}

func writeField(h hash.Hash, s string) {
	writeLen(h, len(s))
	h.Write([]byte(s))
}

func (c *CountCache) Get(ctx context.Context, ds model.Dataset, filters []dto.Filter) (int64, bool) {
	key := CountCacheKey(ds, filters)
	total, found, err := c.store.GetInt64(ctx, key)
	if err != nil {
		metrics.CountCacheTotal.WithLabelValues(ds.Name, metrics.CacheError).Inc()
		logger.WarnWithContext(ctx, "Count cache lookup failed").
			String("key", key).
			Err(err).
			Log()
		return 0, false
	}
	if !found {
		metrics.CountCacheTotal.WithLabelValues(ds.Name, metrics.CacheMiss).Inc()
		return 0, false
	}

	metrics.CountCacheTotal.WithLabelValues(ds.Name, metrics.CacheHit).Inc()
	return total, true
}

func (c *CountCache) Set(ctx context.Context, ds model.Dataset, filters []dto.Filter, total int64) {
	key := CountCacheKey(ds, filters)
	if err := c.store.SetInt64(ctx, key, total, c.ttl); err != nil {
		logger.WarnWithContext(ctx, "Count cache write failed").
			String("key", key).
			Err(err).
			Log()
	}
}
