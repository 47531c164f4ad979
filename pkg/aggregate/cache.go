package aggregate

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/Sumatoshi-tech/ensemblestat/pkg/alg/lru"
	"github.com/Sumatoshi-tech/ensemblestat/pkg/ensemble"
)

// DefaultSampleCacheBytes bounds the sorted sample cache of long-running
// adapters (64 MiB of float64).
const DefaultSampleCacheBytes = 64 << 20

const float64Size = 8

// sortedEntry keeps the input length next to the sorted samples so a digest
// collision between series of different lengths is never served.
type sortedEntry struct {
	sorted []float64
	length int
}

// SampleCache memoizes the sorted valid samples of recently seen series,
// keyed by an xxhash digest of their bit patterns. Safe for concurrent use.
type SampleCache struct {
	entries *lru.Cache[uint64, sortedEntry]
}

// NewSampleCache returns a cache holding at most maxBytes of sorted samples.
func NewSampleCache(maxBytes int64) *SampleCache {
	return &SampleCache{
		entries: lru.New(lru.WithMaxBytes[uint64](maxBytes, func(e sortedEntry) int64 {
			return int64(len(e.sorted)) * float64Size
		})),
	}
}

// Sorted returns ensemble.SortedValid(values), reporting whether it was
// served from the cache. The returned slice must not be modified.
func (c *SampleCache) Sorted(values []float64) (sorted []float64, hit bool) {
	key := digest(values)

	if e, ok := c.entries.Get(key); ok && e.length == len(values) {
		return e.sorted, true
	}

	sorted = ensemble.SortedValid(values)
	c.entries.Put(key, sortedEntry{sorted: sorted, length: len(values)})

	return sorted, false
}

// Stats reports cache occupancy and hit counters.
func (c *SampleCache) Stats() lru.Stats {
	return c.entries.Stats()
}

func digest(values []float64) uint64 {
	h := xxhash.New()

	var buf [float64Size]byte

	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = h.Write(buf[:])
	}

	return h.Sum64()
}
