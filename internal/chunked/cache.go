// Package chunked provides the decoded-chunk cache shared by the chunked
// dataset engine: given a chunk's on-disk location, it reads and applies
// the filter pipeline at most once per chunk origin, collapsing concurrent
// misses on the same chunk into a single decode.
package chunked

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FilterPipeline decodes one chunk's on-disk bytes, honoring a per-chunk
// filter mask (bit i set means filter i was excluded when the chunk was
// written and must be skipped on read).
type FilterPipeline interface {
	Decode(data []byte, filterMask uint32) ([]byte, error)
}

// ChunkLocation is everything the cache needs to fetch and decode one
// chunk: its origin (chunk-grid coordinates, used as the cache key), its
// on-disk address and size, and the filters excluded for it.
type ChunkLocation struct {
	Origin     []uint64
	Address    uint64
	Nbytes     uint32
	FilterMask uint32
}

// Cache is a concurrent ChunkKey -> decoded bytes cache. It never evicts;
// bounding memory use is left to the caller (typically by not holding a
// Cache open longer than one dataset read).
type Cache struct {
	r        io.ReaderAt
	pipeline FilterPipeline

	group   singleflight.Group
	mu      sync.RWMutex
	decoded map[string][]byte
}

// NewCache returns a Cache that reads chunks from r and decodes them with
// pipeline. pipeline may be nil (or a nil-valued interface holding a
// pipeline with no filters) if the dataset has no filter pipeline.
func NewCache(r io.ReaderAt, pipeline FilterPipeline) *Cache {
	return &Cache{
		r:        r,
		pipeline: pipeline,
		decoded:  make(map[string][]byte),
	}
}

// Decode returns the decoded bytes for loc, reading and applying filters
// on first access and serving cached bytes thereafter. Concurrent calls
// for the same origin collapse into a single read+decode; all callers
// receive the same slice.
func (c *Cache) Decode(loc ChunkLocation) ([]byte, error) {
	key := encodeOrigin(loc.Origin)

	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		if cached, ok := c.lookup(key); ok {
			return cached, nil
		}

		buf := make([]byte, loc.Nbytes)
		//nolint:gosec // G115: HDF5 addresses fit in int64 for io.ReaderAt interface
		if _, err := c.r.ReadAt(buf, int64(loc.Address)); err != nil {
			return nil, fmt.Errorf("failed to read chunk at 0x%x: %w", loc.Address, err)
		}

		decoded := buf
		if c.pipeline != nil {
			decoded, err := c.pipeline.Decode(buf, loc.FilterMask)
			if err != nil {
				return nil, fmt.Errorf("failed to decode chunk at 0x%x: %w", loc.Address, err)
			}
			c.store(key, decoded)
			return decoded, nil
		}

		c.store(key, decoded)
		return decoded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (c *Cache) lookup(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.decoded[key]
	return v, ok
}

func (c *Cache) store(key string, v []byte) {
	c.mu.Lock()
	c.decoded[key] = v
	c.mu.Unlock()
}

// encodeOrigin builds a stable map/singleflight key from a chunk's
// multi-dimensional coordinates.
func encodeOrigin(origin []uint64) string {
	var b strings.Builder
	for i, v := range origin {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(v, 10))
	}
	return b.String()
}
