package chunked

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeReaderAt struct {
	data []byte
}

func (f *fakeReaderAt) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, f.data[off:])
	return n, nil
}

type countingPipeline struct {
	calls int32
}

func (p *countingPipeline) Decode(data []byte, filterMask uint32) ([]byte, error) {
	atomic.AddInt32(&p.calls, 1)
	if filterMask != 0 {
		return data, nil
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b + 1
	}
	return out, nil
}

func TestCache_DecodeAppliesPipelineOnce(t *testing.T) {
	src := &fakeReaderAt{data: []byte{1, 2, 3, 4}}
	pipeline := &countingPipeline{}
	cache := NewCache(src, pipeline)

	loc := ChunkLocation{Origin: []uint64{0, 0}, Address: 0, Nbytes: 4}

	first, err := cache.Decode(loc)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3, 4, 5}, first)

	second, err := cache.Decode(loc)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, atomic.LoadInt32(&pipeline.calls))
}

func TestCache_ConcurrentMissesCollapseToOneDecode(t *testing.T) {
	src := &fakeReaderAt{data: []byte{9, 9, 9, 9}}
	pipeline := &countingPipeline{}
	cache := NewCache(src, pipeline)

	loc := ChunkLocation{Origin: []uint64{1, 2}, Address: 0, Nbytes: 4}

	var wg sync.WaitGroup
	results := make([][]byte, 50)
	for i := range results {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := cache.Decode(loc)
			require.NoError(t, err)
			results[idx] = v
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		require.Equal(t, results[0], r)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&pipeline.calls))
}

func TestCache_DifferentOriginsDecodeIndependently(t *testing.T) {
	src := &fakeReaderAt{data: []byte{1, 2, 3, 4, 5, 6, 7, 8}}
	pipeline := &countingPipeline{}
	cache := NewCache(src, pipeline)

	a, err := cache.Decode(ChunkLocation{Origin: []uint64{0}, Address: 0, Nbytes: 4})
	require.NoError(t, err)
	b, err := cache.Decode(ChunkLocation{Origin: []uint64{1}, Address: 4, Nbytes: 4})
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.EqualValues(t, 2, atomic.LoadInt32(&pipeline.calls))
}

func TestCache_ReadErrorPropagates(t *testing.T) {
	src := &fakeReaderAt{data: []byte{1, 2}}
	cache := NewCache(src, &countingPipeline{})

	_, err := cache.Decode(ChunkLocation{Origin: []uint64{0}, Address: 0, Nbytes: 100})
	require.Error(t, err)
}

func TestCache_NoPipelinePassesBytesThrough(t *testing.T) {
	src := &fakeReaderAt{data: []byte{7, 8, 9}}
	cache := NewCache(src, nil)

	v, err := cache.Decode(ChunkLocation{Origin: []uint64{0}, Address: 0, Nbytes: 3})
	require.NoError(t, err)
	require.Equal(t, []byte{7, 8, 9}, v)
}

func TestEncodeOrigin(t *testing.T) {
	require.Equal(t, "0,0", encodeOrigin([]uint64{0, 0}))
	require.Equal(t, "3,7,12", encodeOrigin([]uint64{3, 7, 12}))
	require.NotEqual(t, encodeOrigin([]uint64{1, 2}), encodeOrigin([]uint64{12, 21}))
}

func TestCache_KeyCollisionSanity(t *testing.T) {
	// Different-length origins never collide despite naive string joins.
	a := encodeOrigin([]uint64{1, 23})
	b := encodeOrigin([]uint64{12, 3})
	if a == b {
		t.Fatalf("unexpected collision: %s", fmt.Sprint(a))
	}
}
