package lazy

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValue_InitializesOnce(t *testing.T) {
	var v Value[int]
	var calls int32

	init := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 42, nil
	}

	got, err := v.Get(init)
	require.NoError(t, err)
	require.Equal(t, 42, got)

	got, err = v.Get(init)
	require.NoError(t, err)
	require.Equal(t, 42, got)

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestValue_ConcurrentGetObserveSameResult(t *testing.T) {
	var v Value[string]
	var calls int32

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]string, goroutines)
	errs := make([]error, goroutines)

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = v.Get(func() (string, error) {
				atomic.AddInt32(&calls, 1)
				return "initialized", nil
			})
		}(i)
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for i := 0; i < goroutines; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "initialized", results[i])
	}
}

func TestValue_FailedInitializerIsCachedAndReplayed(t *testing.T) {
	var v Value[int]
	var calls int32
	wantErr := errors.New("init failed")

	init := func() (int, error) {
		atomic.AddInt32(&calls, 1)
		return 0, wantErr
	}

	_, err := v.Get(init)
	require.ErrorIs(t, err, wantErr)

	_, err = v.Get(init)
	require.ErrorIs(t, err, wantErr)

	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
