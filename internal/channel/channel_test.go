package channel

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "channel_test.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestChannel_ReadAt(t *testing.T) {
	data := []byte("0123456789abcdef")
	path := writeTempFile(t, data)

	ch, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	require.Equal(t, int64(len(data)), ch.Size())

	buf := make([]byte, 4)
	n, err := ch.ReadAt(buf, 5)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, []byte("5678"), buf)
}

func TestChannel_ReadAt_PastEOF(t *testing.T) {
	path := writeTempFile(t, []byte("short"))

	ch, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	buf := make([]byte, 10)
	_, err = ch.ReadAt(buf, 0)
	require.Error(t, err)
}

func TestChannel_Map(t *testing.T) {
	data := []byte("hello fractal heap world")
	path := writeTempFile(t, data)

	ch, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	view, err := ch.Map(6, 7)
	require.NoError(t, err)
	require.Equal(t, []byte("fractal"), view)
}

func TestChannel_WithoutMmap(t *testing.T) {
	data := []byte("no mmap here")
	path := writeTempFile(t, data)

	ch, err := Open(path, WithoutMmap())
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	view, err := ch.Map(0, 2)
	require.NoError(t, err)
	require.Equal(t, []byte("no"), view)
}

func TestChannel_EmptyFile(t *testing.T) {
	path := writeTempFile(t, nil)

	ch, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = ch.Close() }()

	require.Equal(t, int64(0), ch.Size())
}
