// Package channel provides the File Channel: a single read-only view over
// an HDF5 file, backed by a memory-mapped region by default with a plain
// os.File fallback. It owns the file handle and exposes checked byte-range
// reads and zero-copy borrowed slices.
package channel

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/h5kit/hdf5/internal/utils"
)

// Channel is a read-only, bounds-checked view over an open file.
// A zero value is not usable; construct with Open.
type Channel struct {
	file   *os.File
	size   int64
	mapped []byte // non-nil when backed by mmap
}

// Option configures how a Channel opens its backing file.
type Option func(*options)

type options struct {
	withoutMmap bool
}

// WithoutMmap disables mmap and falls back to plain ReadAt over the
// os.File, for filesystems where mmap is unavailable or undesirable
// (e.g. certain network mounts).
func WithoutMmap() Option {
	return func(o *options) { o.withoutMmap = true }
}

// Open opens filename and returns a Channel over its full contents.
func Open(filename string, opts ...Option) (*Channel, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	//nolint:gosec // G304: user-provided filename is intentional for an HDF5 file library
	f, err := os.Open(filename)
	if err != nil {
		return nil, utils.WrapError("channel: open failed", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, utils.WrapError("channel: stat failed", err)
	}
	size := fi.Size()

	ch := &Channel{file: f, size: size}

	if o.withoutMmap || size == 0 {
		return ch, nil
	}

	//nolint:gosec // G115: file sizes fit in int on supported platforms
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		// mmap can legitimately fail (e.g. network filesystem); fall back
		// to plain reads rather than failing Open outright.
		return ch, nil
	}
	ch.mapped = data

	return ch, nil
}

// Size returns the file's total byte length.
func (c *Channel) Size() int64 {
	return c.size
}

// ReadAt reads len(p) bytes starting at off, rejecting reads that would
// extend past end of file.
func (c *Channel) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > c.size {
		return 0, fmt.Errorf("channel: read offset 0x%X out of range (size 0x%X)", off, c.size)
	}
	end := off + int64(len(p))
	if end > c.size {
		return 0, fmt.Errorf("channel: read [0x%X, 0x%X) exceeds file size 0x%X", off, end, c.size)
	}

	if c.mapped != nil {
		n := copy(p, c.mapped[off:end])
		return n, nil
	}
	return c.file.ReadAt(p, off)
}

// Map returns a borrowed, zero-copy view of [off, off+length) when the
// channel is mmap-backed. When mmap is unavailable (WithoutMmap, or mmap
// failed at Open), Map falls back to a defensive copy via ReadAt. The
// returned slice must not be retained across Close.
func (c *Channel) Map(off, length int64) ([]byte, error) {
	if off < 0 || off > c.size {
		return nil, fmt.Errorf("channel: map offset 0x%X out of range (size 0x%X)", off, c.size)
	}
	end := off + length
	if end > c.size {
		return nil, fmt.Errorf("channel: map [0x%X, 0x%X) exceeds file size 0x%X", off, end, c.size)
	}

	if c.mapped != nil {
		return c.mapped[off:end], nil
	}

	buf := make([]byte, length)
	if _, err := c.ReadAt(buf, off); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close unmaps the backing region (if mapped) and closes the file. Any
// slice previously returned by Map must not be used after Close returns;
// doing so faults deterministically on platforms that unmap eagerly
// rather than silently reading stale pages.
func (c *Channel) Close() error {
	var mapErr error
	if c.mapped != nil {
		mapErr = unix.Munmap(c.mapped)
		c.mapped = nil
	}
	closeErr := c.file.Close()
	if mapErr != nil {
		return utils.WrapError("channel: munmap failed", mapErr)
	}
	if closeErr != nil {
		return utils.WrapError("channel: close failed", closeErr)
	}
	return nil
}
