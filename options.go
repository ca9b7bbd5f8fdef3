package hdf5

import (
	"go.uber.org/zap"

	"github.com/h5kit/hdf5/internal/core"
)

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	logger      *zap.Logger
	withoutMmap bool
}

func defaultOpenOptions() *openOptions {
	return &openOptions{
		logger: zap.NewNop(),
	}
}

// WithLogger injects a structured logger. By default Open is silent
// (zap.NewNop()); pass a real logger to observe superblock detection,
// lazy-heap materialization, and recoverable parse warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(o *openOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithoutMmap disables the default mmap-backed file channel and falls
// back to plain ReadAt over an *os.File, for filesystems where mmap is
// unavailable or undesirable (e.g. certain network mounts).
func WithoutMmap() Option {
	return func(o *openOptions) {
		o.withoutMmap = true
	}
}

// WithFilterRegistry registers additional filter decoders before Open
// parses any chunked dataset. Must be called before the first Open in a
// process; the registry is treated as immutable once reads begin.
func WithFilterRegistry(id core.FilterID, fn core.FilterFunc) Option {
	return func(*openOptions) {
		core.RegisterFilter(id, fn)
	}
}
