package hdf5

import "github.com/h5kit/hdf5/internal/hdf5errors"

// The error kinds below are defined in internal/hdf5errors so that
// internal/core and internal/structures can construct them directly at
// the point a failure is detected, without importing this package (which
// imports them, and would otherwise cycle). They are aliased here, rather
// than merely documented, so the types and their fields are identical
// whether a caller matches on hdf5.CorruptHeaderError or constructs one
// while reading this source.

// IoError reports a failed read at a specific byte offset.
type IoError = hdf5errors.IoError

// NotHdf5Error reports that a file lacks the HDF5 signature.
type NotHdf5Error = hdf5errors.NotHdf5Error

// UnsupportedVersionError reports a format version this library does not
// implement for some structure (superblock, object header, B-tree node,
// filter pipeline message, ...).
type UnsupportedVersionError = hdf5errors.UnsupportedVersionError

// CorruptHeaderError reports a superblock or object header that fails a
// structural check (bad signature, truncated fixed-size region, ...).
type CorruptHeaderError = hdf5errors.CorruptHeaderError

// CorruptMessageError reports a header message whose encoded length or
// fields do not agree with its declared type.
type CorruptMessageError = hdf5errors.CorruptMessageError

// CorruptBTreeError reports a B-tree v1 or v2 node that fails a structural
// or checksum check.
type CorruptBTreeError = hdf5errors.CorruptBTreeError

// UnsupportedFilterError reports a chunk filter id with no registered
// decoder (see WithFilterRegistry).
type UnsupportedFilterError = hdf5errors.UnsupportedFilterError

// UnsupportedLayoutError reports a dataset storage layout class this
// library cannot read (only compact, contiguous, and chunked are
// implemented).
type UnsupportedLayoutError = hdf5errors.UnsupportedLayoutError

// UnsupportedDatatypeError reports a dataset element type this library
// cannot convert to a Go value.
type UnsupportedDatatypeError = hdf5errors.UnsupportedDatatypeError

// NotFoundError reports that a path has no corresponding object.
type NotFoundError = hdf5errors.NotFoundError

// ErrClosed is returned by any operation on a File, or a Group/Dataset
// obtained from it, after Close has been called.
var ErrClosed = hdf5errors.ErrClosed
