// Package hdf5errors defines the typed error kinds raised across the
// reader: superblock and object-header validation, B-tree and heap
// corruption, and unsupported format features. It exists as its own leaf
// package, rather than living directly in the root hdf5 package, so that
// internal/core and internal/structures can construct and return these
// types themselves instead of downgrading to fmt.Errorf and losing the
// structured fields at the point where the failure is actually detected.
// The root package re-exports every type here as a type alias, so callers
// outside this module see exactly the same names and fields documented at
// the public API surface.
package hdf5errors

import (
	"errors"
	"fmt"
)

// IoError reports a failed read at a specific byte offset.
type IoError struct {
	Offset int64
	Cause  error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("io error at offset %d: %v", e.Offset, e.Cause)
}

func (e *IoError) Unwrap() error { return e.Cause }

// NotHdf5Error reports that a file lacks the HDF5 signature.
type NotHdf5Error struct{}

func (e *NotHdf5Error) Error() string { return "not an HDF5 file" }

// UnsupportedVersionError reports a format version this library does not
// implement for some structure (superblock, object header, B-tree node,
// filter pipeline message, ...).
type UnsupportedVersionError struct {
	What    string
	Version uint8
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported %s version: %d", e.What, e.Version)
}

// CorruptHeaderError reports a superblock or object header that fails a
// structural check (bad signature, truncated fixed-size region, ...).
type CorruptHeaderError struct {
	Address uint64
	Detail  string
}

func (e *CorruptHeaderError) Error() string {
	return fmt.Sprintf("corrupt header at 0x%X: %s", e.Address, e.Detail)
}

// CorruptMessageError reports a header message whose encoded length or
// fields do not agree with its declared type.
type CorruptMessageError struct {
	Type   uint16
	Detail string
}

func (e *CorruptMessageError) Error() string {
	return fmt.Sprintf("corrupt message type %d: %s", e.Type, e.Detail)
}

// CorruptBTreeError reports a B-tree v1 or v2 node that fails a structural
// or checksum check.
type CorruptBTreeError struct {
	Address uint64
	Detail  string
}

func (e *CorruptBTreeError) Error() string {
	return fmt.Sprintf("corrupt B-tree node at 0x%X: %s", e.Address, e.Detail)
}

// UnsupportedFilterError reports a chunk filter id with no registered
// decoder (see WithFilterRegistry).
type UnsupportedFilterError struct {
	ID uint16
}

func (e *UnsupportedFilterError) Error() string {
	return fmt.Sprintf("unsupported filter id %d", e.ID)
}

// UnsupportedLayoutError reports a dataset storage layout class this
// library cannot read (only compact, contiguous, and chunked are
// implemented).
type UnsupportedLayoutError struct {
	Class uint8
}

func (e *UnsupportedLayoutError) Error() string {
	return fmt.Sprintf("unsupported data layout class %d", e.Class)
}

// UnsupportedDatatypeError reports a dataset element type this library
// cannot convert to a Go value.
type UnsupportedDatatypeError struct {
	Detail string
}

func (e *UnsupportedDatatypeError) Error() string {
	return fmt.Sprintf("unsupported datatype: %s", e.Detail)
}

// ErrClosed is returned by any operation on a File, or a Group/Dataset
// obtained from it, after Close has been called.
var ErrClosed = errors.New("hdf5: file is closed")

// NotFoundError reports that a path has no corresponding object.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("not found: %q", e.Path)
}
