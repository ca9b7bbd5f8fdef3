package utils

import "fmt"

// H5Error represents a structured HDF5 error.
type H5Error struct {
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *H5Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Context, e.Cause)
}

// WrapError creates a contextual error.
func WrapError(context string, cause error) error {
	if cause == nil {
		return nil
	}
	return &H5Error{
		Context: context,
		Cause:   cause,
	}
}

// Unwrap provides compatibility with errors.Unwrap().
func (e *H5Error) Unwrap() error {
	return e.Cause
}

// ChecksumMismatchError reports a structure whose stored lookup3 checksum
// does not match the bytes actually read from the file. B-tree v2 nodes and
// fractal heap direct blocks both carry one; a mismatch means the file is
// corrupt or was truncated, and must never be silently ignored.
type ChecksumMismatchError struct {
	Structure string // e.g. "B-tree v2 leaf node", "fractal heap direct block"
	Address   uint64
	Want      uint32
	Got       uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch in %s at 0x%X: file has 0x%08X, computed 0x%08X",
		e.Structure, e.Address, e.Want, e.Got)
}
