package hdf5errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorStrings(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"IoError", &IoError{Offset: 128, Cause: errors.New("short read")}, "io error at offset 128: short read"},
		{"NotHdf5Error", &NotHdf5Error{}, "not an HDF5 file"},
		{"UnsupportedVersionError", &UnsupportedVersionError{What: "superblock", Version: 9}, "unsupported superblock version: 9"},
		{"CorruptHeaderError", &CorruptHeaderError{Address: 0x100, Detail: "bad signature"}, "corrupt header at 0x100: bad signature"},
		{"CorruptMessageError", &CorruptMessageError{Type: 6, Detail: "truncated"}, "corrupt message type 6: truncated"},
		{"CorruptBTreeError", &CorruptBTreeError{Address: 0x200, Detail: "bad node type"}, "corrupt B-tree node at 0x200: bad node type"},
		{"UnsupportedFilterError", &UnsupportedFilterError{ID: 32000}, "unsupported filter id 32000"},
		{"UnsupportedLayoutError", &UnsupportedLayoutError{Class: 9}, "unsupported data layout class 9"},
		{"UnsupportedDatatypeError", &UnsupportedDatatypeError{Detail: "bitfield"}, "unsupported datatype: bitfield"},
		{"NotFoundError", &NotFoundError{Path: "/missing"}, `not found: "/missing"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestIoError_Unwrap(t *testing.T) {
	cause := errors.New("eof")
	err := &IoError{Offset: 0, Cause: cause}
	require.ErrorIs(t, err, cause)
}
