package hdf5

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSoftLink_NameAndTarget(t *testing.T) {
	link := &SoftLink{name: "alias", target: "/real/path"}
	require.Equal(t, "alias", link.Name())
	require.Equal(t, "/real/path", link.Target())
}

func TestExternalLink_Name(t *testing.T) {
	link := &ExternalLink{name: "elsewhere"}
	require.Equal(t, "elsewhere", link.Name())
}

func buildTestTree() *Group {
	leaf := &Dataset{name: "temperature"}
	nested := &Group{name: "measurements", children: []Object{leaf}}
	root := &Group{name: "/", children: []Object{
		nested,
		&SoftLink{name: "alias", target: "/measurements/temperature"},
	}}
	return root
}

func TestGroup_ResolveRoot(t *testing.T) {
	root := buildTestTree()
	obj, err := root.Resolve("/")
	require.NoError(t, err)
	require.Same(t, root, obj)
}

func TestGroup_ResolveNestedPath(t *testing.T) {
	root := buildTestTree()
	obj, err := root.Resolve("/measurements/temperature")
	require.NoError(t, err)
	ds, ok := obj.(*Dataset)
	require.True(t, ok)
	require.Equal(t, "temperature", ds.Name())
}

func TestGroup_ResolveMissingPath(t *testing.T) {
	root := buildTestTree()
	_, err := root.Resolve("/measurements/humidity")
	require.Error(t, err)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGroup_ResolveThroughNonGroup(t *testing.T) {
	root := buildTestTree()
	_, err := root.Resolve("/measurements/temperature/nope")
	require.Error(t, err)
}

func TestGroup_ResolveSoftLinkTarget(t *testing.T) {
	root := buildTestTree()
	var link *SoftLink
	for _, child := range root.Children() {
		if sl, ok := child.(*SoftLink); ok {
			link = sl
		}
	}
	require.NotNil(t, link)

	obj, err := root.Resolve(link.Target())
	require.NoError(t, err)
	require.Equal(t, "temperature", obj.Name())
}
