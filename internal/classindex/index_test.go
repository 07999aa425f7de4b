package classindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/descres/internal/annotations"
)

func method(name string, params ...string) *Method {
	return &Method{Name: name, Params: params, Public: true}
}

func buildIndex(t *testing.T) *Index {
	t.Helper()
	idx := New("")

	classes := []*Class{
		{Name: "pkg.Api", Interface: true, Methods: []*Method{method("get", "int")}},
		{Name: "pkg.Admin", Interface: true, Interfaces: []string{"pkg.Api"}, Methods: []*Method{method("reset")}},
		{
			Name:    "pkg.Base",
			Super:   "java.lang.Object",
			Methods: []*Method{method("get", "int"), method("close")},
		},
		{
			Name:       "pkg.Impl",
			Super:      "pkg.Base",
			Interfaces: []string{"pkg.Admin", "java.io.Serializable"},
			Methods:    []*Method{method("get", "int"), method("reset")},
			Markers:    []*annotations.Marker{annotations.NewMarker(annotations.StatelessMarker, nil)},
		},
	}
	for _, c := range classes {
		require.NoError(t, idx.Add(c))
	}
	return idx
}

func TestIndex_AddStampsDeclaringClass(t *testing.T) {
	idx := buildIndex(t)

	c, ok := idx.Class("pkg.Impl")
	require.True(t, ok)
	for _, m := range c.Methods {
		assert.Equal(t, "pkg.Impl", m.Declaring)
	}
	assert.Equal(t, 4, idx.Len())
	assert.Equal(t, "java.lang.Object", idx.Root())
}

func TestIndex_AddRejectsInvalidClasses(t *testing.T) {
	idx := New("java.lang.Object")
	require.NoError(t, idx.Add(&Class{Name: "pkg.A"}))

	assert.Error(t, idx.Add(&Class{Name: "pkg.A"}), "duplicate class")
	assert.Error(t, idx.Add(&Class{}), "empty name")
	assert.Error(t, idx.Add(&Class{Name: "pkg.B", Methods: []*Method{method("a"), method("a")}}), "duplicate method")
}

func TestIndex_Hierarchy(t *testing.T) {
	idx := buildIndex(t)

	chain := idx.Hierarchy("pkg.Impl")
	require.Len(t, chain, 2)
	assert.Equal(t, "pkg.Impl", chain[0].Name)
	assert.Equal(t, "pkg.Base", chain[1].Name)

	supers := idx.Superclasses("pkg.Impl")
	require.Len(t, supers, 1)
	assert.Equal(t, "pkg.Base", supers[0].Name)

	assert.Empty(t, idx.Hierarchy("pkg.Missing"))
}

func TestIndex_HierarchyStopsOnCycle(t *testing.T) {
	idx := New("")
	require.NoError(t, idx.Add(&Class{Name: "pkg.A", Super: "pkg.B"}))
	require.NoError(t, idx.Add(&Class{Name: "pkg.B", Super: "pkg.A"}))

	assert.Len(t, idx.Hierarchy("pkg.A"), 2)
}

func TestIndex_IsAssignable(t *testing.T) {
	idx := buildIndex(t)

	tests := []struct {
		from, to string
		expected bool
	}{
		{"pkg.Impl", "pkg.Impl", true},
		{"pkg.Impl", "pkg.Base", true},
		{"pkg.Impl", "pkg.Admin", true},
		{"pkg.Impl", "pkg.Api", true},
		{"pkg.Impl", "java.io.Serializable", true},
		{"pkg.Impl", "java.lang.Object", true},
		{"pkg.Base", "pkg.Api", false},
		{"pkg.Api", "pkg.Admin", false},
		{"", "pkg.Api", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.expected, idx.IsAssignable(tt.from, tt.to))
		})
	}
}

func TestIndex_Members(t *testing.T) {
	idx := buildIndex(t)

	members := idx.Members("pkg.Impl")
	require.Len(t, members, 3)

	bySig := make(map[string]string)
	for _, m := range members {
		bySig[m.Signature()] = m.Declaring
	}
	assert.Equal(t, "pkg.Impl", bySig["get(int)"], "override wins")
	assert.Equal(t, "pkg.Impl", bySig["reset()"])
	assert.Equal(t, "pkg.Base", bySig["close()"])

	m, ok := idx.MostDerived("pkg.Impl", "close()")
	require.True(t, ok)
	assert.Equal(t, "pkg.Base", m.Declaring)
}

func TestIndex_Interfaces(t *testing.T) {
	idx := buildIndex(t)

	assert.Equal(t, []string{"pkg.Admin", "pkg.Api", "java.io.Serializable"}, idx.AllInterfaces("pkg.Impl"))

	var sigs []string
	for _, m := range idx.InterfaceMethods("pkg.Admin") {
		sigs = append(sigs, m.Signature())
	}
	assert.Equal(t, []string{"reset()", "get(int)"}, sigs)
}

func TestIndex_MarkerReader(t *testing.T) {
	idx := buildIndex(t)

	m, ok := idx.Marker(TypeOf("pkg.Impl"), annotations.StatelessMarker)
	require.True(t, ok)
	assert.Equal(t, annotations.StatelessMarker, m.Type)

	_, ok = idx.Marker(TypeOf("pkg.Impl"), annotations.SingletonMarker)
	assert.False(t, ok)

	c, _ := idx.Class("pkg.Impl")
	get, _ := c.Method("get(int)")
	assert.Empty(t, idx.Markers(MethodOf(get)))
	assert.Equal(t, "method pkg.Impl.get(int)", MethodOf(get).String())
}

func TestNames(t *testing.T) {
	assert.Equal(t, "FooImpl", SimpleName("pkg.sub.FooImpl"))
	assert.Equal(t, "Foo", SimpleName("Foo"))
	assert.Equal(t, "pkg.sub", Package("pkg.sub.FooImpl"))
	assert.Equal(t, "", Package("Foo"))
	assert.Equal(t, "ejbTimeout(jakarta.ejb.Timer)", Signature("ejbTimeout", []string{"jakarta.ejb.Timer"}))
}
