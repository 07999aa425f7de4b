package snapshot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/descres/internal/annotations"
	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/models"
)

const shopSnapshot = `
version: v1.0.0
bundle: shop
classes:
  - name: com.acme.Cart
    interface: true
    methods:
      - name: add
        params: [java.lang.String]
  - name: com.acme.CartBean
    interfaces: [com.acme.Cart]
    markers:
      - '@Stateful(name="Cart")'
    constructors:
      - markers: ['@Interceptors({com.acme.Audit})']
    methods:
      - name: add
        params: [java.lang.String]
        markers: ['@AccessTimeout(value=5, unit=TimeUnit.SECONDS)']
      - name: reset
        public: false
  - name: com.acme.Audit
components:
  - name: Cart
    sessionType: Stateful
    description: shopping cart
    localBean: true
    overrides:
      - attribute: Lock
        method: {class: com.acme.CartBean, name: add, params: [java.lang.String]}
        value: LockType.READ
      - attribute: AccessTimeout
        method: {class: com.acme.CartBean, name: reset}
        value: {value: 10}
    callbacks:
      PostConstruct:
        - method: init
  - name: Pending
interceptors:
  - class: com.acme.Audit
    callbacks:
      AroundInvoke:
        - class: com.acme.Audit
          method: audit
bindings:
  - component: Cart
    interceptors: [com.acme.Audit]
`

func load(t *testing.T, doc string) *Snapshot {
	t.Helper()
	s, err := Load(strings.NewReader(doc))
	require.NoError(t, err)
	return s
}

func TestLoad(t *testing.T) {
	s := load(t, shopSnapshot)

	assert.Equal(t, "shop", s.Bundle)
	require.Len(t, s.Classes, 3)
	require.Len(t, s.Classes[1].Markers, 1)
	assert.Equal(t, `@Stateful(name="Cart")`, s.Classes[1].Markers[0].Text)
	assert.Equal(t, 13, s.Classes[1].Markers[0].Line)
}

func TestLoadRejectsDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "snapshot is empty"},
		{"no version", "bundle: shop\n", "version is missing"},
		{"not semver", "version: one\nbundle: shop\n", "not a semantic version"},
		{"other major", "version: v2.0.0\nbundle: shop\n", "not supported"},
		{"newer minor", "version: v1.4.0\nbundle: shop\n", "newer than supported"},
		{"no bundle", "version: v1\n", "must name its bundle"},
		{"unknown field", "version: v1\nbundle: shop\nbeans: []\n", "failed to decode"},
		{"marker not a string", "version: v1\nbundle: shop\nclasses:\n  - name: A\n    markers: [{a: b}]\n", "marker must be a string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildIndex(t *testing.T) {
	s := load(t, shopSnapshot)
	s.Source = "shop.yaml"

	_, idx, err := s.Build(config.Default())
	require.NoError(t, err)

	bean, ok := idx.Class("com.acme.CartBean")
	require.True(t, ok)
	m, ok := bean.Marker(annotations.StatefulMarker)
	require.True(t, ok)
	assert.Equal(t, "Cart", m.GetString("name"))
	assert.Equal(t, "shop.yaml", m.Location.File)
	assert.Equal(t, 13, m.Location.Line)

	require.Len(t, bean.Constructors, 1)
	assert.Equal(t, "<init>", bean.Constructors[0].Name)
	assert.Equal(t, "com.acme.CartBean", bean.Constructors[0].Declaring)

	reset, ok := bean.Method("reset()")
	require.True(t, ok)
	assert.False(t, reset.Public)
	add, ok := bean.Method("add(java.lang.String)")
	require.True(t, ok)
	assert.True(t, add.Public)

	assert.True(t, idx.IsAssignable("com.acme.CartBean", "com.acme.Cart"))
}

func TestBuildBundle(t *testing.T) {
	s := load(t, shopSnapshot)

	bundle, _, err := s.Build(config.Default())
	require.NoError(t, err)
	assert.Equal(t, "shop", bundle.Name)

	cart, ok := bundle.ComponentByName("Cart")
	require.True(t, ok)
	assert.False(t, cart.Placeholder)
	assert.Equal(t, models.SessionKind, cart.Kind)
	assert.Equal(t, models.Stateful, cart.SessionType())
	assert.True(t, cart.LocalBean)
	assert.True(t, cart.IsFixed(models.LocalBeanField))
	assert.True(t, cart.IsFixed(models.DescriptionField))
	assert.False(t, cart.IsFixed(models.MappedNameField))

	lock, ok := cart.Overrides(models.LockAttribute).Get(models.NewMethodRef("com.acme.CartBean", "add", "java.lang.String"))
	require.True(t, ok)
	assert.Equal(t, models.ReadLock, lock.Value)
	assert.Equal(t, models.External, lock.Source)

	timeout, ok := cart.Overrides(models.AccessTimeoutAttribute).Get(models.NewMethodRef("com.acme.CartBean", "reset"))
	require.True(t, ok)
	assert.Equal(t, models.AccessTimeout{Value: 10, Unit: "MILLISECONDS"}, timeout.Value)

	require.Len(t, cart.Callbacks(models.PostConstruct), 1)
	assert.Equal(t, "init", cart.Callbacks(models.PostConstruct)[0].Method)

	pending, ok := bundle.ComponentByName("Pending")
	require.True(t, ok)
	assert.True(t, pending.Placeholder)

	audit, ok := bundle.InterceptorByClass("com.acme.Audit")
	require.True(t, ok)
	assert.True(t, audit.HasCallback(models.AroundInvoke, "com.acme.Audit"))

	bindings := bundle.InterceptorBindings()
	require.Len(t, bindings, 1)
	assert.Equal(t, models.External, bindings[0].Source)
}

func TestBuildRejectsInvalidContent(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "bad marker",
			doc:  "version: v1\nbundle: b\nclasses:\n  - name: A\n    markers: ['Stateless']\n",
			want: "must start with '@'",
		},
		{
			name: "unknown kind with session type",
			doc:  "version: v1\nbundle: b\ncomponents:\n  - name: A\n    kind: Entity\n    sessionType: Stateless\n",
			want: "kind Entity has no session type",
		},
		{
			name: "message-driven with session type",
			doc:  "version: v1\nbundle: b\ncomponents:\n  - name: A\n    kind: MessageDriven\n    sessionType: Stateless\n",
			want: "has no session type",
		},
		{
			name: "duplicate component",
			doc:  "version: v1\nbundle: b\ncomponents:\n  - name: A\n  - name: A\n",
			want: "already defined",
		},
		{
			name: "unknown attribute",
			doc:  "version: v1\nbundle: b\ncomponents:\n  - name: A\n    overrides:\n      - attribute: Retry\n        method: {name: run}\n        value: 3\n",
			want: "unknown attribute",
		},
		{
			name: "missing override value",
			doc:  "version: v1\nbundle: b\ncomponents:\n  - name: A\n    overrides:\n      - attribute: Lock\n        method: {name: run}\n",
			want: "value is required",
		},
		{
			name: "unknown callback",
			doc:  "version: v1\nbundle: b\ncomponents:\n  - name: A\n    callbacks:\n      OnLoad: [{method: run}]\n",
			want: "unknown lifecycle callback",
		},
		{
			name: "conflicting interfaces",
			doc:  "version: v1\nbundle: b\ncomponents:\n  - name: A\n    remote: [I]\n    local: [I]\n",
			want: "I",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := load(t, tt.doc)
			_, _, err := s.Build(config.Default())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBuildKeepsUnknownKind(t *testing.T) {
	doc := "version: v1\nbundle: b\ncomponents:\n  - name: Order\n    kind: Entity\n    class: com.acme.OrderBean\n  - name: A\n    sessionType: Stateless\n"
	bundle, _, err := load(t, doc).Build(config.Default())
	require.NoError(t, err)

	order, ok := bundle.ComponentByName("Order")
	require.True(t, ok)
	assert.Equal(t, models.UnsupportedKind, order.Kind)
	assert.Equal(t, "Entity", order.TypeName())
	assert.False(t, order.Supported())

	out, err := Dump(bundle)
	require.NoError(t, err)
	assert.Contains(t, string(out), "kind: Entity")
}

func TestDumpIsLoadable(t *testing.T) {
	s := load(t, shopSnapshot)
	bundle, _, err := s.Build(config.Default())
	require.NoError(t, err)

	out, err := Dump(bundle)
	require.NoError(t, err)
	assert.Contains(t, string(out), "version: v1.0.0")
	assert.Contains(t, string(out), "source: external")

	again, err := Dump(bundle)
	require.NoError(t, err)
	assert.Equal(t, string(out), string(again))

	reloaded := load(t, string(out))
	rebuilt, _, err := reloaded.Build(config.Default())
	require.NoError(t, err)
	cart, ok := rebuilt.ComponentByName("Cart")
	require.True(t, ok)
	assert.Equal(t, models.Stateful, cart.SessionType())
	assert.Equal(t, 1, cart.Overrides(models.LockAttribute).Len())
	assert.Equal(t, 1, cart.Overrides(models.AccessTimeoutAttribute).Len())
}

func TestDiff(t *testing.T) {
	assert.Empty(t, Diff([]byte("a: 1\n"), []byte("a: 1\n")))

	diff := Diff([]byte("a: 1\nb: 2\n"), []byte("a: 1\nb: 3\n"))
	assert.Contains(t, diff, "--- external")
	assert.Contains(t, diff, "+++ resolved")
	assert.Contains(t, diff, "-b: 2")
	assert.Contains(t, diff, "+b: 3")
}
