package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type named string

func (n named) String() string { return string(n) }

func TestFindingDefaults(t *testing.T) {
	f := New(InterfaceConflictCode, "pkg.Z").
		WithElement(named("type pkg.FooImpl")).
		WithMarker(named("Stateless")).
		WithComponent("Foo")

	assert.True(t, f.IsFatal())
	assert.Equal(t, KeyInterfaceConflict, f.Key)
	assert.Equal(t, "The interface pkg.Z cannot be both a local and a remote business interface.", f.Message())
	assert.Equal(t, "type pkg.FooImpl: "+f.Message(), f.Error())

	w := New(InapplicableMarkerCode, "Startup", "Singleton", "Stateless", "Foo")
	assert.False(t, w.IsFatal())
	assert.Equal(t, "@Startup only applies to Singleton components; ignored on Stateless component Foo.", w.Message())
}

func TestFindingIndexedArguments(t *testing.T) {
	f := New(ClassMismatchCode, "pkg.Declared", "Foo", "pkg.Found")
	assert.Equal(t, "Component Foo declares class pkg.Declared but its component-defining marker is on pkg.Found.", f.Message())
}

func TestFindingWrapsCause(t *testing.T) {
	cause := fmt.Errorf("boom")
	f := Wrap(InvalidMarkerCode, cause, "@Lock(SHARED)", cause)

	assert.True(t, stderrors.Is(f, cause))
	assert.Equal(t, "Invalid marker @Lock(SHARED): boom", f.Message())
	assert.Equal(t, Fatal, f.WithSeverity(Fatal).Severity)
}

func TestFindingLocalize(t *testing.T) {
	require.NoError(t, SetMessage(language.German, KeyMissingClass, "Klasse %s der Komponente %s fehlt."))

	f := New(MissingClassCode, "pkg.Gone", "Foo")
	assert.Equal(t, "Klasse pkg.Gone der Komponente Foo fehlt.", f.Localize(language.German))
	assert.Equal(t, "Class pkg.Gone of component Foo is not part of the deployment unit.", f.Localize(language.English))
}

func TestFindingsCollection(t *testing.T) {
	findings := NewFindings()
	assert.True(t, findings.IsEmpty())
	assert.Equal(t, "no findings", findings.Error())

	fatal := New(KindMismatchCode, "Singleton", "Stateful", "Foo")
	warn := New(InapplicableMarkerCode, "Lock", "Singleton", "Stateless", "Bar")
	findings.Add(fatal, nil, warn)

	assert.Equal(t, 2, findings.Count())
	assert.Equal(t, []*Finding{fatal}, findings.Fatal())
	assert.Equal(t, []*Finding{warn}, findings.Warnings())
	assert.True(t, findings.HasFatal())
	assert.True(t, findings.HasCode(KindMismatchCode))
	assert.False(t, findings.HasCode(InvalidHomeCode))
	assert.Contains(t, findings.Error(), "multiple findings (2 total)")

	var target *Finding
	require.True(t, stderrors.As(findings, &target))
	assert.Same(t, fatal, target)
}

func TestCodeStrings(t *testing.T) {
	assert.Equal(t, "TooManyErrors", TooManyErrorsCode.String())
	assert.Equal(t, KeyTooManyErrors, TooManyErrorsCode.Key())
	assert.Equal(t, Fatal, TooManyErrorsCode.DefaultSeverity())
	assert.Equal(t, Warning, MissingClassCode.DefaultSeverity())
	assert.Equal(t, "fatal", Fatal.String())
}
