package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	opts := Default()

	assert.Equal(t, "jakarta.ejb", opts.ContractNamespace)
	assert.Equal(t, "java.lang.Object", opts.RootClass)
	assert.Equal(t, 100, opts.MaxErrors)
	assert.False(t, opts.AbortOnFatal)
	assert.False(t, opts.Capabilities.WebServices, "capabilities default to unavailable")
	assert.NoError(t, opts.Validate())
}

func TestLoadKeepsDefaults(t *testing.T) {
	doc := `
maxErrors: 5
abortOnFatal: true
capabilities:
  webServices: true
`
	opts, err := Load(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 5, opts.MaxErrors)
	assert.True(t, opts.AbortOnFatal)
	assert.True(t, opts.Capabilities.WebServices)
	assert.Equal(t, "jakarta.ejb.EJBHome", opts.RemoteHomeInterface)
}

func TestLoadEmptyDocument(t *testing.T) {
	opts, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), opts)
}

func TestLoadRejectsInvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "maxErrorz: 3\n"},
		{"negative budget", "maxErrors: -1\n"},
		{"empty root", "rootClass: \"\"\n"},
		{"not yaml", "maxErrors: [\n"},
		{"bad excluded interface", "excludedInterfaces: [\"not a class\"]\n"},
		{"bad namespace", "contractNamespace: jakarta..ejb\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descres.yaml")
	require.NoError(t, os.WriteFile(path, []byte("contractNamespace: javax.ejb\n"), 0o644))

	opts, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "javax.ejb", opts.ContractNamespace)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestIsExcludedInterface(t *testing.T) {
	opts := Default()

	assert.True(t, opts.IsExcludedInterface("java.io.Serializable"))
	assert.True(t, opts.IsExcludedInterface("jakarta.ejb.SessionBean"))
	assert.False(t, opts.IsExcludedInterface("jakarta.ejb.sub.Api"))
	assert.False(t, opts.IsExcludedInterface("pkg.Api"))
}
