package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/descres/internal/utils"
)

// Capabilities are optional platform capabilities the engine may probe.
// Every capability defaults to unavailable.
type Capabilities struct {
	// WebServices enables the web service marker check in interface
	// classification
	WebServices bool `yaml:"webServices"`
}

// Options holds the engine configuration
type Options struct {
	// ContractNamespace is the package of the platform's own component
	// contract; its interfaces never become business interfaces
	ContractNamespace string `yaml:"contractNamespace"`

	// ExcludedInterfaces are never classified from the implements clause
	ExcludedInterfaces []string `yaml:"excludedInterfaces"`

	// RootClass ends every hierarchy walk and is never a no-interface view class
	RootClass string `yaml:"rootClass"`

	RemoteHomeInterface      string `yaml:"remoteHomeInterface"`
	LocalHomeInterface       string `yaml:"localHomeInterface"`
	RemoteComponentInterface string `yaml:"remoteComponentInterface"`
	LocalComponentInterface  string `yaml:"localComponentInterface"`
	TimedObjectInterface     string `yaml:"timedObjectInterface"`
	TimerType                string `yaml:"timerType"`

	// MaxErrors is the number of failed occurrences after which a pass is
	// abandoned
	MaxErrors int `yaml:"maxErrors"`

	// AbortOnFatal stops the pass at the first fatal finding
	AbortOnFatal bool `yaml:"abortOnFatal"`

	Capabilities Capabilities `yaml:"capabilities"`
}

// Default returns the default engine configuration
func Default() Options {
	return Options{
		ContractNamespace:        "jakarta.ejb",
		ExcludedInterfaces:       []string{"java.io.Serializable", "java.io.Externalizable"},
		RootClass:                "java.lang.Object",
		RemoteHomeInterface:      "jakarta.ejb.EJBHome",
		LocalHomeInterface:       "jakarta.ejb.EJBLocalHome",
		RemoteComponentInterface: "jakarta.ejb.EJBObject",
		LocalComponentInterface:  "jakarta.ejb.EJBLocalObject",
		TimedObjectInterface:     "jakarta.ejb.TimedObject",
		TimerType:                "jakarta.ejb.Timer",
		MaxErrors:                100,
	}
}

// Load reads a YAML configuration. Keys missing from the document keep
// their defaults.
func Load(r io.Reader) (Options, error) {
	opts := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&opts); err != nil {
		if err == io.EOF {
			return opts, nil
		}
		return Options{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// LoadFile reads a YAML configuration file
func LoadFile(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to open configuration '%s': %w", path, err)
	}
	defer f.Close()

	opts, err := Load(f)
	if err != nil {
		return Options{}, fmt.Errorf("configuration '%s': %w", path, err)
	}
	return opts, nil
}

// Validate checks the configuration for values the engine cannot use
func (o Options) Validate() error {
	var problems utils.Problems
	required := utils.NewValidatorChain(utils.NotEmpty(""), utils.IsQualifiedName(""))
	for _, field := range []struct {
		name  string
		value string
	}{
		{"rootClass", o.RootClass},
		{"remoteHomeInterface", o.RemoteHomeInterface},
		{"localHomeInterface", o.LocalHomeInterface},
		{"remoteComponentInterface", o.RemoteComponentInterface},
		{"localComponentInterface", o.LocalComponentInterface},
	} {
		if err := required.Validate(field.value); err != nil {
			problems.Check(fmt.Errorf("%s: %w", field.name, err))
		}
	}
	problems.Check(utils.Optional(utils.IsQualifiedName("contractNamespace"))(o.ContractNamespace))
	problems.Check(utils.Optional(utils.IsQualifiedName("timedObjectInterface"))(o.TimedObjectInterface))
	problems.Check(utils.Optional(utils.IsQualifiedName("timerType"))(o.TimerType))
	problems.Check(utils.ValidateEach("excludedInterfaces", utils.IsQualifiedName(""))(o.ExcludedInterfaces))
	problems.Check(utils.AtLeast("maxErrors", 0)(o.MaxErrors))
	return problems.Err("invalid configuration")
}

// IsExcludedInterface reports whether an implemented interface is skipped
// by implements-clause classification
func (o Options) IsExcludedInterface(name string) bool {
	for _, excluded := range o.ExcludedInterfaces {
		if name == excluded {
			return true
		}
	}
	if o.ContractNamespace == "" {
		return false
	}
	i := strings.LastIndex(name, ".")
	return i >= 0 && name[:i] == o.ContractNamespace
}
