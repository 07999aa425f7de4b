// Package cli implements the descres command tree
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"

	"github.com/toyz/descres/internal/config"
	"github.com/toyz/descres/internal/utils"
)

// Version is the tool version reported by --version
var Version = "0.1.0"

// globalOptions are the persistent flags shared by every command
type globalOptions struct {
	configPath string
	verbose    bool
	debug      bool
	quiet      bool
	lang       string
}

// loadConfig reads --config, or returns the defaults without one
func (o *globalOptions) loadConfig() (config.Options, error) {
	if o.configPath == "" {
		return config.Default(), nil
	}
	path, err := utils.ExistingFile(o.configPath)
	if err != nil {
		return config.Options{}, utils.WrapLoadError("configuration", err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return config.Options{}, utils.WrapLoadError("configuration", err)
	}
	return cfg, nil
}

// diagnostics builds the diagnostic system for the verbosity flags; base
// is the level without any of them
func (o *globalOptions) diagnostics(out, errOut io.Writer, base utils.DiagnosticLevel) *utils.DiagnosticSystem {
	var d *utils.DiagnosticSystem
	switch {
	case o.quiet:
		d = utils.NewQuietDiagnostics()
	case o.debug:
		d = utils.NewDiagnosticSystem(utils.DiagnosticDebug)
	case o.verbose:
		d = utils.NewVerboseDiagnostics()
	default:
		d = utils.NewDiagnosticSystem(base)
	}
	d.SetOutput(out, errOut)
	return d
}

// language parses --lang for finding messages
func (o *globalOptions) language() (language.Tag, error) {
	if o.lang == "" {
		return language.English, nil
	}
	tag, err := language.Parse(o.lang)
	if err != nil {
		return language.Und, fmt.Errorf("invalid --lang %q: %w", o.lang, err)
	}
	return tag, nil
}

// NewRootCommand builds the descres command tree
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "descres",
		Short: "Component descriptor resolution",
		Long: `descres resolves the component descriptors of a deployment unit.

It reads a snapshot holding the external deployment document and the
marked-up class view, overlays the inline markers onto the declared
components and reports what it found.

Commands:
  resolve   Resolve a snapshot and print the resolved store
  markers   List the markers the resolver understands
  serve     Serve a resolved snapshot over HTTP`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "engine configuration file (YAML)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug output")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "only show errors")
	flags.StringVar(&opts.lang, "lang", "", "language of finding messages (BCP 47 tag)")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.AddCommand(newResolveCommand(opts))
	root.AddCommand(newMarkersCommand())
	root.AddCommand(newServeCommand(opts))
	return root
}

// Execute runs the command tree
func Execute() error {
	return NewRootCommand().Execute()
}
