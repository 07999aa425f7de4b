package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/toyz/descres/internal/processor"
	"github.com/toyz/descres/internal/utils"
)

type resolveOptions struct {
	*globalOptions
	output string
	diff   bool
	strict bool
}

func newResolveCommand(global *globalOptions) *cobra.Command {
	opts := &resolveOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "resolve <snapshot.yaml>",
		Short: "Resolve a snapshot and print the resolved store",
		Long: `Resolve reads a snapshot, runs one resolution pass and prints the
resolved descriptor store as YAML.

Fatal findings fail the command. With --strict warnings fail it too.`,
		Example: `  descres resolve shop.yaml
  descres resolve shop.yaml --diff
  descres resolve shop.yaml --config engine.yaml --output resolved.yaml
  descres resolve shop.yaml --strict -q`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the resolved store to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.diff, "diff", false, "print a diff of the external and resolved stores instead of the store")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings as well as errors")
	return cmd
}

// progressLogger forwards pass progress only. Findings are printed by the
// FindingReporter.
type progressLogger struct {
	*utils.DiagnosticSystem
}

func (progressLogger) Warn(string, ...interface{})  {}
func (progressLogger) Error(string, ...interface{}) {}

func runResolve(cmd *cobra.Command, opts *resolveOptions, path string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	// stdout carries the resolved store
	diagnostics := opts.diagnostics(errOut, errOut, utils.DiagnosticWarn)
	lang, err := opts.language()
	if err != nil {
		return err
	}
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}

	diagnostics.Verbose("Resolving %s", path)
	res, err := Resolve(path, cfg, processor.WithLogger(progressLogger{diagnostics}))
	if err != nil {
		return err
	}
	result := res.Result

	reporter := NewFindingReporter(errOut, opts.verbose || opts.debug, lang)
	if !opts.quiet || result.Findings.HasFatal() {
		reporter.ReportFindings(result)
	}

	switch {
	case opts.diff:
		fmt.Fprint(out, res.Diff())
	case opts.output != "":
		target, err := utils.CleanPath(opts.output)
		if err != nil {
			return utils.WrapWriteError(opts.output, err)
		}
		if err := os.WriteFile(target, res.Resolved, 0644); err != nil {
			return utils.WrapWriteError(target, err)
		}
		diagnostics.Success("Wrote %s", target)
	default:
		if _, err := out.Write(res.Resolved); err != nil {
			return utils.WrapWriteError("resolved store", err)
		}
	}

	listComponents(diagnostics, res)
	diagnostics.Summary(fmt.Sprintf("Pass %s", result.PassID), map[string]interface{}{
		"components":     len(res.Bundle.Components()),
		"processed":      result.Processed,
		"failed":         result.Failed,
		"skipped":        result.Skipped,
		"not applicable": result.NotApplicable,
		"duration":       result.Duration,
	})

	if result.Abandoned {
		return fmt.Errorf("resolution of bundle %s was abandoned after %d failures", result.Bundle, result.Failed)
	}
	if err := result.Err(); err != nil {
		return fmt.Errorf("bundle %s has %d error(s)", result.Bundle, len(result.Findings.Fatal()))
	}
	if opts.strict && !result.Findings.IsEmpty() {
		return fmt.Errorf("bundle %s has %d warning(s)", result.Bundle, len(result.Findings.Warnings()))
	}
	if !opts.quiet && opts.output != "" {
		reporter.ReportSuccess(result, len(res.Bundle.Components()))
	}
	return nil
}

// listComponents prints the resolved descriptors with their client views
func listComponents(diagnostics *utils.DiagnosticSystem, res *Resolution) {
	diagnostics.Header(fmt.Sprintf("bundle %s", res.Bundle.Name))
	diagnostics.Section("Components")
	diagnostics.Indent()
	defer diagnostics.Unindent()
	for _, d := range res.Bundle.Components() {
		diagnostics.List("%s %s (%s)", d.TypeName(), d.Name, d.Class)
		diagnostics.Indent()
		for _, intf := range d.RemoteInterfaces() {
			diagnostics.List("remote %s", intf)
		}
		for _, intf := range d.LocalInterfaces() {
			diagnostics.List("local %s", intf)
		}
		if d.LocalBean {
			diagnostics.List("no-interface view")
		}
		diagnostics.Unindent()
	}
}
