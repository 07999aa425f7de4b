package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/language"

	"github.com/toyz/descres/internal/errors"
	"github.com/toyz/descres/internal/processor"
)

// FindingReporter prints the findings of a pass for people
type FindingReporter struct {
	out      io.Writer
	verbose  bool
	useColor bool
	lang     language.Tag
}

// NewFindingReporter creates a reporter writing to out
func NewFindingReporter(out io.Writer, verbose bool, lang language.Tag) *FindingReporter {
	return &FindingReporter{
		out:      out,
		verbose:  verbose,
		useColor: !color.NoColor && (out == io.Writer(os.Stdout) || out == io.Writer(os.Stderr)),
		lang:     lang,
	}
}

// ReportFindings prints every finding of a pass, fatal ones first
func (r *FindingReporter) ReportFindings(result *processor.Result) {
	fatal := result.Findings.Fatal()
	warnings := result.Findings.Warnings()

	if len(fatal) > 0 {
		r.header(fmt.Sprintf("%d error(s) in bundle %s", len(fatal), result.Bundle))
		for _, f := range fatal {
			r.reportFinding(f)
		}
	}
	if len(warnings) > 0 {
		r.header(fmt.Sprintf("%d warning(s) in bundle %s", len(warnings), result.Bundle))
		for _, f := range warnings {
			r.reportFinding(f)
		}
	}
}

// reportFinding prints one finding with its context and hints
func (r *FindingReporter) reportFinding(f *errors.Finding) {
	prefix := "! "
	c := color.New(color.FgYellow, color.Bold)
	if f.IsFatal() {
		prefix = "x "
		c = color.New(color.FgRed, color.Bold)
	}
	if r.useColor {
		c.Fprint(r.out, prefix)
	} else {
		fmt.Fprint(r.out, prefix)
	}
	fmt.Fprintf(r.out, "%s\n", f.Localize(r.lang))

	if f.Marker != "" {
		fmt.Fprintf(r.out, "    symbol: @%s\n", f.Marker)
	}
	if f.Element != "" {
		fmt.Fprintf(r.out, "    location: %s\n", f.Element)
	}
	if r.verbose {
		fmt.Fprintf(r.out, "    code: %s\n", f.Code)
		if f.Component != "" {
			fmt.Fprintf(r.out, "    component: %s\n", f.Component)
		}
		r.printCauses(f.Cause)
	}
	for i, hint := range f.Hints {
		fmt.Fprintf(r.out, "    %d. %s\n", i+1, hint)
	}
}

// printCauses prints the error chain under a finding
func (r *FindingReporter) printCauses(err error) {
	level := 1
	for err != nil {
		fmt.Fprintf(r.out, "    cause %d: %s\n", level, err.Error())
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
		level++
	}
}

func (r *FindingReporter) header(title string) {
	fmt.Fprintf(r.out, "\n%s\n%s\n", title, strings.Repeat("-", len(title)))
}

// ReportSuccess prints the pass summary line
func (r *FindingReporter) ReportSuccess(result *processor.Result, components int) {
	line := fmt.Sprintf("Resolved %d component(s) in bundle %s", components, result.Bundle)
	if r.useColor {
		color.New(color.FgGreen).Fprintln(r.out, line)
		return
	}
	fmt.Fprintln(r.out, line)
}
