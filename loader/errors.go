package loader

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/panyam/coredsl/decl"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Diagnostic is a positioned problem found while loading or validating a
// document.  It is also an error so it can flow through error slices.
type Diagnostic struct {
	Severity Severity
	Pos      decl.Location
	End      decl.Location
	Source   string // document URI
	Message  string
}

func (d *Diagnostic) Error() string {
	if d.Source != "" {
		return fmt.Sprintf("%s:%s: %s: %s", d.Source, d.Pos.LineColStr(), d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Pos.LineColStr(), d.Severity, d.Message)
}

// Errorf builds an error Diagnostic spanning node.
func Errorf(source string, node decl.Node, format string, args ...any) *Diagnostic {
	out := &Diagnostic{Severity: SeverityError, Source: source, Message: fmt.Sprintf(format, args...)}
	if node != nil {
		out.Pos, out.End = node.Pos(), node.End()
	}
	return out
}

type ErrorCollector struct {
	Errors []error

	// Max errors before we panic
	// 0 => no limit
	MaxErrors int
}

func (f *ErrorCollector) HasErrors() bool {
	return len(f.Errors) > 0
}

// Diagnostics returns the collected errors that are Diagnostics, sorted by
// position.
func (f *ErrorCollector) Diagnostics() (out []*Diagnostic) {
	for _, err := range f.Errors {
		if d, ok := err.(*Diagnostic); ok {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pos.Pos < out[j].Pos.Pos })
	return
}

func (f *ErrorCollector) PrintErrors() {
	f.FprintErrors(os.Stderr)
}

// FprintErrors writes one line per error, coloring the severity of
// diagnostics.
func (f *ErrorCollector) FprintErrors(w io.Writer) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	for _, err := range f.Errors {
		d, ok := err.(*Diagnostic)
		if !ok {
			fmt.Fprintln(w, red("error:"), err)
			continue
		}
		sev := d.Severity.String() + ":"
		if d.Severity == SeverityError {
			sev = red(sev)
		} else {
			sev = yellow(sev)
		}
		fmt.Fprintf(w, "%s:%s: %s %s\n", d.Source, d.Pos.LineColStr(), sev, d.Message)
	}
}

func (f *ErrorCollector) AddErrors(errs ...error) {
	for _, err := range errs {
		f.Errors = append(f.Errors, err)
		if f.MaxErrors > 0 && len(f.Errors) >= f.MaxErrors {
			panic(err)
		}
	}
}

// Errorf records an error diagnostic at node and returns false so checks can
// `return c.Errorf(...)`.
func (f *ErrorCollector) Errorf(source string, node decl.Node, format string, args ...any) bool {
	f.AddErrors(Errorf(source, node, format, args...))
	return false
}
