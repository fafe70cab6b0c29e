package loader

import (
	"log/slog"
	"os"
)

// LoadFilesAndValidate loads each source file with its imports, validates
// the root document and prints its problems.  Returns false if anything
// failed to load or validate.
func (l *Loader) LoadFilesAndValidate(opts Options, sourceFiles ...string) (success bool) {
	success = true
	for _, f := range sourceFiles {
		result, err := l.LoadFile(f)
		if err != nil {
			slog.Error("Error loading file", "file", f, "error", err)
			success = false
			continue
		}
		if len(result.Errors) > 0 {
			loadErrs := &ErrorCollector{Errors: result.Errors}
			loadErrs.PrintErrors()
			for _, d := range loadErrs.Diagnostics() {
				if d.Severity == SeverityError {
					success = false
				}
			}
		}
		doc := result.Root
		NewValidator(result.Workspace, opts).Validate(doc)
		if doc.HasErrors() {
			success = false
			slog.Error("Error validating file", "file", doc.URI, "errors", len(doc.Errors))
			doc.FprintErrors(os.Stderr)
		} else {
			slog.Info("File validated successfully", "file", doc.URI, "at", doc.LastValidated)
		}
	}
	return
}
