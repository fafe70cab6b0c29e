package loader

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// DocumentSuffix is the file extension of CoreDSL documents.  Imports may
// leave it out.
const DocumentSuffix = ".core_desc"

// FileSystemResolver resolves imports against a FileSystem.  URLs and
// github.com paths are taken as they are, absolute paths are cleaned and
// anything else is relative to the importing document.  When a path cannot
// be found next to its importer, each search path is tried in order.
type FileSystemResolver struct {
	FS          FileSystem
	SearchPaths []string
}

func NewFileSystemResolver(fs FileSystem, searchPaths ...string) *FileSystemResolver {
	return &FileSystemResolver{FS: fs, SearchPaths: searchPaths}
}

func isRemote(p string) bool {
	return strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") || strings.HasPrefix(p, "github.com/")
}

// WithSuffix appends DocumentSuffix unless p already ends with it.
func WithSuffix(p string) string {
	if strings.HasSuffix(p, DocumentSuffix) {
		return p
	}
	return p + DocumentSuffix
}

// Candidates lists the canonical paths importPath may refer to, most
// specific first.  Root documents (no importer) are taken verbatim and
// never searched for.
func (r *FileSystemResolver) Candidates(importerPath, importPath string) (out []string) {
	if importerPath != "" {
		importPath = WithSuffix(importPath)
	}
	switch {
	case isRemote(importPath):
		return []string{importPath}
	case filepath.IsAbs(importPath):
		return []string{filepath.Clean(importPath)}
	}
	if importerPath == "" {
		return []string{filepath.Clean(importPath)}
	}
	if isRemote(importerPath) {
		// keep the scheme's double slash intact
		idx := strings.LastIndex(importerPath, "/")
		out = append(out, importerPath[:idx+1]+path.Clean(importPath))
	} else {
		out = append(out, filepath.Join(filepath.Dir(importerPath), importPath))
	}
	for _, sp := range r.SearchPaths {
		out = append(out, filepath.Join(sp, importPath))
	}
	return
}

func (r *FileSystemResolver) Resolve(importerPath, importPath string) (io.ReadCloser, string, error) {
	candidates := r.Candidates(importerPath, importPath)
	var lastErr error
	for _, candidate := range candidates {
		if !isRemote(candidate) && !r.FS.Exists(candidate) {
			continue
		}
		data, err := r.FS.ReadFile(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		return io.NopCloser(bytes.NewReader(data)), candidate, nil
	}
	if lastErr != nil {
		return nil, "", fmt.Errorf("could not read '%s': %w", importPath, lastErr)
	}
	return nil, "", fmt.Errorf("file not found: %s (tried %s)", importPath, strings.Join(candidates, ", "))
}
