package loader

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileSystem abstracts where CoreDSL documents live: local disk, memory,
// a web server or GitHub.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
	ListFiles(dir string) ([]string, error)
	Exists(path string) bool
}

// CompositeFS dispatches to the file system mounted at the longest matching
// prefix.  Protocol prefixes ("https://", "github.com/") can be mounted too.
type CompositeFS struct {
	mu          sync.RWMutex
	filesystems map[string]FileSystem
	fallback    FileSystem
}

func NewCompositeFS() *CompositeFS {
	return &CompositeFS{
		filesystems: make(map[string]FileSystem),
	}
}

func (c *CompositeFS) SetFallback(fs FileSystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = fs
}

func (c *CompositeFS) Mount(prefix string, fs FileSystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filesystems[prefix] = fs
}

func (c *CompositeFS) findFS(path string) FileSystem {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var bestMatch string
	var bestFS FileSystem
	for prefix, fs := range c.filesystems {
		if strings.HasPrefix(path, prefix) && len(prefix) > len(bestMatch) {
			bestMatch = prefix
			bestFS = fs
		}
	}
	if bestFS != nil {
		return bestFS
	}
	return c.fallback
}

func (c *CompositeFS) ReadFile(path string) ([]byte, error) {
	fs := c.findFS(path)
	if fs == nil {
		return nil, fmt.Errorf("no filesystem mounted for path: %s", path)
	}
	return fs.ReadFile(path)
}

func (c *CompositeFS) WriteFile(path string, data []byte) error {
	fs := c.findFS(path)
	if fs == nil {
		return fmt.Errorf("no filesystem mounted for path: %s", path)
	}
	return fs.WriteFile(path, data)
}

func (c *CompositeFS) ListFiles(dir string) ([]string, error) {
	fs := c.findFS(dir)
	if fs == nil {
		return nil, fmt.Errorf("no filesystem mounted for path: %s", dir)
	}
	return fs.ListFiles(dir)
}

func (c *CompositeFS) Exists(path string) bool {
	fs := c.findFS(path)
	return fs != nil && fs.Exists(path)
}

// LocalFS reads documents from disk.  Relative paths are taken relative to
// basePath.
type LocalFS struct {
	basePath string
}

func NewLocalFS(basePath string) *LocalFS {
	return &LocalFS{basePath: basePath}
}

func (l *LocalFS) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(l.basePath, path)
}

func (l *LocalFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(l.resolvePath(path))
}

func (l *LocalFS) WriteFile(path string, data []byte) error {
	fullPath := l.resolvePath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, data, 0644)
}

// ListFiles returns the regular files directly inside dir.
func (l *LocalFS) ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(l.resolvePath(dir))
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func (l *LocalFS) Exists(path string) bool {
	_, err := os.Stat(l.resolvePath(path))
	return err == nil
}

// MemoryFS keeps documents in memory.  Used by tests and the REPL.
type MemoryFS struct {
	mu    sync.RWMutex
	files map[string][]byte
}

func NewMemoryFS() *MemoryFS {
	return &MemoryFS{
		files: make(map[string][]byte),
	}
}

func (m *MemoryFS) ReadFile(path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, exists := m.files[path]
	if !exists {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryFS) WriteFile(path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = append([]byte(nil), data...)
	return nil
}

// ListFiles returns every stored path under dir, sorted.
func (m *MemoryFS) ListFiles(dir string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var files []string
	for path := range m.files {
		if strings.HasPrefix(path, dir) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

func (m *MemoryFS) Exists(path string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.files[path]
	return exists
}

// AddFiles stores several documents at once.
func (m *MemoryFS) AddFiles(files map[string]string) *MemoryFS {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path, content := range files {
		m.files[path] = []byte(content)
	}
	return m
}

// HTTPFileSystem fetches documents over HTTP(S) and caches them for the
// lifetime of the file system.
type HTTPFileSystem struct {
	baseURL string
	client  *http.Client
	cache   sync.Map // url -> []byte
}

func NewHTTPFileSystem(baseURL string) *HTTPFileSystem {
	return &HTTPFileSystem{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (h *HTTPFileSystem) urlFor(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return h.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (h *HTTPFileSystem) ReadFile(path string) ([]byte, error) {
	url := h.urlFor(path)
	if cached, ok := h.cache.Load(url); ok {
		return cached.([]byte), nil
	}
	resp, err := h.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %s", url, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	h.cache.Store(url, data)
	return data, nil
}

func (h *HTTPFileSystem) WriteFile(path string, data []byte) error {
	return fmt.Errorf("HTTP filesystem is read-only")
}

func (h *HTTPFileSystem) ListFiles(dir string) ([]string, error) {
	return nil, fmt.Errorf("directory listing not supported for HTTP filesystem")
}

// Exists issues a HEAD request unless the document is already cached.
func (h *HTTPFileSystem) Exists(path string) bool {
	url := h.urlFor(path)
	if _, ok := h.cache.Load(url); ok {
		return true
	}
	resp, err := h.client.Head(url)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// GitHubFS maps `github.com/owner/repo/path` onto raw.githubusercontent.com.
// A branch can be selected with `github.com/owner/repo@branch/path`, the
// default is master, the branch CoreDSL repositories publish on.
type GitHubFS struct {
	httpFS *HTTPFileSystem
}

func NewGitHubFS() *GitHubFS {
	return &GitHubFS{
		httpFS: NewHTTPFileSystem("https://raw.githubusercontent.com"),
	}
}

func (g *GitHubFS) rawPath(path string) string {
	rest, ok := strings.CutPrefix(path, "github.com/")
	if !ok {
		return path
	}
	parts := strings.SplitN(rest, "/", 3)
	if len(parts) < 3 {
		return path
	}
	repo, branch, found := strings.Cut(parts[1], "@")
	if !found {
		branch = "master"
	}
	return fmt.Sprintf("/%s/%s/%s/%s", parts[0], repo, branch, parts[2])
}

func (g *GitHubFS) ReadFile(path string) ([]byte, error) {
	return g.httpFS.ReadFile(g.rawPath(path))
}

func (g *GitHubFS) WriteFile(path string, data []byte) error {
	return fmt.Errorf("GitHub filesystem is read-only")
}

func (g *GitHubFS) ListFiles(dir string) ([]string, error) {
	return nil, fmt.Errorf("directory listing not supported for GitHub filesystem")
}

func (g *GitHubFS) Exists(path string) bool {
	return g.httpFS.Exists(g.rawPath(path))
}

// DefaultFileSystem mounts remote sources next to the local disk rooted at
// basePath.
func DefaultFileSystem(basePath string) *CompositeFS {
	fs := NewCompositeFS()
	fs.SetFallback(NewLocalFS(basePath))
	fs.Mount("https://", NewHTTPFileSystem(""))
	fs.Mount("http://", NewHTTPFileSystem(""))
	fs.Mount("github.com/", NewGitHubFS())
	return fs
}
