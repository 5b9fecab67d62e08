package static

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/relaykit/relay/core/handler"
)

// dirConfig holds configuration for directory serving.
type dirConfig struct {
	root            string
	stripPrefix     string
	notFoundHandler func(w http.ResponseWriter, r *http.Request) error
}

// DirOption configures directory serving behavior.
type DirOption func(*dirConfig)

// WithStripPrefix removes the given prefix from the URL path before serving
// files. Useful when the handler is registered under a route prefix.
func WithStripPrefix(prefix string) DirOption {
	return func(c *dirConfig) {
		c.stripPrefix = prefix
	}
}

// WithNotFound sets a custom handler for missing files, enabling custom
// 404 pages or fallback behavior.
func WithNotFound(h func(w http.ResponseWriter, r *http.Request) error) DirOption {
	return func(c *dirConfig) {
		c.notFoundHandler = h
	}
}

// Dir creates a handler that serves files from a directory. Directory
// listing is disabled. The target is validated when the handler is
// constructed, so a missing or non-directory root fails at registration,
// before any request is served.
func Dir[C handler.Context](root string, opts ...DirOption) handler.HandlerFunc[C] {
	config := &dirConfig{root: filepath.Clean(root)}
	for _, opt := range opts {
		opt(config)
	}

	mustValidate(config.root, true)

	fileServer := http.FileServer(indexOnlyFS{http.Dir(config.root)})
	if config.stripPrefix != "" {
		fileServer = http.StripPrefix(config.stripPrefix, fileServer)
	}

	return func(ctx C) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			// Clean the URL path to prevent directory traversal.
			cleanPath := path.Clean(r.URL.Path)

			if config.notFoundHandler != nil {
				fullPath := filepath.Join(config.root, strings.TrimPrefix(cleanPath, config.stripPrefix))
				if _, err := os.Stat(fullPath); os.IsNotExist(err) {
					return config.notFoundHandler(w, r)
				}
			}

			fileServer.ServeHTTP(w, r)
			return nil
		}
	}
}

// File creates a handler that serves a single file with content type
// detection and range request support. The target is validated when the
// handler is constructed, so a missing file fails at registration.
func File[C handler.Context](filePath string) handler.HandlerFunc[C] {
	cleanPath := filepath.Clean(filePath)
	mustValidate(cleanPath, false)

	return func(ctx C) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			http.ServeFile(w, r, cleanPath)
			return nil
		}
	}
}

// mustValidate checks the serving target at construction time and panics on
// failure, surfacing misconfiguration at startup.
func mustValidate(target string, mustBeDir bool) {
	info, err := os.Stat(target)
	if err != nil {
		if os.IsNotExist(err) {
			panic("static: target does not exist: " + target)
		}
		panic("static: error accessing target: " + err.Error())
	}
	if mustBeDir && !info.IsDir() {
		panic("static: target is not a directory: " + target)
	}
	if !mustBeDir && info.IsDir() {
		panic("static: target is a directory, not a file: " + target)
	}
}

// indexOnlyFS wraps http.FileSystem to disable directory listing.
// Directories resolve only when they contain an index.html file.
type indexOnlyFS struct {
	fs http.FileSystem
}

func (ifs indexOnlyFS) Open(name string) (http.File, error) {
	f, err := ifs.fs.Open(name)
	if err != nil {
		return nil, err
	}

	s, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if s.IsDir() {
		index := strings.TrimSuffix(name, "/") + "/index.html"
		if _, err := ifs.fs.Open(index); err != nil {
			_ = f.Close()
			return nil, fs.ErrNotExist
		}
	}

	return f, nil
}
