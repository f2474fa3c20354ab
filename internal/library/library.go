// Package library is the file source for the media directory: it lists the
// audio files a feed build should consider and resolves individual download
// requests to safe paths. Every call reads the directory fresh; nothing is
// cached between requests.
package library

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const audioExtension = ".mp3"

// Library exposes the configured media root.
type Library struct {
	root   string
	logger *slog.Logger
}

func New(root string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		logger.Warn("unable to resolve absolute media root", "root", root, "error", err)
		abs = filepath.Clean(root)
	}
	return &Library{root: abs, logger: logger}
}

// Root returns the absolute media root path.
func (l *Library) Root() string {
	return l.root
}

// List returns the full paths of the regular .mp3 files directly under the
// media root, sorted case-insensitively by filename so output stays
// deterministic between runs. A missing or unreadable directory yields an
// empty list rather than an error.
func (l *Library) List() []string {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		l.logger.Warn("unable to list media directory", "root", l.root, "error", err)
		return nil
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), audioExtension) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}

	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(l.root, name)
	}
	return paths
}

// Resolve validates a requested filename and returns its path under the
// media root. It refuses blank names, non-mp3 names, anything that escapes
// the root, and anything that is not an existing regular file.
func (l *Library) Resolve(filename string) (string, bool) {
	name := strings.TrimSpace(filename)
	if name == "" || !strings.HasSuffix(strings.ToLower(name), audioExtension) {
		return "", false
	}

	resolved, err := filepath.Abs(filepath.Join(l.root, name))
	if err != nil {
		return "", false
	}
	if !withinRoot(l.root, resolved) {
		return "", false
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return resolved, true
}

func withinRoot(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}
