// Package catalog loads the list of prize images a draw can pick from.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is a single prize asset and the points it is worth.
type Entry struct {
	Path  string
	Value int64
}

// values is the closed table of known prize file names.
var values = map[string]int64{
	"YurCoin0.png":    0,
	"YurCoin1.png":    1,
	"YurCoin10.png":   10,
	"YurCoin1000.png": 1000,
}

var imageExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
}

// ValueOf returns the points for an asset, 0 for unknown file names.
func ValueOf(path string) int64 {
	return values[filepath.Base(path)]
}

// Catalog reads the manifest on every Load so edits apply without a restart.
type Catalog struct {
	baseDir      string
	manifestPath string
}

// New creates a catalog rooted at baseDir with the given manifest file name.
func New(baseDir, manifestName string) *Catalog {
	return &Catalog{
		baseDir:      baseDir,
		manifestPath: filepath.Join(baseDir, manifestName),
	}
}

// ManifestPath returns the location of the manifest file.
func (c *Catalog) ManifestPath() string {
	return c.manifestPath
}

// Load returns the manifest entries in file order. A missing or unreadable
// manifest yields no entries.
func (c *Catalog) Load() []Entry {
	data, err := os.ReadFile(c.manifestPath)
	if err != nil {
		return nil
	}

	var entries []Entry
	for _, line := range parseManifest(string(data)) {
		path := line
		if !filepath.IsAbs(path) {
			path = filepath.Join(c.baseDir, path)
		}
		entries = append(entries, Entry{Path: path, Value: ValueOf(path)})
	}
	return entries
}

// Bootstrap writes a fresh manifest from the images in the base directory
// when the current manifest has no usable lines. It returns the number of
// names written.
func (c *Catalog) Bootstrap() (int, error) {
	if data, err := os.ReadFile(c.manifestPath); err == nil && len(parseManifest(string(data))) > 0 {
		return 0, nil
	}

	dirEntries, err := os.ReadDir(c.baseDir)
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s: %w", c.baseDir, err)
	}

	var names []string
	for _, de := range dirEntries {
		if !isImage(de.Name()) {
			continue
		}
		// follow symlinks; only regular files count
		info, err := os.Stat(filepath.Join(c.baseDir, de.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, de.Name())
	}
	if len(names) == 0 {
		return 0, nil
	}

	sort.Strings(names)
	if err := os.WriteFile(c.manifestPath, []byte(strings.Join(names, "\n")), 0o644); err != nil {
		return 0, fmt.Errorf("failed to write manifest: %w", err)
	}
	return len(names), nil
}

func parseManifest(contents string) []string {
	var lines []string
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func isImage(name string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return imageExtensions[strings.ToLower(ext)]
}
