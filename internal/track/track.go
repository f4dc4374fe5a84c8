// Package track discovers and orders the input audio files of one book.
//
// Discovery sorts lexicographically by filename and that order is the sole
// chapter sequencing authority: every later stage consumes the ordered slice
// produced here rather than re-deriving an order of its own.
package track

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Track is one input audio file, corresponding to exactly one chapter.
type Track struct {
	// Path is the absolute or caller-relative location of the file.
	Path string
	// Ordinal is the 1-based position in the canonical filename order.
	Ordinal int
}

// Discover lists the files in dir whose extension matches ext
// (case-insensitive), sorted lexicographically by filename.
func Discover(dir, ext string) ([]Track, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input folder: %w", err)
	}

	ext = strings.ToLower(strings.TrimSpace(ext))
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) != ext {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	tracks := make([]Track, 0, len(names))
	for i, name := range names {
		tracks = append(tracks, Track{Path: filepath.Join(dir, name), Ordinal: i + 1})
	}
	return tracks, nil
}

// Paths projects the ordered track paths.
func Paths(tracks []Track) []string {
	paths := make([]string, 0, len(tracks))
	for _, tr := range tracks {
		paths = append(paths, tr.Path)
	}
	return paths
}
