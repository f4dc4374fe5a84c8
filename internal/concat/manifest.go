// Package concat emits the concat demuxer manifest for the merge invocation.
//
// The manifest is a pure formatting artifact: it must list the intermediate
// paths in exactly the order the chapter timeline was computed from, since the
// merge tool concatenates audio in manifest order. Reordering here would
// desynchronize chapter marks from audio content.
package concat

import (
	"fmt"
	"os"
	"strings"
)

// Manifest serializes the ordered intermediate paths into concat demuxer
// syntax, one "file '<path>'" line per track.
func Manifest(paths []string) []byte {
	var sb strings.Builder
	for _, path := range paths {
		sb.WriteString("file '")
		sb.WriteString(escapePath(path))
		sb.WriteString("'\n")
	}
	return []byte(sb.String())
}

// WriteManifest writes the serialized manifest to path.
func WriteManifest(path string, inputs []string) error {
	if err := os.WriteFile(path, Manifest(inputs), 0o644); err != nil {
		return fmt.Errorf("write concat manifest: %w", err)
	}
	return nil
}

// escapePath escapes the characters the demuxer's single-quoted syntax
// reserves. Backslashes double, and a quote closes the string, emits an
// escaped quote, and reopens it, so any path round-trips losslessly.
func escapePath(path string) string {
	escaped := strings.ReplaceAll(path, `\`, `\\`)
	return strings.ReplaceAll(escaped, `'`, `'\''`)
}
