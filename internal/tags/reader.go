package tags

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/simonhull/audiometa"
)

// Tags carries the per-track fields the pipeline reads.
type Tags struct {
	Title  string
	Album  string
	Artist string
}

// Read returns the embedded title/album/artist tags of the file at path.
// Files without a parsable tag container yield an error the caller is
// expected to treat as a degraded result, not a failure.
func Read(ctx context.Context, path string) (Tags, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return Tags{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	return Tags{
		Title:  strings.TrimSpace(file.Tags.Title),
		Album:  strings.TrimSpace(file.Tags.Album),
		Artist: strings.TrimSpace(file.Tags.Artist),
	}, nil
}

// ExtractCover pulls the first embedded artwork frame out of the file at path
// and writes it beside the track as <base>_cover<ext>, returning the written
// path. It returns "" with a nil error when the track carries no artwork.
func ExtractCover(ctx context.Context, path string) (string, error) {
	file, err := audiometa.OpenContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	artworks, err := file.ExtractArtwork()
	if err != nil {
		return "", fmt.Errorf("extract artwork from %s: %w", path, err)
	}
	if len(artworks) == 0 {
		return "", nil
	}

	// The first frame is conventionally the front cover.
	data := artworks[0].Data
	coverPath := coverPathFor(path, data)
	if err := os.WriteFile(coverPath, data, 0o644); err != nil {
		return "", fmt.Errorf("write cover %s: %w", coverPath, err)
	}
	return coverPath, nil
}

func coverPathFor(trackPath string, data []byte) string {
	base := filepath.Base(trackPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(trackPath), stem+"_cover"+coverExtension(data))
}

// coverExtension derives the cover file extension from the artwork bytes.
// Unknown image types get a generic extension rather than a wrong one.
func coverExtension(data []byte) string {
	switch mimetype.Detect(data).Extension() {
	case ".jpg":
		return ".jpg"
	case ".png":
		return ".png"
	case ".gif":
		return ".gif"
	default:
		return ".cover"
	}
}
