package tags

import (
	"path/filepath"
	"testing"
)

var (
	pngBytes  = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}
	jpegBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}
	gifBytes  = []byte("GIF89a\x01\x00\x01\x00")
)

func TestCoverExtension(t *testing.T) {
	cases := []struct {
		name string
		data []byte
		want string
	}{
		{"png", pngBytes, ".png"},
		{"jpeg", jpegBytes, ".jpg"},
		{"gif", gifBytes, ".gif"},
		{"unknown", []byte("not an image"), ".cover"},
		{"empty", nil, ".cover"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := coverExtension(tc.data); got != tc.want {
				t.Fatalf("coverExtension(%s) = %q, want %q", tc.name, got, tc.want)
			}
		})
	}
}

func TestCoverPathForWritesBesideTrack(t *testing.T) {
	got := coverPathFor(filepath.Join("/books", "dune", "01 - intro.mp3"), pngBytes)
	want := filepath.Join("/books", "dune", "01 - intro_cover.png")
	if got != want {
		t.Fatalf("coverPathFor = %q, want %q", got, want)
	}
}
