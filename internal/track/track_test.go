package track_test

import (
	"os"
	"path/filepath"
	"testing"

	"bookbind/internal/track"
)

func TestDiscoverSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"03.mp3", "01.mp3", "02.MP3", "notes.txt", "10.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.mp3"), 0o755); err != nil {
		t.Fatal(err)
	}

	tracks, err := track.Discover(dir, ".mp3")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	wantNames := []string{"01.mp3", "02.MP3", "03.mp3", "10.mp3"}
	if len(tracks) != len(wantNames) {
		t.Fatalf("expected %d tracks, got %d", len(wantNames), len(tracks))
	}
	for i, tr := range tracks {
		if filepath.Base(tr.Path) != wantNames[i] {
			t.Fatalf("position %d: got %q want %q", i, filepath.Base(tr.Path), wantNames[i])
		}
		if tr.Ordinal != i+1 {
			t.Fatalf("position %d: ordinal %d", i, tr.Ordinal)
		}
	}
}

func TestDiscoverEmptyFolder(t *testing.T) {
	tracks, err := track.Discover(t.TempDir(), ".mp3")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(tracks) != 0 {
		t.Fatalf("expected no tracks, got %d", len(tracks))
	}
}

func TestDiscoverMissingFolder(t *testing.T) {
	if _, err := track.Discover(filepath.Join(t.TempDir(), "absent"), ".mp3"); err == nil {
		t.Fatal("expected error for missing folder")
	}
}
