package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookbind/internal/config"
)

func TestLoadDefaultsExpandPathsAndReadEnvKey(t *testing.T) {
	t.Setenv("GOOGLE_BOOKS_API_KEY", "test-key")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStaging := filepath.Join(tempHome, ".local", "share", "bookbind", "staging")
	if cfg.Paths.StagingDir != wantStaging {
		t.Fatalf("unexpected staging dir: got %q want %q", cfg.Paths.StagingDir, wantStaging)
	}
	if cfg.Metadata.Source != "openlibrary" {
		t.Fatalf("unexpected metadata source: %q", cfg.Metadata.Source)
	}
	if cfg.Metadata.GoogleBooksAPIKey != "test-key" {
		t.Fatalf("expected Google Books key from env, got %q", cfg.Metadata.GoogleBooksAPIKey)
	}
	if cfg.Transcode.Extension != ".mp3" {
		t.Fatalf("unexpected transcode extension: %q", cfg.Transcode.Extension)
	}
	if cfg.Transcode.Workers != 0 {
		t.Fatalf("expected zero default worker count, got %d", cfg.Transcode.Workers)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected tool binaries: %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`staging_dir = "` + filepath.Join(dir, "staging") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[tools]",
		`ffmpeg_binary = "/opt/ffmpeg/bin/ffmpeg"`,
		"[transcode]",
		"workers = 3",
		`extension = "FLAC"`,
		"[metadata]",
		`source = "GoogleBooks"`,
		`googlebooks_base_url = "https://example.test/books/"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config read from %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Transcode.Workers != 3 {
		t.Fatalf("unexpected workers: %d", cfg.Transcode.Workers)
	}
	if cfg.Transcode.Extension != ".flac" {
		t.Fatalf("expected normalized extension .flac, got %q", cfg.Transcode.Extension)
	}
	if cfg.Metadata.Source != "googlebooks" {
		t.Fatalf("expected normalized source, got %q", cfg.Metadata.Source)
	}
	if cfg.Metadata.GoogleBooksBaseURL != "https://example.test/books" {
		t.Fatalf("expected trimmed base url, got %q", cfg.Metadata.GoogleBooksBaseURL)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.FFmpegBinary())
	}
}

func TestValidateRejectsUnknownMetadataSource(t *testing.T) {
	cfg := config.Default()
	cfg.Metadata.Source = "audible"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown metadata source")
	}
}

func TestValidateRejectsUnknownLogFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[logging]\nformat = \"xml\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected Load to reject xml log format")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected WriteSample to refuse overwriting an existing file")
	}
}
