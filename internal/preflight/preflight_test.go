package preflight_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bookbind/internal/preflight"
	"bookbind/internal/testsupport"
)

func TestCheckBinaryResolvesStub(t *testing.T) {
	testsupport.NewConfig(t, testsupport.WithStubbedBinaries("ffmpeg"))

	result := preflight.CheckBinary("FFmpeg", "ffmpeg", "required")
	if !result.Passed {
		t.Fatalf("check failed: %s", result.Detail)
	}
}

func TestCheckBinaryMissing(t *testing.T) {
	result := preflight.CheckBinary("FFmpeg", "definitely-not-a-real-binary", "required")
	if result.Passed {
		t.Fatal("expected failure for missing binary")
	}
	if !strings.Contains(result.Detail, "not found") {
		t.Errorf("detail = %q", result.Detail)
	}
}

func TestCheckBinaryUnconfigured(t *testing.T) {
	result := preflight.CheckBinary("FFmpeg", "  ", "required")
	if result.Passed {
		t.Fatal("expected failure for empty command")
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := preflight.CheckDirectoryAccess("Staging directory", dir)
	if !result.Passed {
		t.Fatalf("check failed: %s", result.Detail)
	}

	missing := preflight.CheckDirectoryAccess("Staging directory", filepath.Join(dir, "nope"))
	if missing.Passed {
		t.Fatal("expected failure for missing directory")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	notDir := preflight.CheckDirectoryAccess("Staging directory", file)
	if notDir.Passed {
		t.Fatal("expected failure for non-directory")
	}
}

func TestRunAllPassesWithStubbedEnvironment(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	results := preflight.RunAll(cfg)
	if len(results) != 4 {
		t.Fatalf("len = %d, want 4", len(results))
	}
	if !preflight.Ok(results) {
		for _, result := range results {
			if !result.Passed {
				t.Errorf("%s failed: %s", result.Name, result.Detail)
			}
		}
	}
}

func TestOkIgnoresOptionalFailures(t *testing.T) {
	results := []preflight.Result{
		{Name: "a", Passed: true},
		{Name: "b", Passed: false, Optional: true},
	}
	if !preflight.Ok(results) {
		t.Fatal("optional failure should not fail preflight")
	}
	results = append(results, preflight.Result{Name: "c"})
	if preflight.Ok(results) {
		t.Fatal("required failure should fail preflight")
	}
}
