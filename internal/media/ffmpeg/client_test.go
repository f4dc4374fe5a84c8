package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/ffmpeg"))
	if cli.binary != "/opt/ffmpeg" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestTranscodeRequiresPaths(t *testing.T) {
	cli := NewCLI()
	if err := cli.Transcode(context.Background(), "", "/tmp/out.m4a", "aac"); err == nil {
		t.Fatal("expected error when input path is empty")
	}
	if err := cli.Transcode(context.Background(), "/tmp/in.mp3", "", "aac"); err == nil {
		t.Fatal("expected error when output path is empty")
	}
}

func TestTranscodeArgsDropVideoStreams(t *testing.T) {
	args := TranscodeArgs("in.mp3", "out.m4a", "aac")
	if !slices.Contains(args, "-vn") {
		t.Fatalf("expected -vn in transcode args: %v", args)
	}
	if args[len(args)-1] != "out.m4a" {
		t.Fatalf("expected output path last, got %v", args)
	}
	idx := slices.Index(args, "-c:a")
	if idx < 0 || args[idx+1] != "aac" {
		t.Fatalf("expected audio codec argument, got %v", args)
	}
}

func TestMergeArgsWithoutCover(t *testing.T) {
	args, err := MergeArgs(MergeRequest{
		ConcatManifest: "list.txt",
		ChapterFile:    "chapters.ffmetadata",
		OutputPath:     "book.m4b",
	})
	if err != nil {
		t.Fatalf("MergeArgs: %v", err)
	}

	manifestIdx := slices.Index(args, "list.txt")
	chapterIdx := slices.Index(args, "chapters.ffmetadata")
	if manifestIdx < 0 || chapterIdx < 0 || manifestIdx > chapterIdx {
		t.Fatalf("expected manifest before chapter file: %v", args)
	}
	mapIdx := slices.Index(args, "-map_metadata")
	if mapIdx < 0 || args[mapIdx+1] != "1" {
		t.Fatalf("expected metadata mapped from input 1: %v", args)
	}
	if slices.Contains(args, "attached_pic") {
		t.Fatalf("cover mapping must be absent without a cover: %v", args)
	}
	if args[len(args)-1] != "book.m4b" {
		t.Fatalf("expected output path last, got %v", args)
	}
}

func TestMergeArgsWithCover(t *testing.T) {
	dir := t.TempDir()
	cover := filepath.Join(dir, "cover.jpg")
	if err := os.WriteFile(cover, []byte{0xff, 0xd8}, 0o644); err != nil {
		t.Fatal(err)
	}

	args, err := MergeArgs(MergeRequest{
		ConcatManifest: "list.txt",
		ChapterFile:    "chapters.ffmetadata",
		CoverPath:      cover,
		OutputPath:     "book.m4b",
	})
	if err != nil {
		t.Fatalf("MergeArgs: %v", err)
	}

	coverIdx := slices.Index(args, cover)
	chapterIdx := slices.Index(args, "chapters.ffmetadata")
	if coverIdx < 0 || coverIdx < chapterIdx {
		t.Fatalf("expected cover declared as third input: %v", args)
	}
	for _, want := range []string{"-disposition:v:0", "attached_pic", "title=Cover (front)"} {
		if !slices.Contains(args, want) {
			t.Fatalf("expected %q in merge args: %v", want, args)
		}
	}
	mappedCover := false
	for i, arg := range args[:len(args)-1] {
		if arg == "-map" && args[i+1] == "2" {
			mappedCover = true
		}
	}
	if !mappedCover {
		t.Fatalf("expected cover mapped from input 2: %v", args)
	}
}

func TestMergeArgsSkipsMissingCoverFile(t *testing.T) {
	args, err := MergeArgs(MergeRequest{
		ConcatManifest: "list.txt",
		ChapterFile:    "chapters.ffmetadata",
		CoverPath:      filepath.Join(t.TempDir(), "absent.jpg"),
		OutputPath:     "book.m4b",
	})
	if err != nil {
		t.Fatalf("MergeArgs: %v", err)
	}
	if slices.Contains(args, "attached_pic") {
		t.Fatalf("expected missing cover to be skipped: %v", args)
	}
}

func TestCLIRunCapturesArguments(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		return exec.CommandContext(ctx, "true")
	}
	t.Cleanup(func() { commandContext = original })

	cli := NewCLI()
	if err := cli.Transcode(context.Background(), "in.mp3", "out.m4a", ""); err != nil {
		t.Fatalf("Transcode: %v", err)
	}
	if !slices.Contains(capturedArgs, "in.mp3") {
		t.Fatalf("expected input in args: %v", capturedArgs)
	}
	idx := slices.Index(capturedArgs, "-c:a")
	if idx < 0 || capturedArgs[idx+1] != "aac" {
		t.Fatalf("expected default codec, got %v", capturedArgs)
	}
}
