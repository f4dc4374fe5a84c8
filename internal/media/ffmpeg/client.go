package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Client defines the ffmpeg operations the pipeline depends on.
type Client interface {
	Transcode(ctx context.Context, inputPath, outputPath, codec string) error
	Merge(ctx context.Context, req MergeRequest) error
}

// MergeRequest describes the final multi-input merge invocation.
type MergeRequest struct {
	// ConcatManifest is the concat demuxer list file (input 0).
	ConcatManifest string
	// ChapterFile is the ffmetadata chapter descriptor (input 1).
	ChapterFile string
	// CoverPath is an optional image attached as a front cover (input 2).
	CoverPath string
	// OutputPath is the audiobook container to produce.
	OutputPath string
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Transcode re-encodes one input track into the intermediate codec, dropping
// any embedded video or attached-picture stream. Sample rate and channel
// layout are left to ffmpeg defaults, which preserve the source values.
func (c *CLI) Transcode(ctx context.Context, inputPath, outputPath, codec string) error {
	if strings.TrimSpace(inputPath) == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}
	if strings.TrimSpace(codec) == "" {
		codec = "aac"
	}
	return c.run(ctx, TranscodeArgs(inputPath, outputPath, codec))
}

// Merge runs the final merge invocation described by req.
func (c *CLI) Merge(ctx context.Context, req MergeRequest) error {
	args, err := MergeArgs(req)
	if err != nil {
		return err
	}
	return c.run(ctx, args)
}

func (c *CLI) run(ctx context.Context, args []string) error {
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", c.binary, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// TranscodeArgs builds the argument list for a single-track re-encode.
func TranscodeArgs(inputPath, outputPath, codec string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-i", inputPath,
		"-vn",
		"-c:a", codec,
		outputPath,
	}
}

// MergeArgs builds the argument list for the final merge. Input order fixes
// the stream mapping: audio comes from input 0, container metadata from
// input 1, and the cover (when present) is attached from input 2.
func MergeArgs(req MergeRequest) ([]string, error) {
	if strings.TrimSpace(req.ConcatManifest) == "" {
		return nil, errors.New("concat manifest required")
	}
	if strings.TrimSpace(req.ChapterFile) == "" {
		return nil, errors.New("chapter file required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return nil, errors.New("output path required")
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", req.ConcatManifest,
		"-i", req.ChapterFile,
	}

	cover := coverUsable(req.CoverPath)
	if cover {
		args = append(args, "-i", req.CoverPath)
	}

	args = append(args,
		"-map_metadata", "1",
		"-map", "0:a",
		"-c", "copy",
		"-movflags", "+faststart",
	)

	if cover {
		args = append(args,
			"-map", "2",
			"-c:v", "mjpeg",
			"-metadata:s:v", "title=Cover (front)",
			"-metadata:s:v", "comment=Cover (front)",
			"-disposition:v:0", "attached_pic",
		)
	}

	return append(args, req.OutputPath), nil
}

func coverUsable(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

var _ Client = (*CLI)(nil)
