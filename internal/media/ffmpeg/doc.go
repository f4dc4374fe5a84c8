// Package ffmpeg wraps the ffmpeg command line for the two invocations the
// pipeline needs: re-encoding one input track to the intermediate codec, and
// the final multi-input merge that produces the chaptered audiobook container.
//
// Input order in the merge invocation is load-bearing: the concat manifest is
// input 0 (audio), the chapter descriptor is input 1 (container metadata), and
// the optional cover image is input 2 (attached picture). The stream mapping
// arguments reference inputs by those indexes.
package ffmpeg
