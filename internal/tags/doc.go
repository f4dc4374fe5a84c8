// Package tags reads embedded metadata from input audio tracks.
//
// It wraps the audiometa parser for title/album/artist lookups and embedded
// artwork extraction. Artwork bytes are MIME-sniffed to pick the saved cover
// file's extension; unrecognized image types fall back to a generic one.
package tags
