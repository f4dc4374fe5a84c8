package metadata

import (
	"context"
	"fmt"
	"strings"

	"bookbind/internal/metadata/googlebooks"
	"bookbind/internal/metadata/openlibrary"
)

// OpenLibraryLookup adapts the Open Library client to the Lookup interface.
// It is the only source that can fetch cover art.
type OpenLibraryLookup struct {
	client *openlibrary.Client
}

// NewOpenLibraryLookup wraps an Open Library client.
func NewOpenLibraryLookup(client *openlibrary.Client) *OpenLibraryLookup {
	return &OpenLibraryLookup{client: client}
}

// Find searches Open Library and downloads the matched cover when one exists.
func (l *OpenLibraryLookup) Find(ctx context.Context, query Query, destDir string) (*Book, error) {
	title := searchTitle(query)
	if title == "" {
		return nil, nil
	}
	match, err := l.client.Search(ctx, title, query.Author)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}
	book := &Book{
		Title:     match.Title,
		Authors:   match.Authors,
		Publisher: match.Publisher,
	}
	if match.CoverID != 0 {
		cover, err := l.client.DownloadCover(ctx, match.CoverID, destDir)
		if err != nil {
			return book, fmt.Errorf("cover download: %w", err)
		}
		book.CoverPath = cover
	}
	return book, nil
}

// GoogleBooksLookup adapts the Google Books client to the Lookup interface.
type GoogleBooksLookup struct {
	client *googlebooks.Client
}

// NewGoogleBooksLookup wraps a Google Books client.
func NewGoogleBooksLookup(client *googlebooks.Client) *GoogleBooksLookup {
	return &GoogleBooksLookup{client: client}
}

// Find searches Google Books. The volumes API carries no cover art this
// client uses, so CoverPath is always empty.
func (l *GoogleBooksLookup) Find(ctx context.Context, query Query, _ string) (*Book, error) {
	title := searchTitle(query)
	if title == "" && strings.TrimSpace(query.ISBN) == "" {
		return nil, nil
	}
	match, err := l.client.Search(ctx, title, query.Author, query.ISBN)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}
	return &Book{
		Title:     match.Title,
		Authors:   match.Authors,
		Publisher: match.Publisher,
	}, nil
}

// searchTitle picks the title term for online lookup, falling back to the
// folder name when the user gave none.
func searchTitle(query Query) string {
	if title := strings.TrimSpace(query.Title); title != "" {
		return title
	}
	return folderTitle(query.Folder)
}

func folderTitle(folder string) string {
	if strings.TrimSpace(folder) == "" {
		return ""
	}
	title := DeriveTitle(folder)
	if title == "Untitled" {
		return ""
	}
	return title
}
