// Package metadata resolves book-level metadata for a binding run. It layers
// explicit user input over an online lookup service and falls back to values
// embedded in the first track, so resolution always produces a usable result.
package metadata

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bookbind/internal/logging"
	"bookbind/internal/tags"
)

// Book holds the resolved metadata written into the bound audiobook.
type Book struct {
	Title     string
	Authors   []string
	Publisher string
	CoverPath string
}

// Query carries the inputs resolution works from. Folder and FirstTrack come
// from discovery; the rest are user-supplied and may be empty.
type Query struct {
	Title      string
	Author     string
	ISBN       string
	Folder     string
	FirstTrack string
}

// Lookup searches an online catalog and optionally fetches cover art into
// destDir. Implementations return a nil Book when nothing matched.
type Lookup interface {
	Find(ctx context.Context, query Query, destDir string) (*Book, error)
}

// TagReader reads embedded metadata from a track on disk.
type TagReader interface {
	Read(ctx context.Context, path string) (tags.Tags, error)
	ExtractCover(ctx context.Context, path string) (string, error)
}

type fileTagReader struct{}

func (fileTagReader) Read(ctx context.Context, path string) (tags.Tags, error) {
	return tags.Read(ctx, path)
}

func (fileTagReader) ExtractCover(ctx context.Context, path string) (string, error) {
	return tags.ExtractCover(ctx, path)
}

// Resolver produces book metadata from the available sources.
type Resolver struct {
	lookup Lookup
	reader TagReader
	logger *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithLookup wires an online lookup service. A nil lookup disables online
// resolution entirely.
func WithLookup(lookup Lookup) ResolverOption {
	return func(r *Resolver) {
		r.lookup = lookup
	}
}

// WithTagReader overrides the tag reader, primarily for tests.
func WithTagReader(reader TagReader) ResolverOption {
	return func(r *Resolver) {
		if reader != nil {
			r.reader = reader
		}
	}
}

// WithLogger attaches a logger to the resolver.
func WithLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver with the given options.
func NewResolver(opts ...ResolverOption) *Resolver {
	resolver := &Resolver{
		reader: fileTagReader{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(resolver)
	}
	return resolver
}

// Resolve builds the best available metadata for a book. Online lookup and
// tag failures degrade to the next source rather than aborting; the folder
// name guarantees a title even when every richer source comes up empty.
// Cover art fetched by the lookup service lands in destDir.
func (r *Resolver) Resolve(ctx context.Context, query Query, destDir string) Book {
	book := Book{
		Title:   strings.TrimSpace(query.Title),
		Authors: splitAuthors(query.Author),
	}

	var embedded tags.Tags
	if query.FirstTrack != "" && (book.Title == "" || len(book.Authors) == 0) {
		read, err := r.reader.Read(ctx, query.FirstTrack)
		if err != nil {
			r.logger.Debug("could not read embedded tags",
				logging.String(logging.FieldTrack, query.FirstTrack), logging.Error(err))
		} else {
			embedded = read
		}
	}

	if r.lookup != nil {
		found, err := r.lookup.Find(ctx, enrichQuery(query, embedded), destDir)
		switch {
		case err != nil:
			r.logger.Warn("online metadata lookup failed, falling back to embedded tags",
				logging.String("title", query.Title), logging.Error(err))
		case found != nil:
			if book.Title == "" {
				book.Title = found.Title
			}
			if len(book.Authors) == 0 {
				book.Authors = found.Authors
			}
			book.Publisher = found.Publisher
			book.CoverPath = found.CoverPath
		default:
			r.logger.Info("no online metadata match",
				logging.String("title", query.Title))
		}
	}

	if book.Title == "" {
		if embedded.Album != "" {
			book.Title = embedded.Album
		} else {
			book.Title = embedded.Title
		}
	}
	if len(book.Authors) == 0 && embedded.Artist != "" {
		book.Authors = splitAuthors(embedded.Artist)
	}

	if book.CoverPath == "" && query.FirstTrack != "" {
		cover, err := r.reader.ExtractCover(ctx, query.FirstTrack)
		if err != nil {
			r.logger.Debug("could not extract embedded cover",
				logging.String(logging.FieldTrack, query.FirstTrack), logging.Error(err))
		} else {
			book.CoverPath = cover
		}
	}

	if book.Title == "" {
		book.Title = DeriveTitle(query.Folder)
	}
	return book
}

// enrichQuery fills empty lookup terms from the first track's embedded tags.
// Explicit user values always take precedence; the folder name stays the
// last resort inside the lookup itself.
func enrichQuery(query Query, embedded tags.Tags) Query {
	if strings.TrimSpace(query.Title) == "" {
		if embedded.Album != "" {
			query.Title = embedded.Album
		} else {
			query.Title = embedded.Title
		}
	}
	if strings.TrimSpace(query.Author) == "" {
		query.Author = embedded.Artist
	}
	return query
}

// DeriveTitle turns a folder name into a presentable title. Separator
// characters become spaces and each word is title-cased.
func DeriveTitle(folder string) string {
	name := filepath.Base(strings.TrimRight(folder, string(filepath.Separator)))
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "Untitled"
	}
	name = strings.NewReplacer("_", " ", "-", " ", ".", " ").Replace(name)
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "Untitled"
	}
	return cases.Title(language.Und).String(name)
}

// splitAuthors splits a comma or ampersand separated author string into a
// clean slice.
func splitAuthors(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.FieldsFunc(raw, func(ch rune) bool {
		return ch == ',' || ch == '&' || ch == ';'
	})
	authors := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			authors = append(authors, part)
		}
	}
	if len(authors) == 0 {
		return nil
	}
	return authors
}
