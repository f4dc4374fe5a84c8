package chapters

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// GlobalTags carries the whole-book tag lines written ahead of the chapter
// list in the descriptor.
type GlobalTags struct {
	Title     string
	Authors   []string
	Publisher string
}

// Descriptor serializes global tags and chapter entries into the ffmetadata
// format consumed by the merge invocation.
func Descriptor(global *GlobalTags, entries []Entry) []byte {
	var sb strings.Builder
	sb.WriteString(";FFMETADATA1\n")

	if global != nil {
		if global.Title != "" {
			writeTag(&sb, "title", global.Title)
			writeTag(&sb, "album", global.Title)
		}
		if authors := joinAuthors(global.Authors); authors != "" {
			writeTag(&sb, "artist", authors)
			writeTag(&sb, "album_artist", authors)
		}
		if global.Publisher != "" {
			writeTag(&sb, "publisher", global.Publisher)
		}
	}

	for _, entry := range entries {
		sb.WriteString("[CHAPTER]\n")
		sb.WriteString("TIMEBASE=1/1000\n")
		sb.WriteString("START=")
		sb.WriteString(strconv.FormatInt(entry.StartMS, 10))
		sb.WriteByte('\n')
		sb.WriteString("END=")
		sb.WriteString(strconv.FormatInt(entry.EndMS, 10))
		sb.WriteByte('\n')
		writeTag(&sb, "title", entry.Title)
	}

	return []byte(sb.String())
}

// WriteDescriptor writes the serialized descriptor to path.
func WriteDescriptor(path string, global *GlobalTags, entries []Entry) error {
	if err := os.WriteFile(path, Descriptor(global, entries), 0o644); err != nil {
		return fmt.Errorf("write chapter descriptor: %w", err)
	}
	return nil
}

func writeTag(sb *strings.Builder, key, value string) {
	sb.WriteString(key)
	sb.WriteByte('=')
	sb.WriteString(escapeValue(value))
	sb.WriteByte('\n')
}

func joinAuthors(authors []string) string {
	kept := make([]string, 0, len(authors))
	for _, author := range authors {
		if trimmed := strings.TrimSpace(author); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, ", ")
}

// escapeValue escapes the characters the ffmetadata syntax reserves:
// backslash, '=', ';', '#', and newline.
func escapeValue(value string) string {
	var sb strings.Builder
	sb.Grow(len(value))
	for _, r := range value {
		switch r {
		case '\\', '=', ';', '#':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString("\\\n")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
