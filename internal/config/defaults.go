package config

const (
	defaultStagingDir         = "~/.local/share/bookbind/staging"
	defaultLogDir             = "~/.local/share/bookbind/logs"
	defaultTranscodeExtension = ".mp3"
	defaultTranscodeCodec     = "aac"
	defaultMetadataSource     = "openlibrary"
	defaultOpenLibraryBaseURL = "https://openlibrary.org"
	defaultCoversBaseURL      = "https://covers.openlibrary.org"
	defaultGoogleBooksBaseURL = "https://www.googleapis.com/books/v1"
	defaultRequestTimeout     = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Accepted values for metadata.source.
const (
	MetadataSourceOpenLibrary = "openlibrary"
	MetadataSourceGoogleBooks = "googlebooks"
	MetadataSourceNone        = "none"
)

// MetadataSources lists the accepted values for metadata.source.
var MetadataSources = []string{MetadataSourceOpenLibrary, MetadataSourceGoogleBooks, MetadataSourceNone}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Transcode: Transcode{
			Extension: defaultTranscodeExtension,
			Codec:     defaultTranscodeCodec,
		},
		Metadata: Metadata{
			Source:             defaultMetadataSource,
			OpenLibraryBaseURL: defaultOpenLibraryBaseURL,
			CoversBaseURL:      defaultCoversBaseURL,
			GoogleBooksBaseURL: defaultGoogleBooksBaseURL,
			RequestTimeout:     defaultRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
