package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscode()
	c.normalizeMetadata()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StagingDir) == "" {
		c.Paths.StagingDir = defaultStagingDir
	}
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTranscode() {
	c.Transcode.Extension = strings.ToLower(strings.TrimSpace(c.Transcode.Extension))
	if c.Transcode.Extension == "" {
		c.Transcode.Extension = defaultTranscodeExtension
	}
	if !strings.HasPrefix(c.Transcode.Extension, ".") {
		c.Transcode.Extension = "." + c.Transcode.Extension
	}
	c.Transcode.Codec = strings.TrimSpace(c.Transcode.Codec)
	if c.Transcode.Codec == "" {
		c.Transcode.Codec = defaultTranscodeCodec
	}
	if c.Transcode.Workers < 0 {
		c.Transcode.Workers = 0
	}
}

func (c *Config) normalizeMetadata() {
	c.Metadata.Source = strings.ToLower(strings.TrimSpace(c.Metadata.Source))
	if c.Metadata.Source == "" {
		c.Metadata.Source = defaultMetadataSource
	}
	if c.Metadata.GoogleBooksAPIKey == "" {
		if value, ok := os.LookupEnv("GOOGLE_BOOKS_API_KEY"); ok {
			c.Metadata.GoogleBooksAPIKey = value
		}
	}
	c.Metadata.OpenLibraryBaseURL = trimBaseURL(c.Metadata.OpenLibraryBaseURL, defaultOpenLibraryBaseURL)
	c.Metadata.CoversBaseURL = trimBaseURL(c.Metadata.CoversBaseURL, defaultCoversBaseURL)
	c.Metadata.GoogleBooksBaseURL = trimBaseURL(c.Metadata.GoogleBooksBaseURL, defaultGoogleBooksBaseURL)
	if c.Metadata.RequestTimeout <= 0 {
		c.Metadata.RequestTimeout = defaultRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimBaseURL(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		value = fallback
	}
	return strings.TrimRight(value, "/")
}
