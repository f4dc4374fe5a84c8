package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validateTranscode(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMetadata() error {
	source := c.Metadata.Source
	for _, known := range MetadataSources {
		if source == known {
			return nil
		}
	}
	return fmt.Errorf("metadata.source must be one of openlibrary, googlebooks, none (got %q)", source)
}

func (c *Config) validateTranscode() error {
	if c.Transcode.Extension == "." {
		return errors.New("transcode.extension must name a file extension")
	}
	if c.Transcode.Codec == "" {
		return errors.New("transcode.codec must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
