package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if c.Watch.DebounceMillis < 0 {
		return errors.New("watch.debounce_millis must not be negative")
	}
	return nil
}

func (c *Config) validateConversion() error {
	switch c.Conversion.Format {
	case "jpeg", "png", "webp":
	default:
		return fmt.Errorf("conversion.format: unsupported value %q (expected jpeg, png, or webp)", c.Conversion.Format)
	}
	if c.Conversion.Quality < 1 || c.Conversion.Quality > 100 {
		return errors.New("conversion.quality must be between 1 and 100")
	}
	if c.Conversion.Width < 0 {
		return errors.New("conversion.width must not be negative")
	}
	if c.Conversion.Height < 0 {
		return errors.New("conversion.height must not be negative")
	}
	if c.Conversion.Width > c.Limits.MaxDimension || c.Conversion.Height > c.Limits.MaxDimension {
		return fmt.Errorf("conversion.width and conversion.height must not exceed limits.max_dimension (%d)", c.Limits.MaxDimension)
	}
	return nil
}

func (c *Config) validateLimits() error {
	if err := ensurePositiveMap(map[string]int64{
		"limits.max_file_bytes":     c.Limits.MaxFileBytes,
		"limits.min_dimension":      int64(c.Limits.MinDimension),
		"limits.max_dimension":      int64(c.Limits.MaxDimension),
		"limits.max_pixels":         c.Limits.MaxPixels,
		"limits.web_size_dimension": int64(c.Limits.WebSizeDimension),
	}); err != nil {
		return err
	}
	if c.Limits.MinDimension > c.Limits.MaxDimension {
		return errors.New("limits.min_dimension must not exceed limits.max_dimension")
	}
	for _, t := range c.Limits.AllowedTypes {
		if !strings.HasPrefix(t, "image/") {
			return fmt.Errorf("limits.allowed_types: %q is not an image media type", t)
		}
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.IndividualThreshold < 0 {
		return errors.New("export.individual_threshold must not be negative")
	}
	if strings.ContainsAny(c.Export.ArchiveName, `/\`) {
		return errors.New("export.archive_name must be a file name, not a path")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive (seconds)")
	}
	switch c.Notifications.MinKind {
	case "info", "success", "warning", "error":
	default:
		return fmt.Errorf("notifications.min_kind: unsupported value %q", c.Notifications.MinKind)
	}
	return nil
}

func ensurePositiveMap(values map[string]int64) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
