package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeLimits()
	c.normalizeExport()
	c.normalizeLogging()
	c.normalizeNotifications()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Export.OutputDir) == "" {
		c.Export.OutputDir = defaultOutputDir
	}
	if c.Export.OutputDir, err = expandPath(c.Export.OutputDir); err != nil {
		return fmt.Errorf("export.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Logging.Dir) != "" {
		if c.Logging.Dir, err = expandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeConversion() {
	format := strings.ToLower(strings.TrimSpace(c.Conversion.Format))
	if format == "jpg" {
		format = "jpeg"
	}
	if format == "" {
		format = defaultFormat
	}
	c.Conversion.Format = format
	if c.Conversion.Quality == 0 {
		c.Conversion.Quality = defaultQuality
	}
}

func (c *Config) normalizeLimits() {
	if c.Limits.MaxFileBytes == 0 {
		c.Limits.MaxFileBytes = defaultMaxFileBytes
	}
	if len(c.Limits.AllowedTypes) == 0 {
		c.Limits.AllowedTypes = append([]string(nil), defaultAllowedTypes...)
	}
	types := make([]string, 0, len(c.Limits.AllowedTypes))
	for _, t := range c.Limits.AllowedTypes {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			types = append(types, t)
		}
	}
	c.Limits.AllowedTypes = types
	if c.Limits.MinDimension == 0 {
		c.Limits.MinDimension = defaultMinDimension
	}
	if c.Limits.MaxDimension == 0 {
		c.Limits.MaxDimension = defaultMaxDimension
	}
	if c.Limits.MaxPixels == 0 {
		c.Limits.MaxPixels = defaultMaxPixels
	}
	if c.Limits.WebSizeDimension == 0 {
		c.Limits.WebSizeDimension = defaultWebSizeDimension
	}
}

func (c *Config) normalizeExport() {
	c.Export.ArchiveName = strings.TrimSpace(c.Export.ArchiveName)
	if c.Export.ArchiveName == "" {
		c.Export.ArchiveName = defaultArchiveName
	}
	if !strings.HasSuffix(strings.ToLower(c.Export.ArchiveName), ".zip") {
		c.Export.ArchiveName += ".zip"
	}
	if c.Export.IndividualThreshold == 0 {
		c.Export.IndividualThreshold = defaultIndividualThreshold
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	kind := strings.ToLower(strings.TrimSpace(c.Notifications.MinKind))
	if kind == "" {
		kind = defaultNotifyMinKind
	}
	c.Notifications.MinKind = kind
}
