package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Conversion holds the shared settings applied to a batch at conversion time.
type Conversion struct {
	Format              string `toml:"format"`
	Quality             int    `toml:"quality"`
	Width               int    `toml:"width"`
	Height              int    `toml:"height"`
	MaintainAspectRatio bool   `toml:"maintain_aspect_ratio"`
}

// Limits holds the validator policy.
type Limits struct {
	MaxFileBytes     int64    `toml:"max_file_bytes"`
	AllowedTypes     []string `toml:"allowed_types"`
	MinDimension     int      `toml:"min_dimension"`
	MaxDimension     int      `toml:"max_dimension"`
	MaxPixels        int64    `toml:"max_pixels"`
	WebSizeDimension int      `toml:"web_size_dimension"`
}

// Export controls how converted outputs are handed to the user.
type Export struct {
	OutputDir           string `toml:"output_dir"`
	ArchiveName         string `toml:"archive_name"`
	IndividualThreshold int    `toml:"individual_threshold"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// Notifications contains configuration for optional ntfy push notifications.
// The local log notifier is always active.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	MinKind        string `toml:"min_kind"`
}

// Watch contains configuration for directory ingestion.
type Watch struct {
	DebounceMillis int `toml:"debounce_millis"`
}

// Config encapsulates all configuration values for pixbatch.
//
// Configuration sections by subsystem:
//   - Conversion: default format, quality, and geometry for a batch
//   - Limits: validator size, type, and dimension policy
//   - Export: output directory, archive name, and bundling threshold
//   - Logging: log format, level, and optional log directory
//   - Notifications: ntfy topic for remote event delivery
//   - Watch: directory ingestion debounce
type Config struct {
	Conversion    Conversion    `toml:"conversion"`
	Limits        Limits        `toml:"limits"`
	Export        Export        `toml:"export"`
	Logging       Logging       `toml:"logging"`
	Notifications Notifications `toml:"notifications"`
	Watch         Watch         `toml:"watch"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("pixbatch.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the export and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Export.OutputDir, c.Logging.Dir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
