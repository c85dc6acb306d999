package testsupport

import (
	"path/filepath"
	"testing"

	"pixbatch/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Export.OutputDir = filepath.Join(base, "converted")
	cfgVal.Logging.Dir = filepath.Join(base, "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithFormat sets the default output format on the test config.
func WithFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.Format = format
	}
}

// WithQuality sets the default quality on the test config.
func WithQuality(quality int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.Quality = quality
	}
}

// WithThreshold overrides the individual-delivery threshold.
func WithThreshold(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Export.IndividualThreshold = n
	}
}

// WithMaxFileBytes overrides the validator size limit.
func WithMaxFileBytes(n int64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Limits.MaxFileBytes = n
	}
}
