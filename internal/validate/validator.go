package validate

import (
	"fmt"
	"strings"

	"pixbatch/internal/config"
	"pixbatch/internal/failure"
	"pixbatch/internal/ingest"
	"pixbatch/internal/textutil"
)

// Message keys attached to validation failures.
const (
	KeyFileSize           = "app.validation.fileSize"
	KeyFormat             = "app.validation.format"
	KeyDimensionsTooSmall = "app.validation.dimensions.tooSmall"
	KeyDimensionsTooBig   = "app.validation.dimensions.tooBig"
	KeyDimensionsUnusual  = "app.validation.dimensions.unusual"
	KeyDimensionsWebSize  = "app.validation.dimensions.webSize"
)

// Limits is the validator policy.
type Limits struct {
	MaxFileBytes     int64
	AllowedTypes     []string
	MinDimension     int
	MaxDimension     int
	MaxPixels        int64
	WebSizeDimension int
}

// DefaultLimits returns the stock policy: 10 MiB, jpeg/png/webp, 10..8000 px
// per side, 32 MP total, web-size warning above 2000 px.
func DefaultLimits() Limits {
	return LimitsFromConfig(nil)
}

// LimitsFromConfig builds limits from configuration, using defaults when cfg
// is nil.
func LimitsFromConfig(cfg *config.Config) Limits {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	l := cfg.Limits
	return Limits{
		MaxFileBytes:     l.MaxFileBytes,
		AllowedTypes:     append([]string(nil), l.AllowedTypes...),
		MinDimension:     l.MinDimension,
		MaxDimension:     l.MaxDimension,
		MaxPixels:        l.MaxPixels,
		WebSizeDimension: l.WebSizeDimension,
	}
}

// Validator applies a fixed Limits policy. The zero value is not usable; use New.
type Validator struct {
	limits  Limits
	allowed map[string]struct{}
}

// New constructs a validator for the given limits.
func New(limits Limits) *Validator {
	allowed := make(map[string]struct{}, len(limits.AllowedTypes))
	for _, t := range limits.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return &Validator{limits: limits, allowed: allowed}
}

// Limits returns the policy in force.
func (v *Validator) Limits() Limits {
	return v.limits
}

// Validate checks size and media type and returns the descriptor with its
// name sanitized. Size is checked first, so an oversized file of the wrong
// type reports TooLarge.
func (v *Validator) Validate(d ingest.Descriptor) (ingest.Descriptor, error) {
	if d.Size > v.limits.MaxFileBytes {
		return d, failure.Wrap(failure.KindTooLarge, "validate "+d.Name, KeyFileSize,
			fmt.Errorf("%d bytes exceeds limit of %d", d.Size, v.limits.MaxFileBytes))
	}
	mediaType := strings.ToLower(strings.TrimSpace(d.MediaType))
	if _, ok := v.allowed[mediaType]; !ok {
		return d, failure.Wrap(failure.KindUnsupportedType, "validate "+d.Name, KeyFormat,
			fmt.Errorf("media type %q not supported", d.MediaType))
	}
	d.MediaType = mediaType
	d.Name = textutil.SanitizeName(d.Name)
	return d, nil
}

// DimensionReport describes an accepted geometry.
type DimensionReport struct {
	Width  int
	Height int
	// Warning is KindWebSizeWarning when either side exceeds the web-size
	// dimension, empty otherwise.
	Warning failure.Kind
	// WarningKey is the message key for Warning.
	WarningKey string
}

// HasWarning reports whether the geometry was flagged.
func (r DimensionReport) HasWarning() bool {
	return r.Warning != ""
}

// ValidateDimensions rejects geometry outside the policy. Checks run in order
// too small, too big, unusual; the first failing check wins.
func (v *Validator) ValidateDimensions(width, height int) (DimensionReport, error) {
	report := DimensionReport{Width: width, Height: height}
	op := fmt.Sprintf("validate dimensions %dx%d", width, height)
	l := v.limits

	if width < l.MinDimension || height < l.MinDimension {
		return report, failure.New(failure.KindTooSmall, op, KeyDimensionsTooSmall)
	}
	if width > l.MaxDimension || height > l.MaxDimension {
		return report, failure.New(failure.KindTooBig, op, KeyDimensionsTooBig)
	}
	if int64(width)*int64(height) > l.MaxPixels {
		return report, failure.New(failure.KindUnusual, op, KeyDimensionsUnusual)
	}
	if width > l.WebSizeDimension || height > l.WebSizeDimension {
		report.Warning = failure.KindWebSizeWarning
		report.WarningKey = KeyDimensionsWebSize
	}
	return report, nil
}

var defaultValidator = New(DefaultLimits())

// Validate runs the default policy.
func Validate(d ingest.Descriptor) (ingest.Descriptor, error) {
	return defaultValidator.Validate(d)
}

// ValidateDimensions runs the default dimension policy.
func ValidateDimensions(width, height int) (DimensionReport, error) {
	return defaultValidator.ValidateDimensions(width, height)
}
