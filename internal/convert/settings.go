package convert

import (
	"errors"
	"fmt"

	"pixbatch/internal/config"
)

// MaxTargetDimension is the largest target side accepted by Validate. It is
// the webp encoder's limit, the lowest among the output formats.
const MaxTargetDimension = 16383

// Settings is the conversion policy applied to one item. It is a plain value
// and is copied whenever it is captured.
type Settings struct {
	Format  Format
	Quality int
	// Width and Height are target dimensions; zero means unset.
	Width               int
	Height              int
	MaintainAspectRatio bool
}

// DefaultSettings returns jpeg at quality 85 with aspect ratio maintained.
func DefaultSettings() Settings {
	return Settings{Format: FormatJPEG, Quality: 85, MaintainAspectRatio: true}
}

// SettingsFromConfig reads the [conversion] section.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	if cfg == nil {
		return DefaultSettings(), nil
	}
	format, err := ParseFormat(cfg.Conversion.Format)
	if err != nil {
		return Settings{}, err
	}
	s := Settings{
		Format:              format,
		Quality:             cfg.Conversion.Quality,
		Width:               cfg.Conversion.Width,
		Height:              cfg.Conversion.Height,
		MaintainAspectRatio: cfg.Conversion.MaintainAspectRatio,
	}
	return s, s.Validate()
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	if !s.Format.Valid() {
		return fmt.Errorf("settings: unsupported format %q", s.Format)
	}
	if s.Quality < 1 || s.Quality > 100 {
		return fmt.Errorf("settings: quality %d out of range 1-100", s.Quality)
	}
	if s.Width < 0 || s.Height < 0 {
		return errors.New("settings: target dimensions must not be negative")
	}
	if s.Width > MaxTargetDimension || s.Height > MaxTargetDimension {
		return fmt.Errorf("settings: target dimensions must not exceed %d", MaxTargetDimension)
	}
	return nil
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged;
// a zero Width or Height clears that target.
type SettingsPatch struct {
	Format              *Format
	Quality             *int
	Width               *int
	Height              *int
	MaintainAspectRatio *bool
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.Format == nil && p.Quality == nil && p.Width == nil && p.Height == nil && p.MaintainAspectRatio == nil
}

// Apply returns s with the patch applied. s is not modified.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Format != nil {
		s.Format = *p.Format
	}
	if p.Quality != nil {
		s.Quality = *p.Quality
	}
	if p.Width != nil {
		s.Width = *p.Width
	}
	if p.Height != nil {
		s.Height = *p.Height
	}
	if p.MaintainAspectRatio != nil {
		s.MaintainAspectRatio = *p.MaintainAspectRatio
	}
	return s
}
