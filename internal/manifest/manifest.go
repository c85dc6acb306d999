package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"pixbatch/internal/config"
	"pixbatch/internal/convert"
)

// Manifest describes one batch run.
type Manifest struct {
	Inputs   []string `yaml:"inputs"`
	Settings Settings `yaml:"settings"`
	Export   Export   `yaml:"export"`

	// Dir is the directory relative paths were resolved against.
	Dir string `yaml:"-"`
}

// Settings holds optional conversion overrides. Unset fields keep the
// configured defaults.
type Settings struct {
	Format              *string `yaml:"format"`
	Quality             *int    `yaml:"quality"`
	Width               *int    `yaml:"width"`
	Height              *int    `yaml:"height"`
	MaintainAspectRatio *bool   `yaml:"maintain_aspect_ratio"`
}

// Export holds optional export overrides.
type Export struct {
	OutputDir           string `yaml:"output_dir"`
	ArchiveName         string `yaml:"archive_name"`
	IndividualThreshold int    `yaml:"individual_threshold"`
}

// Load reads, resolves, and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	abs, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	m.resolve(filepath.Dir(abs))
	return m, nil
}

// Parse decodes and validates manifest YAML. Paths are left as written.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("manifest is empty")
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks that the manifest names inputs and carries a usable patch.
func (m *Manifest) Validate() error {
	if len(m.Inputs) == 0 {
		return errors.New("manifest lists no inputs")
	}
	for i, input := range m.Inputs {
		if strings.TrimSpace(input) == "" {
			return fmt.Errorf("inputs[%d] is empty", i)
		}
	}
	if _, err := m.Patch(); err != nil {
		return err
	}
	if m.Export.IndividualThreshold < 0 {
		return errors.New("export.individual_threshold must be zero or positive")
	}
	if name := m.Export.ArchiveName; name != "" && (name != filepath.Base(name) || !strings.HasSuffix(strings.ToLower(name), ".zip")) {
		return fmt.Errorf("export.archive_name %q must be a bare .zip file name", name)
	}
	return nil
}

// Patch converts the settings block into a settings patch.
func (m *Manifest) Patch() (convert.SettingsPatch, error) {
	var patch convert.SettingsPatch
	s := m.Settings
	if s.Format != nil {
		format, err := convert.ParseFormat(*s.Format)
		if err != nil {
			return patch, fmt.Errorf("settings.format: %w", err)
		}
		patch.Format = &format
	}
	if s.Quality != nil && (*s.Quality < 1 || *s.Quality > 100) {
		return patch, fmt.Errorf("settings.quality %d must be between 1 and 100", *s.Quality)
	}
	if s.Width != nil && (*s.Width < 0 || *s.Width > convert.MaxTargetDimension) {
		return patch, fmt.Errorf("settings.width must be between 0 and %d", convert.MaxTargetDimension)
	}
	if s.Height != nil && (*s.Height < 0 || *s.Height > convert.MaxTargetDimension) {
		return patch, fmt.Errorf("settings.height must be between 0 and %d", convert.MaxTargetDimension)
	}
	patch.Quality = s.Quality
	patch.Width = s.Width
	patch.Height = s.Height
	patch.MaintainAspectRatio = s.MaintainAspectRatio
	return patch, nil
}

// ApplyExport returns a copy of cfg with the manifest's export overrides.
func (m *Manifest) ApplyExport(cfg *config.Config) *config.Config {
	out := *cfg
	if m.Export.OutputDir != "" {
		out.Export.OutputDir = m.Export.OutputDir
	}
	if m.Export.ArchiveName != "" {
		out.Export.ArchiveName = m.Export.ArchiveName
	}
	if m.Export.IndividualThreshold > 0 {
		out.Export.IndividualThreshold = m.Export.IndividualThreshold
	}
	return &out
}

func (m *Manifest) resolve(dir string) {
	m.Dir = dir
	for i, input := range m.Inputs {
		m.Inputs[i] = resolvePath(dir, input)
	}
	if m.Export.OutputDir != "" {
		m.Export.OutputDir = resolvePath(dir, m.Export.OutputDir)
	}
}

func resolvePath(dir, value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "~") {
		if expanded, err := config.ExpandPath(value); err == nil {
			return expanded
		}
	}
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(dir, value)
}
