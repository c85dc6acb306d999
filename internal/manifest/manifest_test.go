package manifest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixbatch/internal/convert"
	"pixbatch/internal/manifest"
	"pixbatch/internal/testsupport"
)

func TestLoadResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.yaml")
	body := `inputs:
  - photos/
  - /abs/banner.png
settings:
  format: webp
  quality: 70
  width: 1200
export:
  output_dir: out
  individual_threshold: 2
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Inputs[0] != filepath.Join(dir, "photos") || m.Inputs[1] != "/abs/banner.png" {
		t.Fatalf("inputs = %v", m.Inputs)
	}
	if m.Export.OutputDir != filepath.Join(dir, "out") {
		t.Fatalf("output dir = %q", m.Export.OutputDir)
	}

	patch, err := m.Patch()
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	settings := convert.DefaultSettings().Apply(patch)
	if settings.Format != convert.FormatWebP || settings.Quality != 70 || settings.Width != 1200 || !settings.MaintainAspectRatio {
		t.Fatalf("unexpected settings %+v", settings)
	}

	cfg := testsupport.NewConfig(t)
	applied := m.ApplyExport(cfg)
	if applied.Export.IndividualThreshold != 2 || applied.Export.OutputDir != filepath.Join(dir, "out") {
		t.Fatalf("unexpected export config %+v", applied.Export)
	}
	if cfg.Export.OutputDir == applied.Export.OutputDir {
		t.Fatal("ApplyExport must not modify the input config")
	}
}

func TestParseRejectsInvalidManifests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty", "", "empty"},
		{"no inputs", "settings:\n  quality: 50\n", "no inputs"},
		{"unknown key", "inputs: [a.png]\ncolour: red\n", "colour"},
		{"bad format", "inputs: [a.png]\nsettings:\n  format: gif\n", "settings.format"},
		{"bad quality", "inputs: [a.png]\nsettings:\n  quality: 0\n", "quality"},
		{"huge width", "inputs: [a.png]\nsettings:\n  width: 2000000000\n", "settings.width"},
		{"archive path", "inputs: [a.png]\nexport:\n  archive_name: ../x.zip\n", "archive_name"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := manifest.Parse([]byte(tc.body))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestPatchLeavesUnsetFieldsAlone(t *testing.T) {
	m, err := manifest.Parse([]byte("inputs: [a.png]\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	patch, err := m.Patch()
	if err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if !patch.Empty() {
		t.Fatalf("expected empty patch, got %+v", patch)
	}
}
