package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixbatch/internal/api"
	"pixbatch/internal/config"
	"pixbatch/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	inputDir   string
	outputDir  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	cfg := testsupport.NewConfig(t)
	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		inputDir:   filepath.Join(base, "inputs"),
		outputDir:  cfg.Export.OutputDir,
	}
}

func (e *cliTestEnv) writePNG(t *testing.T, name string, w, h int) string {
	t.Helper()
	return testsupport.WriteBytes(t, filepath.Join(e.inputDir, name), testsupport.PNG(t, w, h, nil))
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[export]\noutput_dir = %q\n\n[logging]\ndir = %q\nlevel = \"warn\"\n",
		cfg.Export.OutputDir,
		cfg.Logging.Dir,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

func TestConvertCommandWritesIndividualFiles(t *testing.T) {
	env := setupCLITestEnv(t)
	a := env.writePNG(t, "a.png", 40, 20)
	b := env.writePNG(t, "b.png", 30, 30)

	out, _, err := runCLI(t, []string{"convert", "--format", "png", "--width", "20", a, b}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "2 item(s): 2 converted")
	requireContains(t, out, "Wrote converted_a.png")

	for _, name := range []string{"converted_a.png", "converted_b.png"} {
		if _, err := os.Stat(filepath.Join(env.outputDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestConvertCommandJSONAndArchive(t *testing.T) {
	env := setupCLITestEnv(t)
	for i := range 3 {
		env.writePNG(t, fmt.Sprintf("img-%d.png", i), 16, 16)
	}

	out, _, err := runCLI(t, []string{"convert", "--json", "--threshold", "2", "-f", "webp", env.inputDir}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	var resp api.RunResponse
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if resp.RunID == "" || resp.Summary.Counts["converted"] != 3 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if resp.Export == nil || resp.Export.Strategy != "archive" {
		t.Fatalf("expected archive export, got %+v", resp.Export)
	}

	archive := filepath.Join(env.outputDir, "converted_images.zip")
	zr, err := zip.OpenReader(archive)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()
	if len(zr.File) != 3 || zr.File[0].Name != "converted_img-0.webp" {
		t.Fatalf("unexpected archive contents: %d entries", len(zr.File))
	}
}

func TestConvertCommandReportsRejectedInputs(t *testing.T) {
	env := setupCLITestEnv(t)
	tiny := env.writePNG(t, "tiny.png", 4, 4)
	ok := env.writePNG(t, "ok.png", 16, 16)

	out, _, err := runCLI(t, []string{"convert", "--no-export", tiny, ok}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "1 item(s): 1 converted")
	requireContains(t, out, "tiny.png is smaller than the minimum dimensions")
	requireContains(t, out, "Nothing delivered")
}

func TestConvertCommandRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	a := env.writePNG(t, "a.png", 16, 16)

	if _, _, err := runCLI(t, []string{"convert", "--format", "gif", a}, env.configPath); err == nil {
		t.Fatal("expected unsupported format to fail")
	}
	if _, _, err := runCLI(t, []string{"convert", "--quality", "0", a}, env.configPath); err == nil {
		t.Fatal("expected invalid quality to fail")
	}
	if _, _, err := runCLI(t, []string{"convert"}, env.configPath); err == nil {
		t.Fatal("expected missing arguments to fail")
	}
}

func TestInspectCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePNG(t, "good.png", 20, 20)
	env.writePNG(t, "tiny.png", 5, 5)
	testsupport.WriteBytes(t, filepath.Join(env.inputDir, "notes.txt"), []byte("plain text"))

	out, _, err := runCLI(t, []string{"inspect", "--json", env.inputDir}, env.configPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var results []api.Inspection
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	statuses := map[string]string{}
	for _, r := range results {
		statuses[r.Name] = r.Status
	}
	if statuses["good.png"] != "ok" || statuses["tiny.png"] != "rejected" || statuses["notes.txt"] != "rejected" {
		t.Fatalf("unexpected statuses %v", statuses)
	}

	out, _, err = runCLI(t, []string{"inspect", env.inputDir}, env.configPath)
	if err != nil {
		t.Fatalf("inspect table: %v", err)
	}
	requireContains(t, out, "3 file(s) inspected")
}

func TestRunCommandUsesManifest(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writePNG(t, "a.png", 20, 10)
	outDir := filepath.Join(t.TempDir(), "manifest-out")
	manifestPath := filepath.Join(env.inputDir, "batch.yaml")
	body := fmt.Sprintf("inputs:\n  - a.png\nsettings:\n  format: jpeg\n  quality: 60\nexport:\n  output_dir: %q\n", outDir)
	testsupport.WriteBytes(t, manifestPath, []byte(body))

	out, _, err := runCLI(t, []string{"run", "--format", "png", manifestPath}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "1 converted")
	if _, err := os.Stat(filepath.Join(outDir, "converted_a.png")); err != nil {
		t.Fatalf("flag format should override manifest: %v", err)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, env.outputDir)

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init without --overwrite to refuse an existing file")
	}
}
