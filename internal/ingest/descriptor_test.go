package ingest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pixbatch/internal/ingest"
	"pixbatch/internal/testsupport"
)

func TestFromPathSniffsContent(t *testing.T) {
	dir := t.TempDir()
	// PNG bytes behind a .jpg extension: content wins.
	path := testsupport.WriteBytes(t, filepath.Join(dir, "mislabeled.jpg"), testsupport.PNG(t, 12, 12, nil))

	d, err := ingest.FromPath(path)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	if d.MediaType != "image/png" {
		t.Fatalf("MediaType = %q, want image/png", d.MediaType)
	}
	if d.Name != "mislabeled.jpg" {
		t.Fatalf("Name = %q", d.Name)
	}
	data, err := d.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if int64(len(data)) != d.Size {
		t.Fatalf("read %d bytes, Size = %d", len(data), d.Size)
	}
}

func TestFromPathFallsBackToExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	testsupport.WriteFile(t, path, 64)

	d, err := ingest.FromPath(path)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}
	if d.MediaType != "text/plain" {
		t.Fatalf("MediaType = %q, want text/plain", d.MediaType)
	}
}

func TestFromPathsExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteBytes(t, filepath.Join(dir, "b.png"), testsupport.PNG(t, 10, 10, nil))
	testsupport.WriteBytes(t, filepath.Join(dir, "a.jpg"), testsupport.JPEG(t, 10, 10))
	testsupport.WriteFile(t, filepath.Join(dir, ".hidden"), 4)
	if err := os.Mkdir(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	single := testsupport.WriteBytes(t, filepath.Join(t.TempDir(), "z.webp"), testsupport.WebP(t, 16, 16))

	got, err := ingest.FromPaths([]string{single, dir})
	if err != nil {
		t.Fatalf("FromPaths: %v", err)
	}
	want := []string{"z.webp", "a.jpg", "b.png"}
	if len(got) != len(want) {
		t.Fatalf("got %d descriptors, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("descriptor %d = %q, want %q", i, got[i].Name, name)
		}
	}
	if got[0].MediaType != "image/webp" {
		t.Fatalf("webp MediaType = %q", got[0].MediaType)
	}
}

func TestFromPathMissing(t *testing.T) {
	if _, err := ingest.FromPath(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromExistingPathsSkipsVanishedFiles(t *testing.T) {
	dir := t.TempDir()
	kept := testsupport.WriteBytes(t, filepath.Join(dir, "kept.png"), testsupport.PNG(t, 10, 10, nil))
	gone := filepath.Join(dir, "gone.png")

	if _, err := ingest.FromPaths([]string{kept, gone}); err == nil {
		t.Fatal("FromPaths should fail on a missing file")
	}

	got, missing, err := ingest.FromExistingPaths([]string{gone, kept})
	if err != nil {
		t.Fatalf("FromExistingPaths: %v", err)
	}
	if len(got) != 1 || got[0].Name != "kept.png" {
		t.Fatalf("descriptors = %+v", got)
	}
	if len(missing) != 1 || missing[0] != gone {
		t.Fatalf("missing = %v", missing)
	}
}

func TestReadLimitedStopsPastLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grown.png")
	testsupport.WriteFile(t, path, 128)
	d, err := ingest.FromPath(path)
	if err != nil {
		t.Fatalf("FromPath: %v", err)
	}

	if _, err := d.ReadLimited(64); !errors.Is(err, ingest.ErrContentTooLarge) {
		t.Fatalf("expected ErrContentTooLarge, got %v", err)
	}
	data, err := d.ReadLimited(128)
	if err != nil {
		t.Fatalf("ReadLimited at size: %v", err)
	}
	if len(data) != 128 {
		t.Fatalf("read %d bytes", len(data))
	}
}

func TestMediaTypeForName(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":   "image/jpeg",
		"photo.jpeg":  "image/jpeg",
		"scan.tiff":   "image/tiff",
		"unknown.zzz": "application/octet-stream",
	}
	for name, want := range tests {
		if got := ingest.MediaTypeForName(name); got != want {
			t.Errorf("MediaTypeForName(%q) = %q, want %q", name, got, want)
		}
	}
}
