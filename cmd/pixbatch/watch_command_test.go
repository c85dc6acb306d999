package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"pixbatch/internal/batch"
	"pixbatch/internal/logging"
	"pixbatch/internal/watch"
)

func TestWatchCommandRefusesOutputDirectory(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"watch", env.outputDir}, env.configPath)
	if !errors.Is(err, watch.ErrWatchingOutput) {
		t.Fatalf("expected ErrWatchingOutput, got %v", err)
	}
	requireContains(t, err.Error(), "--output")

	_, _, err = runCLI(t, []string{"watch", "--output", env.inputDir, env.inputDir}, env.configPath)
	if !errors.Is(err, watch.ErrWatchingOutput) {
		t.Fatalf("expected ErrWatchingOutput for --output, got %v", err)
	}
}

func TestRunBatchSkipsVanishedInputs(t *testing.T) {
	env := setupCLITestEnv(t)
	kept := env.writePNG(t, "kept.png", 20, 20)
	gone := filepath.Join(env.inputDir, "gone.png")
	paths := []string{kept, gone}

	if _, err := runBatch(context.Background(), env.cfg, logging.NewNop(), paths, runOptions{noExport: true}); err == nil {
		t.Fatal("expected a missing input to fail the batch without skipMissing")
	}

	resp, err := runBatch(context.Background(), env.cfg, logging.NewNop(), paths, runOptions{noExport: true, skipMissing: true})
	if err != nil {
		t.Fatalf("runBatch: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Name != "kept.png" {
		t.Fatalf("unexpected items %+v", resp.Items)
	}
	if resp.Summary.Counts["converted"] != 1 {
		t.Fatalf("unexpected summary %+v", resp.Summary)
	}
}

func TestProgressPrinterClearsLineWhenItemFinishes(t *testing.T) {
	var buf bytes.Buffer
	p := newProgressPrinter(&buf)

	p.update(batch.View{Name: "a.png", State: batch.StateConverting, Progress: 60})
	if !strings.Contains(buf.String(), "Converting a.png  60%") {
		t.Fatalf("progress line = %q", buf.String())
	}
	buf.Reset()
	p.update(batch.View{Name: "a.png", State: batch.StateIdle})
	if buf.Len() != 0 {
		t.Fatalf("idle update wrote %q", buf.String())
	}
	p.update(batch.View{Name: "a.png", State: batch.StateFailed})
	if buf.String() != "\r\x1b[K" {
		t.Fatalf("terminal update wrote %q", buf.String())
	}
}
