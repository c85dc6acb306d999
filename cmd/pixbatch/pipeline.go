package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"pixbatch/internal/api"
	"pixbatch/internal/batch"
	"pixbatch/internal/config"
	"pixbatch/internal/convert"
	"pixbatch/internal/export"
	"pixbatch/internal/ingest"
	"pixbatch/internal/logging"
	"pixbatch/internal/notifications"
)

type runOptions struct {
	patch    convert.SettingsPatch
	noExport bool
	progress io.Writer
	// skipMissing drops inputs that vanished before they were read.
	skipMissing bool
}

// runBatch loads paths into a fresh batch, converts every admitted item, and
// exports the results. The returned response is complete even when err is
// non-nil so callers can still render it.
func runBatch(ctx context.Context, cfg *config.Config, logger *slog.Logger, paths []string, opts runOptions) (api.RunResponse, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = logging.WithRequestID(ctx, runID)
	resp := api.RunResponse{RunID: runID}

	descriptors, err := loadDescriptors(ctx, logger, paths, opts.skipMissing)
	if err != nil {
		return resp, err
	}

	recorder := &notifications.Recorder{}
	notifier := notifications.Multi(notifications.NewService(cfg, logger), recorder)

	mgr, err := batch.NewManager(cfg, logger, batch.WithNotifier(notifier))
	if err != nil {
		return resp, err
	}
	defer mgr.Close()

	if !opts.patch.Empty() {
		if _, err := mgr.UpdateSettings(opts.patch); err != nil {
			return resp, fmt.Errorf("apply settings: %w", err)
		}
	}
	if opts.progress != nil {
		mgr.SetUpdateCallback(newProgressPrinter(opts.progress).update)
	}

	mgr.Add(ctx, descriptors)
	result := mgr.ConvertBatch(ctx)
	if opts.progress != nil {
		fmt.Fprint(opts.progress, "\r\x1b[K")
	}

	var exportErr error
	if !opts.noExport {
		sink := export.NewDirectorySink(cfg.Export.OutputDir)
		orchestrator := export.NewOrchestrator(cfg, sink, logger, export.WithNotifier(notifier))
		report, err := orchestrator.ExportAll(ctx, mgr.Snapshot())
		if report.Strategy != export.StrategyNone || err != nil {
			dto := api.FromExportReport(report, sink.Dir())
			resp.Export = &dto
		}
		exportErr = err
	}

	snapshot := mgr.Snapshot()
	resp.Items = api.FromViews(snapshot)
	resp.Summary = api.Summarize(snapshot)
	resp.Events = api.FromEvents(recorder.Events())
	resp.ElapsedMS = time.Since(start).Milliseconds()

	if exportErr != nil {
		return resp, fmt.Errorf("export: %w", exportErr)
	}
	if err := ctx.Err(); err != nil {
		return resp, err
	}
	if n := len(result.Failed); n > 0 {
		return resp, fmt.Errorf("%d of %d item(s) failed to convert", n, result.Total())
	}
	return resp, nil
}

func loadDescriptors(ctx context.Context, logger *slog.Logger, paths []string, skipMissing bool) ([]ingest.Descriptor, error) {
	if !skipMissing {
		return ingest.FromPaths(paths)
	}
	descriptors, missing, err := ingest.FromExistingPaths(paths)
	if err != nil {
		return nil, err
	}
	for _, path := range missing {
		logging.WarnWithContext(logging.WithContext(ctx, logger), "input vanished before conversion", "input_missing",
			logging.String("path", path),
			logging.String(logging.FieldImpact, "file skipped; the rest of the batch continues"),
		)
	}
	return descriptors, nil
}

// progressPrinter rewrites a single terminal line with the item currently
// converting.
type progressPrinter struct {
	out io.Writer
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out}
}

func (p *progressPrinter) update(v batch.View) {
	switch {
	case v.State == batch.StateConverting:
		fmt.Fprintf(p.out, "\r\x1b[KConverting %s %3.0f%%", v.Name, v.Progress)
	case v.State.Terminal():
		fmt.Fprint(p.out, "\r\x1b[K")
	}
}
