package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pixbatch/internal/batch"
	"pixbatch/internal/config"
	"pixbatch/internal/convert"
	"pixbatch/internal/failure"
	"pixbatch/internal/logging"
	"pixbatch/internal/notifications"
	"pixbatch/internal/textutil"
)

// DefaultThreshold is the largest converted count delivered file by file.
const DefaultThreshold = 5

// DefaultArchiveName names the bundle delivered above the threshold.
const DefaultArchiveName = "converted_images.zip"

// Strategy is the delivery decision for a set of outputs.
type Strategy string

const (
	StrategyNone       Strategy = "none"
	StrategyIndividual Strategy = "individual"
	StrategyArchive    Strategy = "archive"
)

// Entry is one output to deliver under a resolved name.
type Entry struct {
	ItemID string
	Name   string
	Output *convert.Output
}

// Plan is the delivery decision for a snapshot.
type Plan struct {
	Strategy    Strategy
	ArchiveName string
	Entries     []Entry
}

// EntryFailure records an entry that could not be delivered.
type EntryFailure struct {
	ItemID string
	Name   string
	Err    error
}

// Report describes what an export delivered.
type Report struct {
	Strategy    Strategy
	ArchiveName string
	// Delivered lists item ids whose output reached the sink.
	Delivered []string
	// Files lists the names handed to the sink: entry names for individual
	// delivery, the archive name otherwise.
	Files []string
	// Entries lists names written into the archive.
	Entries  []string
	Failures []EntryFailure
	Bytes    int64
}

// Partial reports whether some entries failed while others were delivered.
func (r Report) Partial() bool {
	return len(r.Failures) > 0 && len(r.Delivered) > 0
}

// Orchestrator decides delivery strategy and records deliveries.
type Orchestrator struct {
	sink        Sink
	session     *Session
	threshold   int
	archiveName string
	logger      *slog.Logger
	notifier    notifications.Notifier
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSession shares an existing session.
func WithSession(s *Session) Option {
	return func(o *Orchestrator) {
		if s != nil {
			o.session = s
		}
	}
}

// WithNotifier sets the notification sink.
func WithNotifier(n notifications.Notifier) Option {
	return func(o *Orchestrator) {
		if n != nil {
			o.notifier = n
		}
	}
}

// NewOrchestrator reads threshold and archive name from cfg's [export]
// section. A nil cfg uses defaults.
func NewOrchestrator(cfg *config.Config, sink Sink, logger *slog.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sink:        sink,
		session:     NewSession(),
		threshold:   DefaultThreshold,
		archiveName: DefaultArchiveName,
		logger:      logging.NewComponentLogger(logger, "export"),
		notifier:    notifications.Nop(),
	}
	if cfg != nil {
		if cfg.Export.IndividualThreshold > 0 {
			o.threshold = cfg.Export.IndividualThreshold
		}
		if cfg.Export.ArchiveName != "" {
			o.archiveName = cfg.Export.ArchiveName
		}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Session returns the delivery session.
func (o *Orchestrator) Session() *Session {
	return o.session
}

// Plan filters items to converted ones, resolves unique entry names, and
// picks individual delivery up to the threshold or an archive above it.
func (o *Orchestrator) Plan(items []batch.View) Plan {
	names := textutil.NewNameSet()
	var entries []Entry
	for _, item := range items {
		if item.State != batch.StateConverted || item.Output == nil {
			continue
		}
		entries = append(entries, Entry{
			ItemID: item.ID,
			Name:   names.Claim(item.SuggestedName()),
			Output: item.Output,
		})
	}

	plan := Plan{Entries: entries}
	switch {
	case len(entries) == 0:
		plan.Strategy = StrategyNone
	case len(entries) <= o.threshold:
		plan.Strategy = StrategyIndividual
	default:
		plan.Strategy = StrategyArchive
		plan.ArchiveName = o.archiveName
	}
	return plan
}

// ExportAll delivers every converted item in items. Entries whose output
// cannot be read are reported in Report.Failures and the rest are still
// delivered. A sink or archive failure is returned as KindArchiveWriteFailed.
func (o *Orchestrator) ExportAll(ctx context.Context, items []batch.View) (Report, error) {
	ctx = logging.WithStage(ctx, "export")
	plan := o.Plan(items)
	logging.WithContext(ctx, o.logger).Info("export planned",
		logging.String("strategy", string(plan.Strategy)),
		logging.Int("entries", len(plan.Entries)),
		logging.Int("threshold", o.threshold),
	)

	var (
		report Report
		err    error
	)
	switch plan.Strategy {
	case StrategyNone:
		return Report{Strategy: StrategyNone}, nil
	case StrategyIndividual:
		report, err = o.deliverIndividually(ctx, plan.Entries)
	default:
		report, err = o.deliverArchive(ctx, plan)
	}
	o.finish(ctx, report, err)
	return report, err
}

// ExportSingle delivers one converted item directly regardless of the
// threshold and marks only that id delivered.
func (o *Orchestrator) ExportSingle(ctx context.Context, item batch.View) (Report, error) {
	if item.State != batch.StateConverted || item.Output == nil {
		err := failure.New(failure.KindFetchFailed, "export "+item.Name, notifications.KeyFetchFailed)
		return Report{Strategy: StrategyIndividual}, fmt.Errorf("item %s is %s: %w", item.ID, item.State, err)
	}
	report, err := o.deliverIndividually(ctx, []Entry{{
		ItemID: item.ID,
		Name:   item.SuggestedName(),
		Output: item.Output,
	}})
	o.finish(ctx, report, err)
	return report, err
}

func (o *Orchestrator) deliverIndividually(ctx context.Context, entries []Entry) (Report, error) {
	report := Report{Strategy: StrategyIndividual}
	var sinkErrs []error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		data, err := entry.Output.Bytes()
		if err != nil {
			report.Failures = append(report.Failures, o.fetchFailure(entry, err))
			continue
		}
		if err := o.sink.Deliver(ctx, entry.Name, bytes.NewReader(data)); err != nil {
			wrapped := failure.Wrap(failure.KindArchiveWriteFailed, "export: deliver "+entry.Name, notifications.KeyArchiveFailed, err)
			report.Failures = append(report.Failures, EntryFailure{ItemID: entry.ItemID, Name: entry.Name, Err: wrapped})
			sinkErrs = append(sinkErrs, wrapped)
			continue
		}
		o.session.Mark(entry.ItemID)
		report.Delivered = append(report.Delivered, entry.ItemID)
		report.Files = append(report.Files, entry.Name)
		report.Bytes += int64(len(data))
	}
	return report, errors.Join(sinkErrs...)
}

func (o *Orchestrator) deliverArchive(ctx context.Context, plan Plan) (Report, error) {
	report := Report{Strategy: StrategyArchive, ArchiveName: plan.ArchiveName}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	var included []string
	modified := time.Now()

	for _, entry := range plan.Entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		data, err := entry.Output.Bytes()
		if err != nil {
			report.Failures = append(report.Failures, o.fetchFailure(entry, err))
			continue
		}
		// Image formats are already compressed; store entries as-is.
		w, err := zw.CreateHeader(&zip.FileHeader{Name: entry.Name, Method: zip.Store, Modified: modified})
		if err != nil {
			return report, o.archiveFailure(plan.ArchiveName, err)
		}
		if _, err := w.Write(data); err != nil {
			return report, o.archiveFailure(plan.ArchiveName, err)
		}
		included = append(included, entry.ItemID)
		report.Entries = append(report.Entries, entry.Name)
	}
	if err := zw.Close(); err != nil {
		return report, o.archiveFailure(plan.ArchiveName, err)
	}
	if len(included) == 0 {
		o.logger.Warn("archive skipped; no entry could be read",
			logging.String("archive", plan.ArchiveName),
			logging.Int("failures", len(report.Failures)),
			logging.String(logging.FieldEventType, "archive_empty"),
			logging.String(logging.FieldErrorHint, "re-convert the affected items"),
		)
		return report, nil
	}

	size := int64(buf.Len())
	if err := o.sink.Deliver(ctx, plan.ArchiveName, &buf); err != nil {
		report.Entries = nil
		return report, o.archiveFailure(plan.ArchiveName, err)
	}
	o.session.Mark(included...)
	report.Delivered = included
	report.Files = []string{plan.ArchiveName}
	report.Bytes = size
	return report, nil
}

func (o *Orchestrator) fetchFailure(entry Entry, err error) EntryFailure {
	if _, ok := failure.KindOf(err); !ok {
		err = failure.Wrap(failure.KindFetchFailed, "export: fetch "+entry.Name, notifications.KeyFetchFailed, err)
	}
	o.logger.Warn("converted output unavailable; entry skipped",
		logging.String(logging.FieldItemID, entry.ItemID),
		logging.String("entry", entry.Name),
		logging.Error(err),
		logging.String(logging.FieldEventType, "fetch_failed"),
		logging.String(logging.FieldErrorHint, "re-convert the item and export again"),
		logging.String(logging.FieldImpact, "entry missing from delivery"),
	)
	return EntryFailure{ItemID: entry.ItemID, Name: entry.Name, Err: err}
}

func (o *Orchestrator) archiveFailure(name string, err error) error {
	return failure.Wrap(failure.KindArchiveWriteFailed, "export: archive "+name, notifications.KeyArchiveFailed, err)
}

func (o *Orchestrator) finish(ctx context.Context, report Report, err error) {
	logger := logging.WithContext(ctx, o.logger)
	for _, f := range report.Failures {
		if errors.Is(f.Err, failure.KindFetchFailed) {
			o.notify(ctx, notifications.KindError, notifications.KeyFetchFailed, notifications.Payload{"name": f.Name})
		}
	}
	if err != nil {
		name := report.ArchiveName
		if name == "" && len(report.Failures) > 0 {
			name = report.Failures[0].Name
		}
		logging.ErrorWithContext(logger, "export failed", "export_failed",
			logging.String("strategy", string(report.Strategy)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the output directory is writable"),
		)
		o.notify(ctx, notifications.KindError, notifications.KeyArchiveFailed, notifications.Payload{"name": name})
		return
	}
	if len(report.Delivered) == 0 {
		return
	}
	logger.Info("export delivered",
		logging.String("strategy", string(report.Strategy)),
		logging.Int("items", len(report.Delivered)),
		logging.Int("failures", len(report.Failures)),
		logging.Int64("bytes", report.Bytes),
	)
	if len(report.Failures) > 0 {
		o.notify(ctx, notifications.KindWarning, notifications.KeyExportPartial, notifications.Payload{
			"count":  len(report.Delivered),
			"failed": len(report.Failures),
		})
		return
	}
	o.notify(ctx, notifications.KindSuccess, notifications.KeyExported, notifications.Payload{"count": len(report.Delivered)})
}

func (o *Orchestrator) notify(ctx context.Context, kind notifications.Kind, key string, params notifications.Payload) {
	if err := o.notifier.Notify(ctx, notifications.NewEvent(kind, key, params)); err != nil {
		o.logger.Debug("notification delivery failed", logging.String("message_key", key), logging.Error(err))
	}
}
