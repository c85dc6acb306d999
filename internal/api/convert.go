package api

import (
	"sort"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pixbatch/internal/batch"
	"pixbatch/internal/convert"
	"pixbatch/internal/export"
	"pixbatch/internal/notifications"
)

var titleCaser = cases.Title(language.English)

// StateLabel returns the display label for a state, e.g. "Converting".
func StateLabel(state batch.State) string {
	if state == "" {
		return "Unknown"
	}
	return titleCaser.String(string(state))
}

// FromSettings converts a settings value.
func FromSettings(s convert.Settings) Settings {
	return Settings{
		Format:              string(s.Format),
		Quality:             s.Quality,
		Width:               s.Width,
		Height:              s.Height,
		MaintainAspectRatio: s.MaintainAspectRatio,
	}
}

// FromView converts a batch view into its transport representation.
func FromView(v batch.View) Item {
	item := Item{
		ID:            v.ID,
		Name:          v.Name,
		MediaType:     v.MediaType,
		Size:          v.Size,
		Width:         v.Width,
		Height:        v.Height,
		State:         string(v.State),
		StateLabel:    StateLabel(v.State),
		Selected:      v.Selected,
		Progress:      v.Progress,
		Settings:      FromSettings(v.Settings),
		SuggestedName: v.SuggestedName(),
		ErrorMessage:  v.ErrorMessage(),
		Warnings:      append([]string(nil), v.Warnings...),
		AddedAt:       formatTime(v.AddedAt),
		UpdatedAt:     formatTime(v.UpdatedAt),
	}
	if v.OriginalName != v.Name {
		item.OriginalName = v.OriginalName
	}
	if v.Output != nil {
		item.Output = &Output{
			Format:   string(v.Output.Format()),
			Width:    v.Output.Width(),
			Height:   v.Output.Height(),
			Size:     v.Output.Size(),
			Released: v.Output.Released(),
		}
	}
	return item
}

// FromViews converts a snapshot, preserving order.
func FromViews(views []batch.View) []Item {
	items := make([]Item, 0, len(views))
	for _, v := range views {
		items = append(items, FromView(v))
	}
	return items
}

// Summarize counts views per state. Every state is present in Counts.
func Summarize(views []batch.View) BatchSummary {
	counts := make(map[string]int, len(batch.AllStates()))
	for _, state := range batch.AllStates() {
		counts[string(state)] = 0
	}
	for _, v := range views {
		counts[string(v.State)]++
	}
	return BatchSummary{Total: len(views), Counts: counts}
}

// FromExportReport converts an export report.
func FromExportReport(r export.Report, outputDir string) ExportReport {
	out := ExportReport{
		Strategy:    string(r.Strategy),
		ArchiveName: r.ArchiveName,
		Files:       nonNil(r.Files),
		Entries:     r.Entries,
		Delivered:   nonNil(r.Delivered),
		Bytes:       r.Bytes,
		OutputDir:   outputDir,
	}
	for _, f := range r.Failures {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		out.Failures = append(out.Failures, ExportFailure{ItemID: f.ItemID, Name: f.Name, Error: msg})
	}
	return out
}

// FromEvent converts a notification event, rendering its message.
func FromEvent(e notifications.Event) Event {
	var params map[string]any
	if len(e.Params) > 0 {
		params = make(map[string]any, len(e.Params))
		for k, v := range e.Params {
			params[k] = v
		}
	}
	return Event{
		Kind:       string(e.Kind),
		MessageKey: e.MessageKey,
		Message:    e.Message(),
		Params:     params,
		Time:       formatTime(e.Time),
	}
}

// FromEvents converts events, preserving order.
func FromEvents(events []notifications.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, e := range events {
		out = append(out, FromEvent(e))
	}
	return out
}

// SortItemsNewestFirst orders items by AddedAt descending, breaking ties by name.
func SortItemsNewestFirst(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti := ParseTime(sorted[i].AddedAt)
		tj := ParseTime(sorted[j].AddedAt)
		if ti.Equal(tj) {
			return sorted[i].Name < sorted[j].Name
		}
		return ti.After(tj)
	})
	return sorted
}

// ParseTime parses an API timestamp, returning the zero time when value is
// empty or malformed.
func ParseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
