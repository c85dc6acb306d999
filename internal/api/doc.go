// Package api defines wire-format types and converters for the CLI's JSON
// output. It translates batch views, export reports, and notification events
// into transport-friendly DTOs that scripts can consume without coupling to
// internal types.
//
// # Key Types
//
// Item: transport representation of a batch item with its settings snapshot,
// state, progress, and output summary.
//
// BatchSummary: per-state counts for a batch.
//
// ExportReport: what an export delivered and which entries failed.
//
// Event: a notification with its rendered message.
//
// # Design Notes
//
// DTOs use camelCase JSON tags. Internal enums are exposed as lowercase
// strings, with a title-cased label alongside for display. Timestamps use
// RFC3339 with milliseconds.
package api
