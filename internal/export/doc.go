// Package export hands converted outputs to the user.
//
// Orchestrator.ExportAll filters a batch snapshot to converted items and
// chooses a delivery strategy: up to the configured threshold (5 by default)
// each file is delivered on its own; above it every output is bundled into
// one zip archive. ExportSingle always delivers one file directly. Entries
// are named converted_<base>.<ext>, with _2, _3 and so on appended when two
// entries would collide.
//
// A Sink performs the actual transfer. DirectorySink writes files atomically
// into an output directory guarded by an advisory lock; MemorySink keeps
// deliveries in memory. The Session records which item ids have been
// delivered; redelivery is allowed and simply re-marks the id.
package export
