// Package notifications carries discrete user-facing events out of the core.
//
// Components emit Event records (a kind plus a message key and parameters)
// to a Notifier and never render them. The log notifier writes every event to
// the structured log; the ntfy notifier publishes events at or above a
// configured kind to an ntfy topic; Recorder keeps events in memory for the
// CLI summary and for tests. NewService wires the configured set together.
//
// Message renders a key to English text. Presentation layers with their own
// catalog can ignore it and translate keys directly.
package notifications
