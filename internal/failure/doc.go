// Package failure defines the error taxonomy shared by the validator, the
// conversion engine, the batch manager, and the export orchestrator.
//
// Every failure carries a Kind so callers can classify it with errors.Is
// (errors.Is(err, failure.KindTooLarge)) without string matching, plus the
// message key the presentation layer uses to look up user-facing text. Use
// Wrap when surfacing a failure from a lower layer so the operation context
// is preserved in the error string.
//
// No failure is fatal to the process: the batch manager recovers validation
// and conversion failures per item, and the export orchestrator recovers
// fetch failures per entry.
package failure
