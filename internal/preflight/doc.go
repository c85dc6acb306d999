// Package preflight provides readiness checks for the filesystem paths and
// optional services pixbatch depends on.
//
// `pixbatch config validate` runs RunAll and fails when any check fails, so a
// misconfigured output directory is reported before a batch is converted.
// The ntfy check only runs when a topic is configured.
package preflight
