// Package batch owns the in-memory collection of images a user is converting.
//
// Manager is the only writer of batch state. It admits descriptors through the
// validator, drives each item through idle, converting, and one of
// converted, failed, or cancelled, snapshots the shared conversion settings
// onto an item when its conversion starts, and releases the source and output
// buffers an item owns when the item is removed or re-converted.
//
// Conversions run on the caller's goroutine with the engine invoked outside
// the manager lock; ConvertBatch converts items one at a time in submission
// order. Readers receive View copies so they never observe a half-applied
// transition. Every user-visible outcome is also emitted as a notification.
package batch
