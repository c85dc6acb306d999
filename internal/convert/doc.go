// Package convert implements the conversion engine: decode a raster, compute
// the target geometry, resample, and re-encode to jpeg, png, or webp.
//
// Engine.Convert is synchronous. It reports coarse stage progress through a
// ProgressSink and checks its context between stages; once encoding starts it
// runs to completion. Results are returned as an Output, an owned byte buffer
// the caller must Release when done.
//
// Decoding goes through disintegration/imaging with EXIF auto-orientation and
// golang.org/x/image/webp registered for webp input. Resampling uses the
// Lanczos filter. WebP output is produced by github.com/gen2brain/webp.
package convert
