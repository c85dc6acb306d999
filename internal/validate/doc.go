// Package validate enforces the intake policy for candidate images.
//
// Validate checks byte size and declared media type and sanitizes the display
// name. ValidateDimensions checks pixel geometry once the image header has
// been probed. Rejections are failure.Error values carrying the message key
// the notification layer uses; the web-size condition is reported on the
// DimensionReport instead because it never rejects.
package validate
