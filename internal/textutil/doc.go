// Package textutil holds the naming rules shared by validation and export.
//
// The primary use cases are:
//   - Sanitizing user-supplied display names to a conservative character set
//   - Deriving the suggested file name of a converted output
//     ("converted_<base>.<ext>")
//   - Disambiguating names that collide inside one archive
//
// Sanitization works on runes, not bytes, so a multi-byte character is
// replaced by exactly one underscore. All functions are pure and idempotent
// where noted.
package textutil
