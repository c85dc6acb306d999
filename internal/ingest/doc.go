// Package ingest describes the files a user hands to pixbatch.
//
// A Descriptor carries the display name, declared media type, byte size, and
// a way to open the content. Descriptors are plain data: validation happens
// in the validate package and reading happens when the batch manager adds
// the item. FromPath and FromPaths build descriptors from the filesystem,
// sniffing the media type from content and falling back to the extension.
package ingest
