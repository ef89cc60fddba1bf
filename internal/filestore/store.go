// Package filestore defines the external-file access abstraction used to
// mirror link documents to and from disk.
package filestore

// Store is the interface for reading and writing link-document targets.
// Paths are host filesystem paths; remote targets never reach a Store.
type Store interface {
	// ReadText returns the full file content as text. A missing or
	// unreadable file yields an error wrapping apperr.ErrNotFound;
	// callers treat that as "no content available", not fatal.
	ReadText(path string) (string, error)
	// WriteText atomically overwrites the file with the given content.
	WriteText(path string, content string) error
	// IsWritable reports whether path denotes an existing writable file,
	// or a not-yet-existing file inside an existing writable directory.
	IsWritable(path string) bool
}
