// Package model defines the data structures for mutation testing.
package model

// Path represents a file system path.
type Path string

// File represents a source code file.
type File struct {
	ShortPath Path
	FullPath  Path
	Hash      string
}

// Source represents a JavaScript/TypeScript source file and its optional
// companion test file.
type Source struct {
	Origin *File
	Test   *File
}

// TestHash returns the hash of the companion test file, or "" when the
// source has none.
func (s Source) TestHash() string {
	if s.Test == nil {
		return ""
	}

	return s.Test.Hash
}
