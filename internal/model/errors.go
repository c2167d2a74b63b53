package model

import "errors"

var (
	// ErrParse reports a source file that could not be parsed. It is fatal
	// for that file only.
	ErrParse = errors.New("parse error")

	// ErrUnreadable reports a source file that could not be read. Like
	// ErrParse it only affects that file.
	ErrUnreadable = errors.New("unreadable source")

	// ErrInvalidLocation reports a mutation location or substitution that
	// cannot be applied as a single-line text replacement.
	ErrInvalidLocation = errors.New("invalid mutated location")

	// ErrMissingFile reports that a mutant's source file is absent from the
	// list it was asked to insert itself into.
	ErrMissingFile = errors.New("mutant source file not in source list")

	// ErrIllegalTransition reports an attempt to change the status of a
	// mutant that already reached a terminal status.
	ErrIllegalTransition = errors.New("illegal mutant status transition")

	// ErrPersistence reports a failure writing or deleting a mutated artifact.
	ErrPersistence = errors.New("mutant persistence failure")
)
