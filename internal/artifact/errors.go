package artifact

import "errors"

// Sentinel errors for the artifact package.
var (
	// ErrParentMissing is returned when an output path's directory does not exist.
	ErrParentMissing = errors.New("output directory does not exist")

	// ErrRootPath is returned when an output path resolves to the filesystem root.
	ErrRootPath = errors.New("output path resolves to root directory")

	// ErrNotObject marks a document whose top level is not a JSON object.
	ErrNotObject = errors.New("document is not a JSON object")

	// ErrRunExists is returned by Init when the run directory already exists.
	ErrRunExists = errors.New("run directory already exists")

	// ErrNotDirectory is returned when a run path is not a directory.
	ErrNotDirectory = errors.New("not a directory")
)
