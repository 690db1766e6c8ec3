// Package apperr defines the error taxonomy for an import run.
//
// Fatal errors (configuration, connectivity, log-file creation) abort before
// any entry is processed. Entry-level errors (parse, dependency, remote) are
// caught by the pipeline driver, counted, and never abort the run.
package apperr

import "errors"

var (
	// ErrParse marks a content entry whose body or front-matter does not
	// have the expected shape.
	ErrParse = errors.New("malformed content entry")
	// ErrDependency marks an author or group resolution where both the
	// lookup and the fallback creation failed.
	ErrDependency = errors.New("dependency resolution failed")
	// ErrRemote marks a failed creation mutation.
	ErrRemote = errors.New("remote mutation failed")
)
