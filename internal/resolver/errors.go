package resolver

import "errors"

var (
	// ErrInvalidSource indicates a local source that is missing or has no
	// recognizable template layout.
	ErrInvalidSource = errors.New("invalid template source")

	// ErrPackageNotFound indicates the release or its asset for the
	// requested agent and script does not exist.
	ErrPackageNotFound = errors.New("template package not found")

	// ErrNetwork indicates the remote fetch failed in transit or the server
	// refused it.
	ErrNetwork = errors.New("network error")

	// ErrArchive indicates a corrupt archive or one with an unexpected layout.
	ErrArchive = errors.New("archive error")
)
