package agent

import "errors"

var (
	// ErrUnknownAgent indicates an agent identifier outside the registry.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrUnknownScript indicates a script variant outside the registry.
	ErrUnknownScript = errors.New("unknown script variant")

	// ErrAmbiguousSelection indicates a required choice was omitted and the
	// invocation cannot prompt for it.
	ErrAmbiguousSelection = errors.New("ambiguous selection")

	// ErrSelectionCancelled indicates the user dismissed an interactive choice.
	ErrSelectionCancelled = errors.New("selection cancelled")
)
