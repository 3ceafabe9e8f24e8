// Package scaffold writes a staged template package into a project
// directory.
//
// Work is split in two so that nothing touches the destination until every
// earlier stage has succeeded: Prepare resolves and inspects the target and
// applies the non-empty gate, and Materialize creates the directory, copies
// the package in, and releases the staging copy.
package scaffold
