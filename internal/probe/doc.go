// Package probe detects external command-line tools. A probe looks the tool
// up on PATH and, when found, runs it with --version under a short timeout
// to read a version string. Absence, hangs, and unparsable output are all
// ordinary results rather than errors.
package probe
