// Package release talks to the GitHub Releases API. It looks up a release by
// tag or as latest, picks the template asset for an agent/script pair,
// streams the download to disk with a progress line, and verifies the
// archive against a checksums.txt asset when the release publishes one.
// Non-200 responses carry the parsed rate-limit headers so callers can tell
// the user when and why to retry.
package release
