// Package platform provides cross-platform filesystem operations: tree
// walking and copying with doublestar exclusion patterns, and permission
// management. On Windows the permission helpers are no-ops because the
// platform has no Unix mode bits.
package platform
