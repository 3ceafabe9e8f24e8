// Package vcs initializes a git repository in a freshly scaffolded project
// using go-git, so no git binary is needed.
package vcs
