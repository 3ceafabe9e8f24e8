// Package project maintains an already scaffolded project: it detects the
// agents and script variant installed there, keeps agent context files and
// working folders in step with each other, and migrates projects created
// under the legacy names.
package project
