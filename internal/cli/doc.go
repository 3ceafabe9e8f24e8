// Package cli defines the Cobra command tree for the forge CLI. Each file
// registers one top-level command (init, update, migrate, check, version,
// config) with the root command. Commands decide interactivity once, hand
// plain values and writers to the internal packages, and only handle flag
// parsing, output formatting, and mapping failures to remedies.
package cli
